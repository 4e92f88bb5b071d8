// Package migrate runs the schema-migration phase of startup. Two runners
// are provided: CommandRunner invokes an external migration tool and
// consumes only its exit status, EmbeddedRunner applies the goose SQL
// migrations compiled into the binary against Postgres. The orchestrator
// treats any runner error as a terminal migration failure.
package migrate
