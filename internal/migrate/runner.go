package migrate

import "context"

// Runner applies schema migrations and reports success or failure.
// Implementations must block until the migration step has completed and
// must honor cancellation of the provided context.
type Runner interface {
	Run(ctx context.Context) error
}
