// Package framework provides the runtime plumbing shared by the
// binaries: runnables, the runner collecting them, and error
// aggregation.
package framework

import "context"

// Runnable is a long running task stopped by canceling the context.
type Runnable interface {
	Run(context.Context) error
}

// RunnableFunc adapts a func to Runnable.
type RunnableFunc func(context.Context) error

// Run implements Runnable.
func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Named is implemented by runnables identifying themselves in logs.
type Named interface {
	Name() string
}
