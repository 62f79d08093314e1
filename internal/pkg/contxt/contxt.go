// Package contxt builds contexts for work started from callbacks that have no
// caller context of their own, such as cron jobs.
package contxt

import (
	"context"
	"os"
	"time"
)

// NewContext returns a context that expires after timeout. Setting
// CONTEXT_TEST disables the deadline.
func NewContext(timeout time.Duration) context.Context {
	return WithTimeout(context.Background(), timeout)
}

// WithTimeout derives a context from parent that expires after timeout and
// releases its timer once done.
func WithTimeout(parent context.Context, timeout time.Duration) context.Context {
	if os.Getenv("CONTEXT_TEST") != "" {
		return parent
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}
