// Package providers implements Process-conforming step providers whose
// work happens outside the plain call/return shape: a goroutine-backed
// worker that can be torn down on a stuck read, and a line-tracer adapter
// for code that wants to surface intermediate checkpoints.
package providers

import "errors"

// ErrTimeout is the value of the Raised result Worker.Step resolves to when
// the worker goroutine does not respond within the configured read timeout. The worker is torn down and
// restarted on the next Step, mirroring the original's thread_restart
// behavior on a stuck read.
var ErrTimeout = errors.New("providers: worker read timed out")
