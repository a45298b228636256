// Package execution implements the cooperative multi-process scheduler
// (Execution) that advances one process per step and records the path
// walked, per spec.md §4.3.
package execution

import (
	"errors"
	"fmt"

	"github.com/race-explorer/racegraph/process"
)

// ErrUnknownProcess is a ProgrammerError: Next was called with a pid that is
// not currently live. It is never retried or recovered internally.
var ErrUnknownProcess = errors.New("execution: unknown process id")

// ErrAlreadyLive is a ProgrammerError: AddProcess or RenameProcess's target
// collided with an id that is already live.
var ErrAlreadyLive = errors.New("execution: process id already live")

// ErrContractViolation is a ContractViolation: a cancelled process resolved
// to Yielded instead of Cancelled or Raised, or a provider returned an
// otherwise-impossible StepResult.
var ErrContractViolation = errors.New("execution: step provider contract violation")

// ContractError wraps one of the sentinel errors above with the process and
// operation that produced it, mirroring the teacher's NodeError pattern
// (graph/node.go) of attaching identifying context to a propagated error.
type ContractError struct {
	PID process.ID
	Op  string
	Err error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("execution: process %d: %s: %v", e.PID, e.Op, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }
