package usecase

import (
	"errors"
	"sync/atomic"
)

// ErrRunInProgress is returned when a fetch is requested while another one holds the gate.
var ErrRunInProgress = errors.New("fetch already in progress")

// RunGate admits one snapshot-writing run at a time. The API fetch and the
// scheduled daily run share one gate so they never write the same date directory together.
type RunGate struct {
	busy atomic.Bool
}

func NewRunGate() *RunGate { return &RunGate{} }

// TryAcquire takes the gate if it is free. Callers that get true must call Release.
func (g *RunGate) TryAcquire() bool { return g.busy.CompareAndSwap(false, true) }

func (g *RunGate) Release() { g.busy.Store(false) }

// Busy reports whether a run currently holds the gate.
func (g *RunGate) Busy() bool { return g.busy.Load() }
