package ui

import (
	"context"

	"github.com/aeropulse/aeropulse/internal/live"
	"github.com/aeropulse/aeropulse/internal/sched"
)

// Actions are the controls the dashboard exposes. Each call may block until
// the recorder has handled it.
type Actions interface {
	Toggle() error
	NewSession() error
	Export() (*live.Export, error)
	ExportCSV() (string, error)
}

// LoopActions runs every action on the scheduler goroutine that owns the
// controller.
type LoopActions struct {
	Ctx  context.Context
	Loop *sched.Loop
	Ctl  *live.Controller
}

// Toggle implements Actions.
func (a LoopActions) Toggle() error {
	return a.Loop.Do(a.Ctx, func() error {
		return a.Ctl.Toggle(a.Ctx)
	})
}

// NewSession implements Actions.
func (a LoopActions) NewSession() error {
	return a.Loop.Do(a.Ctx, func() error {
		return a.Ctl.NewSession(a.Ctx)
	})
}

// Export implements Actions.
func (a LoopActions) Export() (*live.Export, error) {
	var out *live.Export
	err := a.Loop.Do(a.Ctx, func() error {
		var err error
		out, err = a.Ctl.Export(a.Ctx)
		return err
	})
	return out, err
}

// ExportCSV implements Actions.
func (a LoopActions) ExportCSV() (string, error) {
	var path string
	err := a.Loop.Do(a.Ctx, func() error {
		var err error
		path, err = a.Ctl.ExportCSV()
		return err
	})
	return path, err
}
