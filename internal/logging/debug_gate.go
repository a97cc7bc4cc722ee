package logging

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// DebugGate is a zerolog hook that drops debug and trace events while the
// "debug" preference is off. It starts open so that messages logged before
// preferences are read are kept.
type DebugGate struct {
	enabled atomic.Bool
}

// NewDebugGate creates a gate in the given state.
func NewDebugGate(enabled bool) *DebugGate {
	g := &DebugGate{}
	g.enabled.Store(enabled)
	return g
}

// SetEnabled opens or closes the gate.
func (g *DebugGate) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

// Enabled reports whether debug events pass.
func (g *DebugGate) Enabled() bool {
	return g.enabled.Load()
}

// Run implements zerolog.Hook.
func (g *DebugGate) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	if level <= zerolog.DebugLevel && !g.Enabled() {
		e.Discard()
	}
}

// Gated returns logger with gate attached. An info level logger is lowered
// to debug so the gate, not the level, decides whether debug events are kept.
func Gated(logger zerolog.Logger, gate *DebugGate) zerolog.Logger {
	if logger.GetLevel() == zerolog.InfoLevel {
		logger = logger.Level(zerolog.DebugLevel)
	}
	return logger.Hook(gate)
}
