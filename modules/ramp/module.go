// Package ramp provides the built-in "ramp" sequence type: a voltage
// ramp from one element-expanded setpoint group to another over a
// configurable duration.
package ramp

import (
	"context"
	"fmt"

	"github.com/andncl/arbok-driver/internal/qua"
	"github.com/andncl/arbok-driver/internal/registry"
	"github.com/andncl/arbok-driver/internal/sample"
	"github.com/andncl/arbok-driver/internal/sequence"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const (
	// startGroup is the optional origin setpoint group. Without it the
	// ramp starts from zero volts.
	startGroup = "v_start"
	endGroup   = "v_end"
	rampTime   = "t_ramp"
	rampOp     = "ramp"
)

// New builds a ramp sub-sequence. The parameters it emits from are
// resolved onto the node by the builder afterwards.
func New(name string, smp *sample.Sample) *sequence.SubSequence {
	return sequence.NewSubSequence(name, smp, sequence.Hooks{Body: body})
}

func body(ctx context.Context, s *sequence.SubSequence, p *qua.Program, b *qua.Block) error {
	t, ok := s.Parameter(rampTime)
	if !ok {
		return fmt.Errorf("ramp %q: parameter %q not configured", s.FullName(), rampTime)
	}
	dur, err := t.Ref()
	if err != nil {
		return err
	}
	from := startGroup
	if !s.Has(from) {
		from = ""
	}
	return s.PlayGroup(b, rampOp, from, endGroup, dur)
}

// Register registers the sequence type with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSequence("ramp", New)
}
