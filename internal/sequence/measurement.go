package sequence

import (
	"context"
	"fmt"

	"github.com/andncl/arbok-driver/internal/qua"
	"github.com/andncl/arbok-driver/internal/sample"
	"github.com/andncl/arbok-driver/internal/sweep"
)

// Measurement is the root container of a sequence tree. It emits its
// children in declaration order, owns the sweep set, and tracks the
// per-shot counter streamed back so the orchestrating process can follow
// progress.
type Measurement struct {
	Node
	sweeps *sweep.Set

	shotVar    *qua.Var
	shotStream *qua.Stream
}

// NewMeasurement creates an empty measurement root.
func NewMeasurement(name string, smp *sample.Sample) *Measurement {
	m := &Measurement{}
	m.Node.init(name, smp, m)
	return m
}

// SetSweeps declares the sweep axes for this measurement, outermost
// first. Every swept parameter must live under this tree. The call is
// all-or-nothing: on error no sweep state is retained.
func (m *Measurement) SetSweeps(axes ...*sweep.Axis) error {
	set, err := sweep.NewSet(axes...)
	if err != nil {
		return err
	}
	for _, p := range set.Parameters() {
		if !m.Contains(p) {
			return &sweep.SweepError{Reason: fmt.Sprintf(
				"parameter %q is not part of measurement %q", p.Name(), m.name)}
		}
	}
	m.sweeps = set
	return nil
}

// Sweeps returns the current sweep set, which may be nil.
func (m *Measurement) Sweeps() *sweep.Set { return m.sweeps }

// SweepSize returns the total iteration count of the sweep set, 1
// without sweeps.
func (m *Measurement) SweepSize() int {
	if m.sweeps == nil {
		return 1
	}
	return m.sweeps.Size()
}

func (m *Measurement) shotChannel() string { return m.name + "_shots" }

// EmitDeclare implements Emitter. Declares the shot counter, then the
// children.
func (m *Measurement) EmitDeclare(ctx context.Context, p *qua.Program) error {
	p.Alloc().GetOrCreate("shot:"+m.FullName(), func() any {
		m.shotVar = p.DeclareInt(m.shotChannel())
		m.shotStream = p.DeclareStream(m.shotChannel() + "_stream")
		return m.shotVar
	})
	return emitDeclareChildren(ctx, &m.Node, p)
}

// EmitBody implements Emitter. A measurement is a pure container.
func (m *Measurement) EmitBody(ctx context.Context, p *qua.Program, b *qua.Block) error {
	return emitBodyChildren(ctx, &m.Node, p, b)
}

// EmitStream implements Emitter. Children first, then the shot counter's
// directive.
func (m *Measurement) EmitStream(ctx context.Context, p *qua.Program) error {
	if err := emitStreamChildren(ctx, &m.Node, p); err != nil {
		return err
	}
	if m.shotStream != nil {
		p.BufferSave(m.shotStream, 1, m.shotChannel())
	}
	return nil
}

// ShotReset zeroes the shot counter. Emitted right after the per-shot
// pause.
func (m *Measurement) ShotReset(b *qua.Block) {
	if m.shotVar != nil {
		b.Assign(m.shotVar, qua.Int(0))
	}
}

// ShotAdvance increments and saves the shot counter. Emitted at the end
// of the innermost iteration.
func (m *Measurement) ShotAdvance(b *qua.Block) {
	if m.shotVar == nil {
		return
	}
	b.Assign(m.shotVar, qua.Add(qua.Ref(m.shotVar), qua.Int(1)))
	b.Save(m.shotVar, m.shotStream)
}
