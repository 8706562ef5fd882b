// Package difference provides the built-in "take_diff" readout method:
// a derived observable holding the difference of two already-measured
// observables of the same signal.
package difference

import (
	"context"
	"fmt"

	"github.com/andncl/arbok-driver/internal/config"
	"github.com/andncl/arbok-driver/internal/qua"
	"github.com/andncl/arbok-driver/internal/registry"
	"github.com/andncl/arbok-driver/internal/sequence"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type diff struct {
	name       string
	out        *sequence.Observable
	minuend    *sequence.Observable
	subtrahend *sequence.Observable
}

// New resolves the readout's observable references and registers its
// derived observable on the target signal.
func New(name string, rs *sequence.ReadSequence, cfg *config.ReadoutConfig) (sequence.Readout, error) {
	sig, ok := rs.Signal(cfg.Signal)
	if !ok {
		return nil, fmt.Errorf("readout %q: unknown signal %q", name, cfg.Signal)
	}
	minuend, err := rs.ResolveObservable(cfg.Inputs["minuend"])
	if err != nil {
		return nil, fmt.Errorf("readout %q minuend: %w", name, err)
	}
	subtrahend, err := rs.ResolveObservable(cfg.Inputs["subtrahend"])
	if err != nil {
		return nil, fmt.Errorf("readout %q subtrahend: %w", name, err)
	}
	out, err := sig.AddObservable(name, qua.TypeFixed)
	if err != nil {
		return nil, err
	}
	return &diff{name: name, out: out, minuend: minuend, subtrahend: subtrahend}, nil
}

func (d *diff) Name() string { return d.name }

// Declare implements sequence.Readout.
func (d *diff) Declare(ctx context.Context, p *qua.Program) error {
	d.out.Materialize(p)
	return nil
}

// MeasureAndSave implements sequence.Readout. The point observables it
// reads are measured earlier in the same block.
func (d *diff) MeasureAndSave(ctx context.Context, p *qua.Program, b *qua.Block) error {
	v, s := d.out.Var(), d.out.Stream()
	b.Assign(v, qua.Sub(qua.Ref(d.minuend.Var()), qua.Ref(d.subtrahend.Var())))
	b.Save(v, s)
	return nil
}

// Register registers the readout method with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterReadout("take_diff", New)
}
