// Package threshold provides the built-in "threshold" readout method: a
// boolean observable that is true while a source observable exceeds a
// configured level.
package threshold

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/andncl/arbok-driver/internal/config"
	"github.com/andncl/arbok-driver/internal/qua"
	"github.com/andncl/arbok-driver/internal/registry"
	"github.com/andncl/arbok-driver/internal/sequence"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type threshold struct {
	name   string
	out    *sequence.Observable
	source *sequence.Observable
	level  float64
}

// New resolves the source observable and the level argument and
// registers the boolean result observable on the target signal.
func New(name string, rs *sequence.ReadSequence, cfg *config.ReadoutConfig) (sequence.Readout, error) {
	sig, ok := rs.Signal(cfg.Signal)
	if !ok {
		return nil, fmt.Errorf("readout %q: unknown signal %q", name, cfg.Signal)
	}
	source, err := rs.ResolveObservable(cfg.Inputs["source"])
	if err != nil {
		return nil, fmt.Errorf("readout %q source: %w", name, err)
	}
	levelVal, ok := cfg.Args["level"]
	if !ok {
		return nil, fmt.Errorf("readout %q: missing argument %q", name, "level")
	}
	var level float64
	if err := gocty.FromCtyValue(levelVal, &level); err != nil {
		return nil, fmt.Errorf("readout %q level: %w", name, err)
	}
	out, err := sig.AddObservable(name, qua.TypeBool)
	if err != nil {
		return nil, err
	}
	return &threshold{name: name, out: out, source: source, level: level}, nil
}

func (t *threshold) Name() string { return t.name }

// Declare implements sequence.Readout.
func (t *threshold) Declare(ctx context.Context, p *qua.Program) error {
	t.out.Materialize(p)
	return nil
}

// MeasureAndSave implements sequence.Readout.
func (t *threshold) MeasureAndSave(ctx context.Context, p *qua.Program, b *qua.Block) error {
	v, s := t.out.Var(), t.out.Stream()
	b.Assign(v, qua.Gt(qua.Ref(t.source.Var()), qua.Real(t.level)))
	b.Save(v, s)
	return nil
}

// Register registers the readout method with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterReadout("threshold", New)
}
