package sequence

import (
	"context"
	"fmt"
	"strings"

	"github.com/andncl/arbok-driver/internal/ctxlog"
	"github.com/andncl/arbok-driver/internal/qua"
	"github.com/andncl/arbok-driver/internal/sample"
)

// Readout is a pluggable readout method producing derived observables
// from already-measured ones (or from raw measurement logic of its own).
// Implementations live in modules and are registered by method name.
type Readout interface {
	Name() string
	// Declare materializes the readout's own observables.
	Declare(ctx context.Context, p *qua.Program) error
	// MeasureAndSave emits the readout's measure-and-save block.
	MeasureAndSave(ctx context.Context, p *qua.Program, b *qua.Block) error
}

// measureOp is the device operation used to demodulate readout points.
const measureOp = "readout"

// ReadSequence is a sequence node with structured emission: it iterates
// its configured signals, their readout points, and their observables,
// emitting one measure-and-save block per observable, then runs its
// derived readouts.
type ReadSequence struct {
	Node
	signals   []*Signal
	signalSet map[string]*Signal
	readouts  []Readout
}

// NewReadSequence creates an empty read-sequence bound to a sample.
func NewReadSequence(name string, smp *sample.Sample) *ReadSequence {
	rs := &ReadSequence{signalSet: make(map[string]*Signal)}
	rs.Node.init(name, smp, rs)
	return rs
}

// AddSignal declares a measured signal with its element-role mapping.
// Every referenced element must exist on the sample.
func (rs *ReadSequence) AddSignal(name string, roles []ElementRole) (*Signal, error) {
	if _, dup := rs.signalSet[name]; dup || rs.Has(name) {
		return nil, fmt.Errorf("read sequence %q: name %q already taken", rs.name, name)
	}
	for _, r := range roles {
		if !rs.Sample().HasElement(r.Element) {
			return nil, fmt.Errorf(
				"read sequence %q signal %q: unknown element %q", rs.name, name, r.Element)
		}
	}
	sig := &Signal{
		name:        name,
		rs:          rs,
		roles:       roles,
		observables: make(map[string]*Observable),
	}
	rs.signals = append(rs.signals, sig)
	rs.signalSet[name] = sig
	return sig, nil
}

// Signal returns the signal with the given name.
func (rs *ReadSequence) Signal(name string) (*Signal, bool) {
	s, ok := rs.signalSet[name]
	return s, ok
}

// Signals returns the signals in declaration order.
func (rs *ReadSequence) Signals() []*Signal { return rs.signals }

// AddReadout attaches a derived readout. Readout names must be unique
// within the read-sequence.
func (rs *ReadSequence) AddReadout(r Readout) error {
	for _, existing := range rs.readouts {
		if existing.Name() == r.Name() {
			return fmt.Errorf("read sequence %q: readout %q declared twice", rs.name, r.Name())
		}
	}
	rs.readouts = append(rs.readouts, r)
	return nil
}

// Readouts returns the derived readouts in declaration order.
func (rs *ReadSequence) Readouts() []Readout { return rs.readouts }

// ResolveObservable resolves a "signal.observable" path into a direct
// handle. Resolution happens at configuration-load time; an unresolved
// path is a ReferenceError, not an emission-time failure.
func (rs *ReadSequence) ResolveObservable(path string) (*Observable, error) {
	segs := strings.Split(path, ".")
	if len(segs) != 2 {
		return nil, &ReferenceError{Path: path, Where: rs.FullName()}
	}
	sig, ok := rs.signalSet[segs[0]]
	if !ok {
		return nil, &ReferenceError{Path: path, Where: rs.FullName()}
	}
	o, ok := sig.Observable(segs[1])
	if !ok {
		return nil, &ReferenceError{Path: path, Where: rs.FullName()}
	}
	return o, nil
}

// EmitDeclare implements Emitter. It materializes every point observable
// and then lets the derived readouts declare theirs.
func (rs *ReadSequence) EmitDeclare(ctx context.Context, p *qua.Program) error {
	if err := emitDeclareChildren(ctx, &rs.Node, p); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)
	for _, sig := range rs.signals {
		for _, o := range sig.Observables() {
			o.reset()
		}
	}
	for _, sig := range rs.signals {
		for _, pt := range sig.points {
			for _, o := range pt.observables {
				o.Materialize(p)
			}
		}
		logger.Debug("declared point observables", "signal", sig.name)
	}
	for _, r := range rs.readouts {
		if err := r.Declare(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// EmitBody implements Emitter. One measure-and-save block per point and
// element role, then the derived readouts.
func (rs *ReadSequence) EmitBody(ctx context.Context, p *qua.Program, b *qua.Block) error {
	if err := emitBodyChildren(ctx, &rs.Node, p, b); err != nil {
		return err
	}
	for _, sig := range rs.signals {
		for _, pt := range sig.points {
			b.Align(sig.Elements()...)
			for _, role := range sig.roles {
				obs := pt.roleObservables(role.Role)
				if len(obs) == 0 {
					continue
				}
				vars := make([]*qua.Var, len(obs))
				for i, o := range obs {
					v := o.Var()
					if v == nil {
						return &ReferenceError{Path: o.ChannelName(), Where: rs.FullName()}
					}
					vars[i] = v
				}
				b.Measure(measureOp, role.Element, vars...)
				for _, o := range obs {
					b.Save(o.Var(), o.Stream())
				}
			}
		}
	}
	for _, r := range rs.readouts {
		if err := r.MeasureAndSave(ctx, p, b); err != nil {
			return err
		}
	}
	return nil
}

// EmitStream implements Emitter. Observable buffering is attached
// centrally at final assembly; nothing to do per node.
func (rs *ReadSequence) EmitStream(ctx context.Context, p *qua.Program) error {
	return emitStreamChildren(ctx, &rs.Node, p)
}
