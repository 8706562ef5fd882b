package sequence

import (
	"fmt"

	"github.com/andncl/arbok-driver/internal/qua"
)

// validPointObservables are the result kinds a readout point may declare.
var validPointObservables = map[string]struct{}{
	"I": {},
	"Q": {},
}

// Signal represents one physical entity being measured. It owns the
// mapping of element roles to physical elements, its readout points, and
// every observable produced for it, whether by a point or by a derived
// readout.
type Signal struct {
	name   string
	rs     *ReadSequence
	roles  []ElementRole
	points []*ReadoutPoint

	observables map[string]*Observable
	obsSeq      []string
}

// ElementRole maps a role name used in readout configs to a physical
// element on the sample.
type ElementRole struct {
	Role    string
	Element string
}

// Name returns the signal's name.
func (s *Signal) Name() string { return s.name }

// Roles returns the element-role mapping in declaration order.
func (s *Signal) Roles() []ElementRole { return s.roles }

// Points returns the readout points in declaration order.
func (s *Signal) Points() []*ReadoutPoint { return s.points }

// AddPoint declares a readout point producing one observable per
// (element role, observable kind) pair.
func (s *Signal) AddPoint(name, desc string, kinds []string) (*ReadoutPoint, error) {
	for _, p := range s.points {
		if p.name == name {
			return nil, fmt.Errorf("signal %q: readout point %q declared twice", s.name, name)
		}
	}
	for _, k := range kinds {
		if _, ok := validPointObservables[k]; !ok {
			return nil, fmt.Errorf(
				"signal %q point %q: observable %q not valid, must be one of I, Q",
				s.name, name, k)
		}
	}
	pt := &ReadoutPoint{name: name, desc: desc, signal: s, kinds: kinds}
	for _, role := range s.roles {
		for _, k := range kinds {
			o := &Observable{
				name:   fmt.Sprintf("%s__%s_%s", name, role.Role, k),
				signal: s,
				point:  pt,
				role:   role,
				kind:   k,
				vt:     qua.TypeFixed,
			}
			if err := s.register(o); err != nil {
				return nil, err
			}
			pt.observables = append(pt.observables, o)
		}
	}
	s.points = append(s.points, pt)
	return pt, nil
}

// AddObservable registers a derived observable produced by a readout
// rather than a point.
func (s *Signal) AddObservable(name string, vt qua.VarType) (*Observable, error) {
	o := &Observable{name: name, signal: s, vt: vt}
	if err := s.register(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Signal) register(o *Observable) error {
	if _, dup := s.observables[o.name]; dup {
		return fmt.Errorf("signal %q: observable %q declared twice", s.name, o.name)
	}
	s.observables[o.name] = o
	s.obsSeq = append(s.obsSeq, o.name)
	return nil
}

// Observable returns the observable with the given local name.
func (s *Signal) Observable(name string) (*Observable, bool) {
	o, ok := s.observables[name]
	return o, ok
}

// Observables returns all observables in declaration order.
func (s *Signal) Observables() []*Observable {
	out := make([]*Observable, len(s.obsSeq))
	for i, name := range s.obsSeq {
		out[i] = s.observables[name]
	}
	return out
}

// Elements returns the physical elements of the signal, in role order.
func (s *Signal) Elements() []string {
	out := make([]string, len(s.roles))
	for i, r := range s.roles {
		out[i] = r.Element
	}
	return out
}

// ReadoutPoint is one voltage point of a signal at which a
// measure-and-save block is emitted per observable.
type ReadoutPoint struct {
	name   string
	desc   string
	signal *Signal
	kinds  []string

	observables []*Observable
}

// Name returns the point's local name.
func (p *ReadoutPoint) Name() string { return p.name }

// Description returns the configured description.
func (p *ReadoutPoint) Description() string { return p.desc }

// Observables returns the point's observables in (role, kind) order.
func (p *ReadoutPoint) Observables() []*Observable { return p.observables }

// roleObservables returns the point's observables for one element role,
// in kind order.
func (p *ReadoutPoint) roleObservables(role string) []*Observable {
	var out []*Observable
	for _, o := range p.observables {
		if o.role.Role == role {
			out = append(out, o)
		}
	}
	return out
}

// Observable is one named numeric result channel. It owns exactly one
// device variable and exactly one stream, materialized lazily through
// the program's resource allocator the first time emission touches it.
type Observable struct {
	name   string
	signal *Signal
	point  *ReadoutPoint
	role   ElementRole
	kind   string
	vt     qua.VarType

	v      *qua.Var
	stream *qua.Stream
}

// Name returns the observable's name, unique within its signal.
func (o *Observable) Name() string { return o.name }

// Signal returns the owning signal.
func (o *Observable) Signal() *Signal { return o.signal }

// ChannelName returns the globally unique result-channel name, derived
// by joining the chain of owning-node names.
func (o *Observable) ChannelName() string {
	return o.signal.rs.FullName() + "__" + o.signal.name + "__" + o.name
}

// Materialize declares the observable's variable and stream through the
// allocator. Repeated calls within one pass return the same handles no
// matter which reference path reached the observable. The key is the
// observable's identity, not its channel name: two distinct observables
// resolving to the same channel name must both materialize so the
// collision is caught at final assembly instead of leaving one of them
// without handles.
func (o *Observable) Materialize(p *qua.Program) (*qua.Var, *qua.Stream) {
	key := fmt.Sprintf("obs:%p", o)
	p.Alloc().GetOrCreate(key, func() any {
		name := o.ChannelName()
		switch o.vt {
		case qua.TypeBool:
			o.v = p.DeclareBool(name)
		case qua.TypeInt:
			o.v = p.DeclareInt(name)
		default:
			o.v = p.DeclareFixed(name)
		}
		o.stream = p.DeclareStream(name + "_stream")
		p.RegisterChannel(name, o.v, o.stream)
		return o
	})
	return o.v, o.stream
}

// Var returns the materialized variable, nil before Materialize.
func (o *Observable) Var() *qua.Var { return o.v }

// Stream returns the materialized stream, nil before Materialize.
func (o *Observable) Stream() *qua.Stream { return o.stream }

// reset drops the handles from a previous compilation pass.
func (o *Observable) reset() {
	o.v = nil
	o.stream = nil
}
