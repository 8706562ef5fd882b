package sequence

import (
	"context"
	"fmt"

	"github.com/andncl/arbok-driver/internal/param"
	"github.com/andncl/arbok-driver/internal/qua"
	"github.com/andncl/arbok-driver/internal/sample"
)

// Hooks carries the free-form emission logic of a sub-sequence, supplied
// by the registered module implementing it. Nil hooks are skipped.
type Hooks struct {
	Declare func(ctx context.Context, s *SubSequence, p *qua.Program) error
	Body    func(ctx context.Context, s *SubSequence, p *qua.Program, b *qua.Block) error
	Stream  func(ctx context.Context, s *SubSequence, p *qua.Program) error
}

// SubSequence is a sequence node with free-form emission logic. A
// sub-sequence that has children acts as a pure container: only the
// children emit.
type SubSequence struct {
	Node
	hooks Hooks
}

// NewSubSequence creates a sub-sequence bound to a sample.
func NewSubSequence(name string, smp *sample.Sample, hooks Hooks) *SubSequence {
	s := &SubSequence{hooks: hooks}
	s.Node.init(name, smp, s)
	return s
}

// EmitDeclare implements Emitter.
func (s *SubSequence) EmitDeclare(ctx context.Context, p *qua.Program) error {
	if !s.Leaf() {
		return emitDeclareChildren(ctx, &s.Node, p)
	}
	if s.hooks.Declare == nil {
		return nil
	}
	return s.hooks.Declare(ctx, s, p)
}

// EmitBody implements Emitter.
func (s *SubSequence) EmitBody(ctx context.Context, p *qua.Program, b *qua.Block) error {
	if !s.Leaf() {
		return emitBodyChildren(ctx, &s.Node, p, b)
	}
	if s.hooks.Body == nil {
		return nil
	}
	return s.hooks.Body(ctx, s, p, b)
}

// EmitStream implements Emitter.
func (s *SubSequence) EmitStream(ctx context.Context, p *qua.Program) error {
	if !s.Leaf() {
		return emitStreamChildren(ctx, &s.Node, p)
	}
	if s.hooks.Stream == nil {
		return nil
	}
	return s.hooks.Stream(ctx, s, p)
}

// PlayGroup plays one operation on every element of the toGroup, with
// the amplitude scaled by the voltage difference to the matching element
// of fromGroup and the element's divider scale factor. fromGroup may be
// empty, in which case the origin voltage is zero.
func (s *SubSequence) PlayGroup(b *qua.Block, op, fromGroup, toGroup string, duration qua.Expr) error {
	targets, err := s.GroupParameters(toGroup)
	if err != nil {
		return err
	}
	var origins map[string]*param.Parameter
	if fromGroup != "" {
		froms, err := s.GroupParameters(fromGroup)
		if err != nil {
			return err
		}
		origins = make(map[string]*param.Parameter, len(froms))
		for _, p := range froms {
			origins[p.Element()] = p
		}
	}

	for _, target := range targets {
		element := target.Element()
		if !s.Sample().HasElement(element) {
			return fmt.Errorf("sequence %q: parameter %q targets unknown element %q",
				s.FullName(), target.Name(), element)
		}
		amp, err := groupAmplitude(target, origins[element], s.Sample().Scale(element))
		if err != nil {
			return err
		}
		b.Play(op, element, amp, duration)
	}
	return nil
}

// groupAmplitude builds (target - origin) * scale, folding to a single
// literal when neither parameter is swept.
func groupAmplitude(target, origin *param.Parameter, scale float64) (qua.Expr, error) {
	if !target.Swept() && (origin == nil || !origin.Swept()) {
		tv, err := target.Float()
		if err != nil {
			return nil, err
		}
		var ov float64
		if origin != nil {
			if ov, err = origin.Float(); err != nil {
				return nil, err
			}
		}
		return qua.Real((tv - ov) * scale), nil
	}

	tRef, err := target.Ref()
	if err != nil {
		return nil, err
	}
	expr := tRef
	if origin != nil {
		oRef, err := origin.Ref()
		if err != nil {
			return nil, err
		}
		expr = qua.Sub(tRef, oRef)
	}
	if scale != 1.0 {
		expr = qua.Mul(expr, qua.Real(scale))
	}
	return expr, nil
}
