package sweep

import (
	"context"
	"fmt"
	"math"

	"github.com/andncl/arbok-driver/internal/ctxlog"
	"github.com/andncl/arbok-driver/internal/qua"
)

type inductionVar struct {
	v      *qua.Var
	length int
}

// plan is the declared device-side representation of one binding.
type plan struct {
	binding     Binding
	enc         Encoding
	start, step float64
	vt          qua.VarType
	valueVar    *qua.Var
	arrVar      *qua.Var
}

// Declare allocates one induction variable per axis and, per binding, a
// live value variable plus either an explicit setpoint array or a
// (start, step) progression. Every swept parameter is bound to its value
// variable so subsequent reads emit variable references instead of
// literals.
func (s *Set) Declare(ctx context.Context, prog *qua.Program) error {
	logger := ctxlog.FromContext(ctx)
	s.ivs = nil
	s.plans = nil
	s.warnings = nil

	for k, axis := range s.axes {
		iv := prog.DeclareInt(fmt.Sprintf("i%d", k))
		s.ivs = append(s.ivs, inductionVar{v: iv, length: axis.length})

		axisPlans := make([]*plan, 0, len(axis.bindings))
		for _, b := range axis.bindings {
			name := b.Param.QuaName()
			if prog.Alloc().Has("sweep:" + name) {
				return errf("parameter %q already declared in this pass", name)
			}
			vt, ok := b.Param.Kind().VarType()
			if !ok {
				return errf("parameter %q of kind %s cannot be swept", name, b.Param.Kind())
			}
			pl := &plan{binding: b, vt: vt}
			pl.enc, pl.start, pl.step = decideEncoding(
				b.Values, vt == qua.TypeInt, s.opts.ProgressionTolerance)

			prog.Alloc().GetOrCreate("sweep:"+name, func() any {
				if vt == qua.TypeInt {
					pl.valueVar = prog.DeclareInt(name)
					if pl.enc == EncodeArray {
						pl.arrVar = prog.DeclareIntArray(name+"_arr", roundToInts(b.Values))
					}
				} else {
					pl.valueVar = prog.DeclareFixed(name)
					if pl.enc == EncodeArray {
						pl.arrVar = prog.DeclareFixedArray(name+"_arr", b.Values)
					}
				}
				return pl
			})
			b.Param.BindSweep(pl.valueVar)

			if pl.enc == EncodeProgression {
				w := Warning{Param: name, Length: len(b.Values), Start: pl.start, Step: pl.step}
				s.warnings = append(s.warnings, w)
				logger.Warn("sweep setpoints encoded as arithmetic progression",
					"parameter", name,
					"points", w.Length,
					"start", w.Start,
					"step", w.Step,
				)
			}
			axisPlans = append(axisPlans, pl)
		}
		s.plans = append(s.plans, axisPlans)
	}
	return nil
}

// OpenLoops nests one iteration block per axis inside b, outermost axis
// first, assigning every axis-bound parameter's live value at the top of
// its loop. It returns the innermost block, where the wrapped sequence
// emission belongs. Declare must have run on the same program first.
func (s *Set) OpenLoops(b *qua.Block) *qua.Block {
	for k, axis := range s.axes {
		loop := b.For(s.ivs[k].v, axis.length)
		idx := qua.Ref(s.ivs[k].v)
		for _, pl := range s.plans[k] {
			switch pl.enc {
			case EncodeArray:
				loop.Assign(pl.valueVar, qua.Index(pl.arrVar, idx))
			case EncodeProgression:
				if pl.vt == qua.TypeInt {
					loop.Assign(pl.valueVar, qua.Add(
						qua.Int(int64(pl.start)), qua.Mul(idx, qua.Int(int64(pl.step)))))
				} else {
					loop.Assign(pl.valueVar, qua.Add(
						qua.Real(pl.start), qua.Mul(idx, qua.Real(pl.step))))
				}
			}
		}
		b = loop
	}
	return b
}

func roundToInts(values []float64) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(math.Round(v))
	}
	return out
}
