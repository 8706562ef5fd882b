// Package sweep implements the parameter-sweep engine: axes binding
// parameters to equal-length setpoint arrays, the per-parameter encoding
// decision (explicit array vs. arithmetic progression), and the nested
// loop scaffolding wrapped around the sequence tree's emission.
package sweep

import (
	"fmt"
	"math"

	"github.com/andncl/arbok-driver/internal/param"
	"github.com/andncl/arbok-driver/internal/qua"
)

// SweepError reports an invalid sweep declaration. Sweep setup is
// all-or-nothing: no partial state survives a failed call.
type SweepError struct {
	Reason string
}

func (e *SweepError) Error() string { return "sweep: " + e.Reason }

func errf(format string, args ...any) *SweepError {
	return &SweepError{Reason: fmt.Sprintf(format, args...)}
}

// Binding pairs one parameter with its setpoint array. Integer-kind
// parameters carry their setpoints as floats at this boundary and are
// re-typed at declaration time.
type Binding struct {
	Param  *param.Parameter
	Values []float64
}

// Axis is one loop level of a sweep: one or more parameters moving in
// lock-step through equal-length setpoint arrays.
type Axis struct {
	bindings []Binding
	length   int
}

// NewAxis validates that all setpoint arrays have equal length, that
// every bound parameter can live in a device variable, and that
// integer-kind parameters only receive integral setpoints. Rounding a
// setpoint would be a silent lossy transformation.
func NewAxis(bindings ...Binding) (*Axis, error) {
	if len(bindings) == 0 {
		return nil, errf("axis needs at least one parameter")
	}
	length := len(bindings[0].Values)
	if length == 0 {
		return nil, errf("parameter %q has no setpoints", bindings[0].Param.Name())
	}
	for _, b := range bindings {
		if len(b.Values) != length {
			return nil, errf(
				"parameter %q has %d setpoints, expected %d (arrays on one axis must have equal length)",
				b.Param.Name(), len(b.Values), length)
		}
		vt, ok := b.Param.Kind().VarType()
		if !ok {
			return nil, errf("parameter %q of kind %s cannot be swept",
				b.Param.Name(), b.Param.Kind())
		}
		if vt == qua.TypeInt {
			for _, v := range b.Values {
				if v != math.Trunc(v) {
					return nil, errf(
						"parameter %q of kind %s requires integral setpoints, got %v",
						b.Param.Name(), b.Param.Kind(), v)
				}
			}
		}
	}
	return &Axis{bindings: bindings, length: length}, nil
}

// Bindings returns the axis bindings in declaration order.
func (a *Axis) Bindings() []Binding { return a.bindings }

// Length returns the number of setpoints per parameter on this axis.
func (a *Axis) Length() int { return a.length }

// Set is an ordered collection of sweep axes. The first axis is the
// outermost loop.
type Set struct {
	opts Options
	axes []*Axis

	ivs      []inductionVar
	plans    [][]*plan
	warnings []Warning
}

// NewSet builds a sweep set with default options, rejecting a parameter
// bound on more than one axis.
func NewSet(axes ...*Axis) (*Set, error) {
	seen := make(map[*param.Parameter]struct{})
	for _, a := range axes {
		for _, b := range a.bindings {
			if _, dup := seen[b.Param]; dup {
				return nil, errf("parameter %q is bound on more than one axis", b.Param.Name())
			}
			seen[b.Param] = struct{}{}
		}
	}
	return &Set{opts: DefaultOptions(), axes: axes}, nil
}

// SetOptions overrides the encoding options. Must be called before
// Declare.
func (s *Set) SetOptions(o Options) { s.opts = o }

// Axes returns the axes outermost-first.
func (s *Set) Axes() []*Axis { return s.axes }

// Empty reports whether the set has no axes.
func (s *Set) Empty() bool { return len(s.axes) == 0 }

// Size returns the total iteration count: the product of per-axis
// lengths, 1 for an empty set.
func (s *Set) Size() int {
	size := 1
	for _, a := range s.axes {
		size *= a.length
	}
	return size
}

// Dims returns the per-axis lengths outermost-first.
func (s *Set) Dims() []int {
	dims := make([]int, len(s.axes))
	for i, a := range s.axes {
		dims[i] = a.length
	}
	return dims
}

// Warnings returns the encoding warnings collected by the last Declare.
func (s *Set) Warnings() []Warning {
	return append([]Warning(nil), s.warnings...)
}

// Parameters returns every swept parameter across all axes.
func (s *Set) Parameters() []*param.Parameter {
	var out []*param.Parameter
	for _, a := range s.axes {
		for _, b := range a.bindings {
			out = append(out, b.Param)
		}
	}
	return out
}
