// Package param implements the typed, unit-aware parameters owned by
// sequence nodes, and the resolver that expands a declarative parameter
// configuration into them.
package param

import (
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/andncl/arbok-driver/internal/qua"
)

// Validator is a predicate over candidate parameter values. It returns a
// descriptive error when the value is rejected.
type Validator func(cty.Value) error

// Owner is the node a parameter belongs to. Parameters are kept in an
// explicit owned mapping on the node; there is no dynamic attribute
// injection.
type Owner interface {
	FullName() string
	Has(name string) bool
	AddParameter(p *Parameter) error
	RegisterGroup(base string, members []string) error
}

// Parameter is a named, unit-aware, validated scalar owned by exactly one
// sequence node. When bound to a sweep axis its reads resolve to a live
// device variable instead of the configured literal.
type Parameter struct {
	owner     Owner
	name      string
	group     string
	element   string
	unit      string
	label     string
	kind      Kind
	value     cty.Value
	validator Validator

	sweepVar *qua.Var
}

// New creates an unowned parameter. The resolver attaches it to its
// owning node; a parameter can be attached at most once.
func New(name string, kind Kind, unit, label string) *Parameter {
	p := &Parameter{
		name:  name,
		group: name,
		unit:  unit,
		label: label,
		kind:  kind,
		value: cty.NilVal,
	}
	if kind == KindTime {
		// Durations are device clock cycles: non-negative integers.
		p.validator = nonNegativeIntegral
	}
	return p
}

func nonNegativeIntegral(v cty.Value) error {
	var f float64
	if err := fromNumber(v, &f); err != nil {
		return err
	}
	if f < 0 || f != math.Trunc(f) {
		return fmt.Errorf("time value %v must be a non-negative whole number of cycles", f)
	}
	return nil
}

// Name returns the parameter's resolved name (including any element
// suffix).
func (p *Parameter) Name() string { return p.name }

// Group returns the base config name the parameter was declared under.
// For element-expanded parameters this is the aggregate name shared by
// all siblings of the same spec.
func (p *Parameter) Group() string { return p.group }

// Element returns the element name for element-expanded parameters, or
// "".
func (p *Parameter) Element() string { return p.element }

// Unit returns the physical unit of the parameter.
func (p *Parameter) Unit() string { return p.unit }

// Label returns the human-readable label, falling back to the name.
func (p *Parameter) Label() string {
	if p.label == "" {
		return p.name
	}
	return p.label
}

// Kind returns the parameter's value domain.
func (p *Parameter) Kind() Kind { return p.kind }

// Owner returns the owning node, or nil before attachment.
func (p *Parameter) Owner() Owner { return p.owner }

// Attach records the owning node. Called by the node when the parameter
// is added; a second attachment is an ownership violation.
func (p *Parameter) Attach(o Owner) error {
	if p.owner != nil {
		return fmt.Errorf("parameter %q already belongs to %s", p.name, p.owner.FullName())
	}
	p.owner = o
	return nil
}

// QuaName returns the globally unique device variable name for this
// parameter, derived from the owning-node chain.
func (p *Parameter) QuaName() string {
	if p.owner == nil {
		return p.name
	}
	return p.owner.FullName() + "__" + p.name
}

// Set validates and stores a new value, converting it to the kind's cty
// type first.
func (p *Parameter) Set(v cty.Value) error {
	converted, err := convert.Convert(v, p.kind.CtyType())
	if err != nil {
		return fmt.Errorf("parameter %q: %w", p.name, err)
	}
	if p.validator != nil {
		if err := p.validator(converted); err != nil {
			return fmt.Errorf("parameter %q: %w", p.name, err)
		}
	}
	p.value = converted
	return nil
}

// SetValidator installs a custom validator. It does not re-check the
// current value.
func (p *Parameter) SetValidator(v Validator) { p.validator = v }

// Value returns the currently configured value. cty.NilVal when unset.
func (p *Parameter) Value() cty.Value { return p.value }

// Float returns the value as a float64.
func (p *Parameter) Float() (float64, error) {
	var f float64
	if err := fromNumber(p.value, &f); err != nil {
		return 0, fmt.Errorf("parameter %q: %w", p.name, err)
	}
	return f, nil
}

// Int returns the value as an int64.
func (p *Parameter) Int() (int64, error) {
	f, err := p.Float()
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// Str returns the value as a string.
func (p *Parameter) Str() (string, error) {
	if p.value == cty.NilVal || p.value.Type() != cty.String {
		return "", fmt.Errorf("parameter %q holds no string value", p.name)
	}
	return p.value.AsString(), nil
}

// BindSweep points reads of this parameter at a live device variable for
// the duration of a compilation pass.
func (p *Parameter) BindSweep(v *qua.Var) { p.sweepVar = v }

// ClearSweep drops any sweep binding. Called at the start of each
// compilation pass so stale bindings from a previous pass never leak.
func (p *Parameter) ClearSweep() { p.sweepVar = nil }

// Swept reports whether the parameter is currently bound to a sweep
// variable.
func (p *Parameter) Swept() bool { return p.sweepVar != nil }

// SweepVar returns the bound device variable, or nil.
func (p *Parameter) SweepVar() *qua.Var { return p.sweepVar }

// Ref returns the expression code reading this parameter should use: the
// live sweep variable when bound, the configured literal otherwise.
func (p *Parameter) Ref() (qua.Expr, error) {
	if p.sweepVar != nil {
		return qua.Ref(p.sweepVar), nil
	}
	switch p.kind {
	case KindVoltage, KindReal:
		f, err := p.Float()
		if err != nil {
			return nil, err
		}
		return qua.Real(f), nil
	case KindTime, KindInt:
		n, err := p.Int()
		if err != nil {
			return nil, err
		}
		return qua.Int(n), nil
	}
	return nil, fmt.Errorf("parameter %q of kind %s has no device representation", p.name, p.kind)
}

func fromNumber(v cty.Value, out *float64) error {
	if v == cty.NilVal {
		return fmt.Errorf("no value set")
	}
	if v.Type() != cty.Number {
		return fmt.Errorf("value is %s, not a number", v.Type().FriendlyName())
	}
	f, _ := v.AsBigFloat().Float64()
	*out = f
	return nil
}
