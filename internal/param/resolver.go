package param

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ConfigError reports a malformed or ambiguous parameter configuration.
// It aborts the whole resolve step for the owning node.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("parameter config %q: %s", e.Param, e.Reason)
}

// ElementValue is one element entry of a multi-element parameter spec.
type ElementValue struct {
	Name  string
	Value cty.Value
}

// Spec is the declarative configuration of one parameter entry. Exactly
// one of Value and Elements must be present.
type Spec struct {
	Type     string
	Unit     string
	Label    string
	Value    cty.Value
	Elements []ElementValue
}

// NamedSpec pairs a spec with its config name, preserving declaration
// order so element-parameter generation stays deterministic.
type NamedSpec struct {
	Name string
	Spec Spec
}

// Resolve expands the given specs into parameters on the owner. A spec
// with a scalar value yields one parameter; a spec with elements yields
// one parameter per element, named "{base}_{element}", and registers the
// base name as a group for bulk lookups. Resolution is all-or-nothing
// per node: the first ConfigError aborts it.
func Resolve(owner Owner, specs []NamedSpec) error {
	for _, ns := range specs {
		if err := resolveOne(owner, ns.Name, ns.Spec); err != nil {
			return err
		}
	}
	return nil
}

func resolveOne(owner Owner, name string, spec Spec) error {
	hasValue := spec.Value != cty.NilVal
	hasElements := len(spec.Elements) > 0

	switch {
	case hasValue && hasElements:
		return &ConfigError{Param: name, Reason: "both value and elements given"}
	case !hasValue && !hasElements:
		return &ConfigError{Param: name, Reason: "needs either value or elements"}
	case spec.Type == "":
		return &ConfigError{Param: name, Reason: "missing type"}
	}

	kind, err := KindFromString(spec.Type)
	if err != nil {
		return &ConfigError{Param: name, Reason: err.Error()}
	}

	if hasValue {
		return addParameter(owner, name, kind, spec, spec.Value, "")
	}

	if owner.Has(name) {
		return &ConfigError{Param: name, Reason: "name collides with existing attribute"}
	}
	members := make([]string, 0, len(spec.Elements))
	for _, ev := range spec.Elements {
		full := fmt.Sprintf("%s_%s", name, ev.Name)
		if err := addParameter(owner, full, kind, spec, ev.Value, ev.Name); err != nil {
			return err
		}
		members = append(members, full)
	}
	if err := owner.RegisterGroup(name, members); err != nil {
		return &ConfigError{Param: name, Reason: err.Error()}
	}
	return nil
}

func addParameter(owner Owner, name string, kind Kind, spec Spec, value cty.Value, element string) error {
	if owner.Has(name) {
		return &ConfigError{Param: name, Reason: "name collides with existing attribute"}
	}
	p := New(name, kind, spec.Unit, spec.Label)
	p.element = element
	if element != "" {
		p.group = name[:len(name)-len(element)-1]
	}
	if err := p.Set(value); err != nil {
		return &ConfigError{Param: name, Reason: err.Error()}
	}
	if err := owner.AddParameter(p); err != nil {
		return &ConfigError{Param: name, Reason: err.Error()}
	}
	if err := p.Attach(owner); err != nil {
		return &ConfigError{Param: name, Reason: err.Error()}
	}
	return nil
}
