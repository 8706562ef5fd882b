package config

import (
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of an entire
// measurement session configuration.
type Model struct {
	Sample       *SampleConfig
	Measurements []*MeasurementConfig
}

// SampleConfig describes the device under measurement: its elements and
// the hardware voltage dividers sitting in front of some of them.
type SampleConfig struct {
	Name     string
	Elements []string
	Dividers map[string]float64
}

// MeasurementConfig is the format-agnostic representation of a
// `measurement` block. Sequence order is emission order.
type MeasurementConfig struct {
	Name          string
	Sequences     []*SequenceConfig
	ReadSequences []*ReadSequenceConfig
	Sweeps        []*SweepAxisConfig
}

// SequenceConfig is the format-agnostic representation of a `sequence`
// block. Type names a registered sequence module; a sequence with
// children is a pure container and its own type's emission is unused.
type SequenceConfig struct {
	Type       string
	Name       string
	Parameters []*ParameterConfig
	Children   []*SequenceConfig
}

// ParameterConfig declares one typed parameter. Exactly one of Value or
// Elements must be set; Elements expands into one parameter per element.
type ParameterConfig struct {
	Name     string
	Type     string
	Unit     string
	Label    string
	Value    cty.Value
	Elements []ElementValueConfig
}

// ElementValueConfig is one per-element value of an element-expanded
// parameter.
type ElementValueConfig struct {
	Element string
	Value   cty.Value
}

// ReadSequenceConfig is the format-agnostic representation of a
// `read_sequence` block.
type ReadSequenceConfig struct {
	Name       string
	Parameters []*ParameterConfig
	Signals    []*SignalConfig
	Readouts   []*ReadoutConfig
}

// SignalConfig declares one measured signal with its element-role
// mapping and readout points.
type SignalConfig struct {
	Name   string
	Roles  []RoleConfig
	Points []*PointConfig
}

// RoleConfig maps an element role name to a physical sample element.
type RoleConfig struct {
	Role    string
	Element string
}

// PointConfig declares one readout point of a signal.
type PointConfig struct {
	Name        string
	Description string
	Observables []string
}

// ReadoutConfig declares a derived readout. Method names a registered
// readout module; Inputs maps the method's named inputs to
// "signal.observable" paths within the owning read-sequence.
type ReadoutConfig struct {
	Name   string
	Method string
	Signal string
	Inputs map[string]string
	Args   map[string]cty.Value
}

// SweepAxisConfig declares one sweep axis. Multiple bindings on the same
// axis step in lock-step and must have equally many values.
type SweepAxisConfig struct {
	Bindings []*SweepBindingConfig
}

// SweepBindingConfig binds setpoint values to a parameter addressed by
// its dotted path relative to the measurement root.
type SweepBindingConfig struct {
	Parameter string
	Values    []float64
}
