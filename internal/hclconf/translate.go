// This file translates the HCL schema structs into the format-agnostic
// configuration model defined in the config package.

package hclconf

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/andncl/arbok-driver/internal/config"
)

func translateSample(s *sampleBlock) *config.SampleConfig {
	out := &config.SampleConfig{
		Name:     s.Name,
		Elements: s.Elements,
	}
	if len(s.Dividers) > 0 {
		out.Dividers = make(map[string]float64, len(s.Dividers))
		for _, d := range s.Dividers {
			out.Dividers[d.Element] = d.Scale
		}
	}
	return out
}

func translateMeasurement(m *measurementBlock) (*config.MeasurementConfig, error) {
	out := &config.MeasurementConfig{Name: m.Name}
	for _, s := range m.Sequences {
		sc, err := translateSequence(s)
		if err != nil {
			return nil, fmt.Errorf("measurement %q: %w", m.Name, err)
		}
		out.Sequences = append(out.Sequences, sc)
	}
	for _, rs := range m.ReadSequences {
		rc, err := translateReadSequence(rs)
		if err != nil {
			return nil, fmt.Errorf("measurement %q: %w", m.Name, err)
		}
		out.ReadSequences = append(out.ReadSequences, rc)
	}
	for _, sw := range m.Sweeps {
		out.Sweeps = append(out.Sweeps, translateSweep(sw))
	}
	return out, nil
}

func translateSequence(s *sequenceBlock) (*config.SequenceConfig, error) {
	out := &config.SequenceConfig{Type: s.Type, Name: s.Name}
	for _, p := range s.Parameters {
		pc, err := translateParameter(p)
		if err != nil {
			return nil, fmt.Errorf("sequence %q: %w", s.Name, err)
		}
		out.Parameters = append(out.Parameters, pc)
	}
	for _, c := range s.Children {
		cc, err := translateSequence(c)
		if err != nil {
			return nil, fmt.Errorf("sequence %q: %w", s.Name, err)
		}
		out.Children = append(out.Children, cc)
	}
	return out, nil
}

func translateParameter(p *parameterBlock) (*config.ParameterConfig, error) {
	out := &config.ParameterConfig{
		Name:  p.Name,
		Type:  p.Type,
		Unit:  p.Unit,
		Label: p.Label,
		Value: p.Value,
	}
	for _, e := range p.Elements {
		out.Elements = append(out.Elements, config.ElementValueConfig{
			Element: e.Name,
			Value:   e.Value,
		})
	}
	return out, nil
}

func translateReadSequence(rs *readSeqBlock) (*config.ReadSequenceConfig, error) {
	out := &config.ReadSequenceConfig{Name: rs.Name}
	for _, p := range rs.Parameters {
		pc, err := translateParameter(p)
		if err != nil {
			return nil, fmt.Errorf("read_sequence %q: %w", rs.Name, err)
		}
		out.Parameters = append(out.Parameters, pc)
	}
	for _, sig := range rs.Signals {
		out.Signals = append(out.Signals, translateSignal(sig))
	}
	for _, r := range rs.Readouts {
		rc, err := translateReadout(r)
		if err != nil {
			return nil, fmt.Errorf("read_sequence %q: %w", rs.Name, err)
		}
		out.Readouts = append(out.Readouts, rc)
	}
	return out, nil
}

func translateSignal(s *signalBlock) *config.SignalConfig {
	out := &config.SignalConfig{Name: s.Name}
	for _, r := range s.Roles {
		out.Roles = append(out.Roles, config.RoleConfig{Role: r.Role, Element: r.Element})
	}
	for _, p := range s.Points {
		out.Points = append(out.Points, &config.PointConfig{
			Name:        p.Name,
			Description: p.Description,
			Observables: p.Observables,
		})
	}
	return out
}

func translateReadout(r *readoutBlock) (*config.ReadoutConfig, error) {
	out := &config.ReadoutConfig{
		Name:   r.Name,
		Method: r.Method,
		Signal: r.Signal,
		Inputs: r.Inputs,
	}
	if r.Args != cty.NilVal && !r.Args.IsNull() {
		if !r.Args.Type().IsObjectType() && !r.Args.Type().IsMapType() {
			return nil, fmt.Errorf("readout %q: args must be an object", r.Name)
		}
		out.Args = r.Args.AsValueMap()
	}
	return out, nil
}

func translateSweep(s *sweepBlock) *config.SweepAxisConfig {
	out := &config.SweepAxisConfig{}
	for _, b := range s.Bindings {
		out.Bindings = append(out.Bindings, &config.SweepBindingConfig{
			Parameter: b.Parameter,
			Values:    b.Setpoints,
		})
	}
	return out
}
