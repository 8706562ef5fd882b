// Package builder assembles runnable measurement trees from the
// format-agnostic configuration model, using the registry to instantiate
// the configured sequence types and readout methods.
package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/andncl/arbok-driver/internal/config"
	"github.com/andncl/arbok-driver/internal/ctxlog"
	"github.com/andncl/arbok-driver/internal/param"
	"github.com/andncl/arbok-driver/internal/registry"
	"github.com/andncl/arbok-driver/internal/sample"
	"github.com/andncl/arbok-driver/internal/sequence"
	"github.com/andncl/arbok-driver/internal/sweep"
)

// Session is the built form of one configuration model: the shared
// sample plus every measurement tree, ready for compilation.
type Session struct {
	Sample       *sample.Sample
	Measurements []*sequence.Measurement
}

// Build constructs the session from the loaded model. Every reference in
// the model (elements, sweep paths, observable paths) is resolved here,
// so a bad configuration fails before any emission starts.
func Build(ctx context.Context, model *config.Model, reg *registry.Registry) (*Session, error) {
	logger := ctxlog.FromContext(ctx)

	if model.Sample == nil {
		return nil, errors.New("configuration has no sample")
	}
	smp, err := sample.New(model.Sample.Name, model.Sample.Elements, model.Sample.Dividers)
	if err != nil {
		return nil, err
	}
	logger.Debug("Sample built.", "name", smp.Name(), "elements", len(model.Sample.Elements))

	s := &Session{Sample: smp}
	for _, mc := range model.Measurements {
		m, err := buildMeasurement(ctx, mc, smp, reg)
		if err != nil {
			return nil, err
		}
		s.Measurements = append(s.Measurements, m)
	}
	logger.Debug("Session built.", "measurements", len(s.Measurements))
	return s, nil
}

func buildMeasurement(ctx context.Context, mc *config.MeasurementConfig, smp *sample.Sample, reg *registry.Registry) (*sequence.Measurement, error) {
	m := sequence.NewMeasurement(mc.Name, smp)

	for _, sc := range mc.Sequences {
		child, err := buildSequence(ctx, sc, smp, reg)
		if err != nil {
			return nil, fmt.Errorf("measurement %q: %w", mc.Name, err)
		}
		if err := m.AddChild(child); err != nil {
			return nil, fmt.Errorf("measurement %q: %w", mc.Name, err)
		}
	}
	for _, rc := range mc.ReadSequences {
		rs, err := buildReadSequence(ctx, rc, smp, reg)
		if err != nil {
			return nil, fmt.Errorf("measurement %q: %w", mc.Name, err)
		}
		if err := m.AddChild(rs); err != nil {
			return nil, fmt.Errorf("measurement %q: %w", mc.Name, err)
		}
	}

	if len(mc.Sweeps) > 0 {
		axes := make([]*sweep.Axis, 0, len(mc.Sweeps))
		for _, ac := range mc.Sweeps {
			bindings := make([]sweep.Binding, 0, len(ac.Bindings))
			for _, bc := range ac.Bindings {
				p, err := m.ResolveParameter(bc.Parameter)
				if err != nil {
					return nil, fmt.Errorf("measurement %q sweep: %w", mc.Name, err)
				}
				bindings = append(bindings, sweep.Binding{Param: p, Values: bc.Values})
			}
			axis, err := sweep.NewAxis(bindings...)
			if err != nil {
				return nil, fmt.Errorf("measurement %q sweep: %w", mc.Name, err)
			}
			axes = append(axes, axis)
		}
		if err := m.SetSweeps(axes...); err != nil {
			return nil, fmt.Errorf("measurement %q: %w", mc.Name, err)
		}
	}
	return m, nil
}

func buildSequence(ctx context.Context, sc *config.SequenceConfig, smp *sample.Sample, reg *registry.Registry) (*sequence.SubSequence, error) {
	ss, err := reg.NewSequence(sc.Type, sc.Name, smp)
	if err != nil {
		return nil, err
	}
	if err := param.Resolve(ss, paramSpecs(sc.Parameters)); err != nil {
		return nil, fmt.Errorf("sequence %q: %w", sc.Name, err)
	}
	for _, cc := range sc.Children {
		child, err := buildSequence(ctx, cc, smp, reg)
		if err != nil {
			return nil, err
		}
		if err := ss.AddChild(child); err != nil {
			return nil, fmt.Errorf("sequence %q: %w", sc.Name, err)
		}
	}
	return ss, nil
}

func buildReadSequence(ctx context.Context, rc *config.ReadSequenceConfig, smp *sample.Sample, reg *registry.Registry) (*sequence.ReadSequence, error) {
	rs := sequence.NewReadSequence(rc.Name, smp)
	if err := param.Resolve(rs, paramSpecs(rc.Parameters)); err != nil {
		return nil, fmt.Errorf("read_sequence %q: %w", rc.Name, err)
	}
	for _, sigCfg := range rc.Signals {
		roles := make([]sequence.ElementRole, 0, len(sigCfg.Roles))
		for _, r := range sigCfg.Roles {
			roles = append(roles, sequence.ElementRole{Role: r.Role, Element: r.Element})
		}
		sig, err := rs.AddSignal(sigCfg.Name, roles)
		if err != nil {
			return nil, err
		}
		for _, pt := range sigCfg.Points {
			if _, err := sig.AddPoint(pt.Name, pt.Description, pt.Observables); err != nil {
				return nil, err
			}
		}
	}
	// Readouts resolve observable paths, so they come after every signal
	// is declared.
	for _, roCfg := range rc.Readouts {
		r, err := reg.NewReadout(rs, roCfg)
		if err != nil {
			return nil, fmt.Errorf("read_sequence %q: %w", rc.Name, err)
		}
		if err := rs.AddReadout(r); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

func paramSpecs(cfgs []*config.ParameterConfig) []param.NamedSpec {
	specs := make([]param.NamedSpec, 0, len(cfgs))
	for _, pc := range cfgs {
		s := param.Spec{
			Type:  pc.Type,
			Unit:  pc.Unit,
			Label: pc.Label,
			Value: pc.Value,
		}
		for _, ev := range pc.Elements {
			s.Elements = append(s.Elements, param.ElementValue{Name: ev.Element, Value: ev.Value})
		}
		specs = append(specs, param.NamedSpec{Name: pc.Name, Spec: s})
	}
	return specs
}
