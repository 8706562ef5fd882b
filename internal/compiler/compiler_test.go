package compiler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/andncl/arbok-driver/internal/param"
	"github.com/andncl/arbok-driver/internal/qua"
	"github.com/andncl/arbok-driver/internal/sample"
	"github.com/andncl/arbok-driver/internal/sequence"
	"github.com/andncl/arbok-driver/internal/sweep"
)

const sensorChannel = "scan__read__sensor1__ref__set1_I"

// buildMeasurement assembles a small but complete tree: an init
// sub-sequence playing one ramp and a read-sequence with a single
// demodulated observable.
func buildMeasurement(t *testing.T) (*sequence.Measurement, *sequence.SubSequence, *sequence.ReadSequence) {
	t.Helper()

	smp, err := sample.New("dot_array",
		[]string{"g1", "g2", "SDC1"}, map[string]float64{"g1": 0.5})
	require.NoError(t, err)

	m := sequence.NewMeasurement("scan", smp)
	init := sequence.NewSubSequence("init", smp, sequence.Hooks{
		Body: func(ctx context.Context, s *sequence.SubSequence, p *qua.Program, b *qua.Block) error {
			amp, ok := s.Parameter("amplitude")
			if !ok {
				t.Fatal("amplitude parameter missing")
			}
			ref, err := amp.Ref()
			if err != nil {
				return err
			}
			b.Play("ramp", "g1", ref, qua.Int(100))
			return nil
		},
	})
	require.NoError(t, m.AddChild(init))
	require.NoError(t, param.Resolve(init, []param.NamedSpec{
		{Name: "amplitude", Spec: param.Spec{
			Type: "voltage", Unit: "V", Value: cty.NumberFloatVal(0.5)}},
		{Name: "t_wait", Spec: param.Spec{
			Type: "time", Unit: "cycles", Value: cty.NumberIntVal(40)}},
	}))

	read := sequence.NewReadSequence("read", smp)
	require.NoError(t, m.AddChild(read))
	sig, err := read.AddSignal("sensor1",
		[]sequence.ElementRole{{Role: "set1", Element: "SDC1"}})
	require.NoError(t, err)
	_, err = sig.AddPoint("ref", "", []string{"I"})
	require.NoError(t, err)

	return m, init, read
}

func sweepAxis(t *testing.T, p *param.Parameter, values []float64) *sweep.Axis {
	t.Helper()
	axis, err := sweep.NewAxis(sweep.Binding{Param: p, Values: values})
	require.NoError(t, err)
	return axis
}

func TestCompileWithoutSweeps(t *testing.T) {
	t.Parallel()

	m, _, _ := buildMeasurement(t)
	res, err := Compile(context.Background(), m)
	require.NoError(t, err)

	text := res.String()
	require.Contains(t, text, "infinite_loop:")
	require.Contains(t, text, "pause")
	require.Contains(t, text, `play "ramp" * amp(0.5) on "g1" for 100`)
	require.Contains(t, text, sensorChannel+`_stream.save_all("`+sensorChannel+`")`)
	require.Contains(t, text, `scan_shots_stream.buffer(1).save("scan_shots")`)

	require.Equal(t, []Channel{
		{Name: sensorChannel},
		{Name: "scan_shots", BufferLen: 1},
	}, res.Channels)
	require.Empty(t, res.Warnings)
}

func TestCompileIsDeterministic(t *testing.T) {
	t.Parallel()

	m, init, _ := buildMeasurement(t)
	amp, ok := init.Parameter("amplitude")
	require.True(t, ok)
	require.NoError(t, m.SetSweeps(sweepAxis(t, amp, []float64{0.1, 0.2, 0.3, 0.4})))

	ctx := context.Background()
	first, err := Compile(ctx, m)
	require.NoError(t, err)
	second, err := Compile(ctx, m)
	require.NoError(t, err)

	require.Empty(t, cmp.Diff(first.String(), second.String()))
	require.Equal(t, first.Channels, second.Channels)
	require.Equal(t, first.Warnings, second.Warnings)
}

func TestCompileSweepScaffolding(t *testing.T) {
	t.Parallel()

	m, init, _ := buildMeasurement(t)
	amp, ok := init.Parameter("amplitude")
	require.True(t, ok)
	wait, ok := init.Parameter("t_wait")
	require.True(t, ok)
	require.NoError(t, m.SetSweeps(
		sweepAxis(t, amp, []float64{0.1, 0.2, 0.3, 0.4}),
		sweepAxis(t, wait, []float64{4, 8, 12}),
	))

	res, err := Compile(context.Background(), m)
	require.NoError(t, err)
	text := res.String()

	// The first axis is the outer loop, the second nests inside it.
	outer := strings.Index(text, "for i0 in 0..4:")
	inner := strings.Index(text, "for i1 in 0..3:")
	require.GreaterOrEqual(t, outer, 0)
	require.Greater(t, inner, outer)

	// Evenly spaced setpoints compile to progressions, not arrays.
	require.Contains(t, text, "assign scan__init__amplitude = (0.1 + (i0 * ")
	require.Contains(t, text, "assign scan__init__t_wait = (4 + (i1 * 4))")
	require.NotContains(t, text, "_arr")

	// The swept parameter now reads as a variable reference.
	require.Contains(t, text, `play "ramp" * amp(scan__init__amplitude) on "g1" for 100`)
	require.NotContains(t, text, "amp(0.5)")

	// Observable buffers hold one full sweep pass.
	require.Contains(t, text, sensorChannel+`_stream.buffer(12).save("`+sensorChannel+`")`)
	require.Equal(t, []Channel{
		{Name: sensorChannel, BufferLen: 12},
		{Name: "scan_shots", BufferLen: 1},
	}, res.Channels)

	require.Len(t, res.Warnings, 2)
	require.Equal(t, "scan__init__amplitude", res.Warnings[0].Param)
	require.Equal(t, "scan__init__t_wait", res.Warnings[1].Param)
}

func TestCompileRoundTripKeepsUnsweptRegions(t *testing.T) {
	t.Parallel()

	m, init, _ := buildMeasurement(t)
	ctx := context.Background()

	plain, err := Compile(ctx, m)
	require.NoError(t, err)
	require.Contains(t, plain.String(), "amp(0.5)")

	amp, ok := init.Parameter("amplitude")
	require.True(t, ok)
	require.NoError(t, m.SetSweeps(sweepAxis(t, amp, []float64{0.1, 0.2, 0.3, 0.4})))
	swept, err := Compile(ctx, m)
	require.NoError(t, err)
	require.Contains(t, swept.String(), "amp(scan__init__amplitude)")

	// Everything outside the swept play instruction survives unchanged.
	for _, line := range strings.Split(plain.String(), "\n") {
		if strings.Contains(line, "amp(") ||
			strings.Contains(line, "save_all") ||
			strings.Contains(line, "buffer(") {
			continue
		}
		require.Contains(t, swept.String(), line)
	}
}

func TestCompileRejectsDuplicateChannels(t *testing.T) {
	t.Parallel()

	m, _, _ := buildMeasurement(t)
	smp := m.Sample()
	clash := sequence.NewSubSequence("clash", smp, sequence.Hooks{
		Declare: func(ctx context.Context, s *sequence.SubSequence, p *qua.Program) error {
			v := p.DeclareFixed("x")
			st := p.DeclareStream("x_stream")
			p.RegisterChannel("twice", v, st)
			p.RegisterChannel("twice", v, st)
			return nil
		},
	})
	require.NoError(t, m.AddChild(clash))

	_, err := Compile(context.Background(), m)
	var cErr *CompileError
	require.True(t, errors.As(err, &cErr), "want CompileError, got %v", err)
	require.Contains(t, cErr.Error(), "twice")
}

// derivedObservable materializes one derived observable during the
// declaration phase, standing in for a readout module.
type derivedObservable struct {
	name string
	obs  *sequence.Observable
}

func (d *derivedObservable) Name() string { return d.name }

func (d *derivedObservable) Declare(ctx context.Context, p *qua.Program) error {
	d.obs.Materialize(p)
	return nil
}

func (d *derivedObservable) MeasureAndSave(ctx context.Context, p *qua.Program, b *qua.Block) error {
	return nil
}

func TestCompileRejectsCollidingObservablePaths(t *testing.T) {
	t.Parallel()

	m, _, read := buildMeasurement(t)
	sigA, err := read.AddSignal("a", []sequence.ElementRole{{Role: "set1", Element: "SDC1"}})
	require.NoError(t, err)
	sigAB, err := read.AddSignal("a__b", []sequence.ElementRole{{Role: "set1", Element: "SDC1"}})
	require.NoError(t, err)

	// Distinct observables under distinct signals, identical full path.
	first, err := sigA.AddObservable("b__c", qua.TypeFixed)
	require.NoError(t, err)
	second, err := sigAB.AddObservable("c", qua.TypeFixed)
	require.NoError(t, err)
	require.Equal(t, first.ChannelName(), second.ChannelName())

	require.NoError(t, read.AddReadout(&derivedObservable{name: "first", obs: first}))
	require.NoError(t, read.AddReadout(&derivedObservable{name: "second", obs: second}))

	_, err = Compile(context.Background(), m)
	var cErr *CompileError
	require.True(t, errors.As(err, &cErr), "want CompileError, got %v", err)
	require.Contains(t, cErr.Error(), "scan__read__a__b__c")
}

func TestCompileReservesShotChannelName(t *testing.T) {
	t.Parallel()

	m, _, _ := buildMeasurement(t)
	clash := sequence.NewSubSequence("clash", m.Sample(), sequence.Hooks{
		Declare: func(ctx context.Context, s *sequence.SubSequence, p *qua.Program) error {
			v := p.DeclareFixed("x")
			st := p.DeclareStream("x_stream")
			p.RegisterChannel("scan_shots", v, st)
			return nil
		},
	})
	require.NoError(t, m.AddChild(clash))

	_, err := Compile(context.Background(), m)
	var cErr *CompileError
	require.True(t, errors.As(err, &cErr), "want CompileError, got %v", err)
	require.Contains(t, cErr.Error(), "scan_shots")
}

// rematerializer reaches the same observable through a second reference
// path during declaration.
type rematerializer struct {
	obs *sequence.Observable
}

func (r *rematerializer) Name() string { return "rematerialize" }

func (r *rematerializer) Declare(ctx context.Context, p *qua.Program) error {
	r.obs.Materialize(p)
	return nil
}

func (r *rematerializer) MeasureAndSave(ctx context.Context, p *qua.Program, b *qua.Block) error {
	return nil
}

func TestCompileAllocatesObservablesOnce(t *testing.T) {
	t.Parallel()

	m, _, read := buildMeasurement(t)
	obs, err := read.ResolveObservable("sensor1.ref__set1_I")
	require.NoError(t, err)
	require.NoError(t, read.AddReadout(&rematerializer{obs: obs}))

	res, err := Compile(context.Background(), m)
	require.NoError(t, err)

	text := res.String()
	require.Equal(t, 1, strings.Count(text, "declare fixed "+sensorChannel+"\n"))
	require.Equal(t, 1, strings.Count(text, `.save_all("`+sensorChannel+`")`))
}
