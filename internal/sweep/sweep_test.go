package sweep

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/andncl/arbok-driver/internal/param"
	"github.com/andncl/arbok-driver/internal/qua"
)

func voltageParam(t *testing.T, name string, value float64) *param.Parameter {
	t.Helper()
	p := param.New(name, param.KindVoltage, "V", "")
	require.NoError(t, p.Set(cty.NumberFloatVal(value)))
	return p
}

func timeParam(t *testing.T, name string, value int64) *param.Parameter {
	t.Helper()
	p := param.New(name, param.KindTime, "cycles", "")
	require.NoError(t, p.Set(cty.NumberIntVal(value)))
	return p
}

func TestNewAxisRejectsUnequalLengths(t *testing.T) {
	t.Parallel()

	p1 := voltageParam(t, "p1", 0)
	p2 := voltageParam(t, "p2", 0)
	_, err := NewAxis(
		Binding{Param: p1, Values: []float64{1, 2, 3}},
		Binding{Param: p2, Values: []float64{1, 2}},
	)
	var swErr *SweepError
	require.True(t, errors.As(err, &swErr), "want SweepError, got %v", err)
	require.Contains(t, err.Error(), "equal length")
}

func TestNewAxisLockStep(t *testing.T) {
	t.Parallel()

	p1 := voltageParam(t, "p1", 0)
	p2 := voltageParam(t, "p2", 0)
	axis, err := NewAxis(
		Binding{Param: p1, Values: []float64{1, 2, 3}},
		Binding{Param: p2, Values: []float64{4, 5, 6}},
	)
	require.NoError(t, err)
	require.Equal(t, 3, axis.Length())
	require.Len(t, axis.Bindings(), 2)
}

func TestNewAxisRejectsStringParameters(t *testing.T) {
	t.Parallel()

	p := param.New("mode", param.KindString, "", "")
	require.NoError(t, p.Set(cty.StringVal("fast")))
	_, err := NewAxis(Binding{Param: p, Values: []float64{1, 2, 3}})
	var swErr *SweepError
	require.True(t, errors.As(err, &swErr))
	require.Contains(t, err.Error(), "cannot be swept")
}

func TestNewAxisRejectsFractionalIntSetpoints(t *testing.T) {
	t.Parallel()

	p := timeParam(t, "t_wait", 0)
	_, err := NewAxis(Binding{Param: p, Values: []float64{4, 8.5, 12}})
	var swErr *SweepError
	require.True(t, errors.As(err, &swErr), "want SweepError, got %v", err)
	require.Contains(t, err.Error(), "integral setpoints")
}

func TestNewSetRejectsParameterOnTwoAxes(t *testing.T) {
	t.Parallel()

	p := voltageParam(t, "p", 0)
	a1, err := NewAxis(Binding{Param: p, Values: []float64{1, 2, 3}})
	require.NoError(t, err)
	a2, err := NewAxis(Binding{Param: p, Values: []float64{4, 5, 6}})
	require.NoError(t, err)

	_, err = NewSet(a1, a2)
	var swErr *SweepError
	require.True(t, errors.As(err, &swErr))
	require.Contains(t, err.Error(), "more than one axis")
}

func TestDecideEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []float64
		integral bool
		want     Encoding
	}{
		{"constant step", []float64{0.1, 0.2, 0.3, 0.4}, false, EncodeProgression},
		{"high variance", []float64{0.1, 0.25, 0.3, 0.55}, false, EncodeArray},
		{"too short", []float64{0.1, 0.2}, false, EncodeArray},
		{"all equal", []float64{0.5, 0.5, 0.5}, false, EncodeArray},
		{"integral progression", []float64{100, 200, 300}, true, EncodeProgression},
		{"fractional step on int var", []float64{100, 150.5, 201}, true, EncodeArray},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, _ := decideEncoding(tt.values, tt.integral, DefaultOptions().ProgressionTolerance)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDeclareEmitsOneProgressionWarning(t *testing.T) {
	t.Parallel()

	p := voltageParam(t, "amplitude", 0.1)
	axis, err := NewAxis(Binding{Param: p, Values: []float64{0.1, 0.2, 0.3, 0.4}})
	require.NoError(t, err)
	set, err := NewSet(axis)
	require.NoError(t, err)

	prog := qua.NewProgram()
	require.NoError(t, set.Declare(context.Background(), prog))

	warnings := set.Warnings()
	require.Len(t, warnings, 1)
	require.Equal(t, "amplitude", warnings[0].Param)
	require.Equal(t, 4, warnings[0].Length)
	require.InDelta(t, 0.1, warnings[0].Start, 1e-12)
	require.InDelta(t, 0.1, warnings[0].Step, 1e-12)
	require.True(t, p.Swept())

	// Progression encoding declares no setpoint array.
	require.NotContains(t, prog.String(), "amplitude_arr")
}

func TestDeclareExplicitArrayHasNoWarning(t *testing.T) {
	t.Parallel()

	p := voltageParam(t, "amplitude", 0.1)
	axis, err := NewAxis(Binding{Param: p, Values: []float64{0.1, 0.25, 0.3, 0.55}})
	require.NoError(t, err)
	set, err := NewSet(axis)
	require.NoError(t, err)

	prog := qua.NewProgram()
	require.NoError(t, set.Declare(context.Background(), prog))
	require.Empty(t, set.Warnings())
	require.Contains(t, prog.String(),
		"declare fixed amplitude_arr[4] = [0.1, 0.25, 0.3, 0.55]")
}

func TestOpenLoopsNestsOuterToInner(t *testing.T) {
	t.Parallel()

	outer := voltageParam(t, "outer_p", 0)
	inner := timeParam(t, "inner_p", 0)
	a1, err := NewAxis(Binding{Param: outer, Values: []float64{0.1, 0.23, 0.3}})
	require.NoError(t, err)
	a2, err := NewAxis(Binding{Param: inner, Values: []float64{10, 17, 20, 50}})
	require.NoError(t, err)
	set, err := NewSet(a1, a2)
	require.NoError(t, err)
	require.Equal(t, 12, set.Size())
	require.Equal(t, []int{3, 4}, set.Dims())

	prog := qua.NewProgram()
	require.NoError(t, set.Declare(context.Background(), prog))
	body := set.OpenLoops(prog.Body())
	body.Align()

	text := prog.String()
	i0 := strings.Index(text, "for i0 in 0..3:")
	i1 := strings.Index(text, "for i1 in 0..4:")
	require.Greater(t, i0, -1)
	require.Greater(t, i1, i0, "first declared axis must be the outermost loop")

	// The inner loop body is indented deeper than the outer one.
	require.Contains(t, text, "  for i0 in 0..3:\n")
	require.Contains(t, text, "    for i1 in 0..4:\n")
	require.Contains(t, text, "      align\n")
}

func TestOpenLoopsAssignsLockStepParameters(t *testing.T) {
	t.Parallel()

	p1 := voltageParam(t, "p1", 0)
	p2 := voltageParam(t, "p2", 0)
	axis, err := NewAxis(
		Binding{Param: p1, Values: []float64{1, 2.5, 3}},
		Binding{Param: p2, Values: []float64{4, 5.5, 6}},
	)
	require.NoError(t, err)
	set, err := NewSet(axis)
	require.NoError(t, err)

	prog := qua.NewProgram()
	require.NoError(t, set.Declare(context.Background(), prog))
	set.OpenLoops(prog.Body())

	text := prog.String()
	require.Contains(t, text, "assign p1 = p1_arr[i0]")
	require.Contains(t, text, "assign p2 = p2_arr[i0]")
	require.Equal(t, 1, strings.Count(text, "for i0"), "lock-step axis uses one loop")
}
