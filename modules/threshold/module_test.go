package threshold

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/andncl/arbok-driver/internal/config"
	"github.com/andncl/arbok-driver/internal/qua"
	"github.com/andncl/arbok-driver/internal/sample"
	"github.com/andncl/arbok-driver/internal/sequence"
)

func TestThresholdEmitsBooleanObservable(t *testing.T) {
	t.Parallel()

	smp, err := sample.New("chip", []string{"SDC1"}, nil)
	require.NoError(t, err)
	rs := sequence.NewReadSequence("read", smp)
	sig, err := rs.AddSignal("sensor1",
		[]sequence.ElementRole{{Role: "set1", Element: "SDC1"}})
	require.NoError(t, err)
	_, err = sig.AddPoint("meas", "", []string{"I"})
	require.NoError(t, err)

	r, err := New("blocked", rs, &config.ReadoutConfig{
		Name:   "blocked",
		Method: "threshold",
		Signal: "sensor1",
		Inputs: map[string]string{"source": "sensor1.meas__set1_I"},
		Args:   map[string]cty.Value{"level": cty.NumberFloatVal(0.25)},
	})
	require.NoError(t, err)
	require.NoError(t, rs.AddReadout(r))

	ctx := context.Background()
	prog := qua.NewProgram()
	require.NoError(t, rs.EmitDeclare(ctx, prog))
	require.NoError(t, rs.EmitBody(ctx, prog, prog.Body()))

	text := prog.String()
	require.Contains(t, text, "declare bool read__sensor1__blocked")
	require.Contains(t, text,
		"assign read__sensor1__blocked = (read__sensor1__meas__set1_I > 0.25)")
	require.Contains(t, text, "save read__sensor1__blocked -> read__sensor1__blocked_stream")
}

func TestThresholdRequiresLevel(t *testing.T) {
	t.Parallel()

	smp, err := sample.New("chip", []string{"SDC1"}, nil)
	require.NoError(t, err)
	rs := sequence.NewReadSequence("read", smp)
	sig, err := rs.AddSignal("sensor1",
		[]sequence.ElementRole{{Role: "set1", Element: "SDC1"}})
	require.NoError(t, err)
	_, err = sig.AddPoint("meas", "", []string{"I"})
	require.NoError(t, err)

	_, err = New("blocked", rs, &config.ReadoutConfig{
		Signal: "sensor1",
		Inputs: map[string]string{"source": "sensor1.meas__set1_I"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "level")
}
