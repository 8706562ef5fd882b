package difference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andncl/arbok-driver/internal/config"
	"github.com/andncl/arbok-driver/internal/qua"
	"github.com/andncl/arbok-driver/internal/sample"
	"github.com/andncl/arbok-driver/internal/sequence"
)

func readSequenceWithPoints(t *testing.T) *sequence.ReadSequence {
	t.Helper()
	smp, err := sample.New("chip", []string{"SDC1"}, nil)
	require.NoError(t, err)
	rs := sequence.NewReadSequence("read", smp)
	sig, err := rs.AddSignal("sensor1",
		[]sequence.ElementRole{{Role: "set1", Element: "SDC1"}})
	require.NoError(t, err)
	_, err = sig.AddPoint("ref", "", []string{"I"})
	require.NoError(t, err)
	_, err = sig.AddPoint("meas", "", []string{"I"})
	require.NoError(t, err)
	return rs
}

func TestTakeDiffEmitsDifference(t *testing.T) {
	t.Parallel()

	rs := readSequenceWithPoints(t)
	r, err := New("diff", rs, &config.ReadoutConfig{
		Name:   "diff",
		Method: "take_diff",
		Signal: "sensor1",
		Inputs: map[string]string{
			"minuend":    "sensor1.meas__set1_I",
			"subtrahend": "sensor1.ref__set1_I",
		},
	})
	require.NoError(t, err)
	require.NoError(t, rs.AddReadout(r))

	ctx := context.Background()
	prog := qua.NewProgram()
	require.NoError(t, rs.EmitDeclare(ctx, prog))
	require.NoError(t, rs.EmitBody(ctx, prog, prog.Body()))

	text := prog.String()
	require.Contains(t, text, "declare fixed read__sensor1__diff")
	require.Contains(t, text,
		"assign read__sensor1__diff = (read__sensor1__meas__set1_I - read__sensor1__ref__set1_I)")
	require.Contains(t, text, "save read__sensor1__diff -> read__sensor1__diff_stream")
	require.Len(t, prog.Channels(), 3)
}

func TestTakeDiffRejectsBadReferences(t *testing.T) {
	t.Parallel()

	rs := readSequenceWithPoints(t)
	_, err := New("diff", rs, &config.ReadoutConfig{
		Signal: "sensor1",
		Inputs: map[string]string{
			"minuend":    "sensor1.meas__set1_I",
			"subtrahend": "sensor1.nope",
		},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "subtrahend")

	_, err = New("diff", rs, &config.ReadoutConfig{
		Signal: "ghost",
		Inputs: map[string]string{},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ghost")
}
