package param

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/andncl/arbok-driver/internal/qua"
)

func TestRefSwitchesFromLiteralToVariable(t *testing.T) {
	t.Parallel()

	p := New("amplitude", KindVoltage, "V", "")
	require.NoError(t, p.Set(cty.NumberFloatVal(0.5)))

	prog := qua.NewProgram()
	lit, err := p.Ref()
	require.NoError(t, err)

	v := prog.DeclareFixed("amplitude")
	p.BindSweep(v)
	require.True(t, p.Swept())
	ref, err := p.Ref()
	require.NoError(t, err)
	require.NotEqual(t, lit, ref)

	p.ClearSweep()
	require.False(t, p.Swept())
	again, err := p.Ref()
	require.NoError(t, err)
	require.Equal(t, lit, again)
}

func TestAttachIsExclusive(t *testing.T) {
	t.Parallel()

	p := New("amplitude", KindVoltage, "V", "")
	a := newFakeOwner("a")
	b := newFakeOwner("b")
	require.NoError(t, p.Attach(a))
	require.Error(t, p.Attach(b), "a parameter belongs to exactly one node")
	require.Equal(t, "a__amplitude", p.QuaName())
}

func TestSetRunsCustomValidator(t *testing.T) {
	t.Parallel()

	p := New("amplitude", KindVoltage, "V", "")
	p.SetValidator(func(v cty.Value) error {
		f, _ := v.AsBigFloat().Float64()
		if f < -0.5 || f > 0.5 {
			return errTooLarge
		}
		return nil
	})
	require.NoError(t, p.Set(cty.NumberFloatVal(0.3)))
	require.ErrorIs(t, p.Set(cty.NumberFloatVal(0.7)), errTooLarge)

	// Rejected values never replace the stored one.
	f, err := p.Float()
	require.NoError(t, err)
	require.Equal(t, 0.3, f)
}

var errTooLarge = &ConfigError{Param: "amplitude", Reason: "out of range"}

func TestKindVarTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want qua.VarType
		ok   bool
	}{
		{KindVoltage, qua.TypeFixed, true},
		{KindReal, qua.TypeFixed, true},
		{KindTime, qua.TypeInt, true},
		{KindInt, qua.TypeInt, true},
		{KindString, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.kind.VarType()
		require.Equal(t, tt.ok, ok, "kind %s", tt.kind)
		if ok {
			require.Equal(t, tt.want, got, "kind %s", tt.kind)
		}
	}
}
