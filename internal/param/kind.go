package param

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/andncl/arbok-driver/internal/qua"
)

// Kind classifies a parameter's value domain. It decides both the cty
// type used for configuration decoding and the device variable type used
// when the parameter is swept.
type Kind int

const (
	KindVoltage Kind = iota
	KindTime
	KindInt
	KindReal
	KindString
)

// KindFromString maps the `type` field of a parameter config entry.
func KindFromString(s string) (Kind, error) {
	switch s {
	case "voltage":
		return KindVoltage, nil
	case "time":
		return KindTime, nil
	case "int":
		return KindInt, nil
	case "real":
		return KindReal, nil
	case "string":
		return KindString, nil
	}
	return 0, fmt.Errorf("unknown parameter type %q", s)
}

// String returns the config-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindVoltage:
		return "voltage"
	case KindTime:
		return "time"
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	}
	return "unknown"
}

// CtyType returns the cty type parameter values of this kind decode to.
func (k Kind) CtyType() cty.Type {
	if k == KindString {
		return cty.String
	}
	return cty.Number
}

// VarType returns the device variable type backing a swept parameter of
// this kind. ok is false for kinds that cannot live in a device variable.
func (k Kind) VarType() (qua.VarType, bool) {
	switch k {
	case KindVoltage, KindReal:
		return qua.TypeFixed, true
	case KindTime, KindInt:
		return qua.TypeInt, true
	}
	return 0, false
}
