package qua

import (
	"fmt"
	"strconv"
	"strings"
)

// VarType is the device-level type of a declared variable.
type VarType int

const (
	TypeInt VarType = iota
	TypeFixed
	TypeBool
)

// String returns the keyword used in the rendered program text.
func (t VarType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFixed:
		return "fixed"
	case TypeBool:
		return "bool"
	}
	return "unknown"
}

// Var is a handle to a declared device variable. Array variables carry
// their initial values; scalar variables do not.
type Var struct {
	name    string
	typ     VarType
	isArray bool
	length  int
}

// Name returns the variable's declared name.
func (v *Var) Name() string { return v.name }

// Type returns the variable's device-level type.
func (v *Var) Type() VarType { return v.typ }

// Len returns the array length, or 0 for scalars.
func (v *Var) Len() int { return v.length }

// Stream is a handle to a declared result stream.
type Stream struct {
	name string
}

// Name returns the stream's declared name.
func (s *Stream) Name() string { return s.name }

// Expr is a renderable right-hand-side expression.
type Expr interface {
	render() string
}

type refExpr struct{ v *Var }
type intExpr struct{ n int64 }
type realExpr struct{ f float64 }
type boolExpr struct{ b bool }
type indexExpr struct {
	arr *Var
	idx Expr
}
type binExpr struct {
	op   string
	l, r Expr
}

func (e refExpr) render() string  { return e.v.name }
func (e intExpr) render() string  { return strconv.FormatInt(e.n, 10) }
func (e realExpr) render() string { return formatReal(e.f) }
func (e boolExpr) render() string { return strconv.FormatBool(e.b) }
func (e indexExpr) render() string {
	return fmt.Sprintf("%s[%s]", e.arr.name, e.idx.render())
}
func (e binExpr) render() string {
	return fmt.Sprintf("(%s %s %s)", e.l.render(), e.op, e.r.render())
}

// Ref returns an expression referencing a declared variable.
func Ref(v *Var) Expr { return refExpr{v} }

// Int returns an integer literal expression.
func Int(n int64) Expr { return intExpr{n} }

// Real returns a real-valued literal expression.
func Real(f float64) Expr { return realExpr{f} }

// Bool returns a boolean literal expression.
func Bool(b bool) Expr { return boolExpr{b} }

// Index returns an indexed array lookup expression.
func Index(arr *Var, idx Expr) Expr { return indexExpr{arr, idx} }

// Add returns l + r.
func Add(l, r Expr) Expr { return binExpr{"+", l, r} }

// Sub returns l - r.
func Sub(l, r Expr) Expr { return binExpr{"-", l, r} }

// Mul returns l * r.
func Mul(l, r Expr) Expr { return binExpr{"*", l, r} }

// Gt returns l > r.
func Gt(l, r Expr) Expr { return binExpr{">", l, r} }

// formatReal renders a float deterministically with the shortest exact
// representation. Program text must be byte-identical across compiles.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Keep a trailing ".0" on whole numbers so real literals stay
	// distinguishable from integer literals in the rendered text.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatRealList(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatReal(v)
	}
	return strings.Join(parts, ", ")
}

func formatIntList(vals []int64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ", ")
}
