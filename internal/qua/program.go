// Package qua models the low-level instruction program emitted for the
// control device: variable and stream declarations, nested instruction
// blocks, and the stream-processing section. Programs render to a
// deterministic textual form so that identical build sequences produce
// byte-identical output.
package qua

import (
	"fmt"
	"strings"
)

// Channel associates a named result channel with the variable and stream
// backing it. The runtime collaborator binds channels by name when
// streaming results back.
type Channel struct {
	Name   string
	Var    *Var
	Stream *Stream
}

// Program is a single device program under construction. All declarations
// go through the program so the rendered declaration section preserves
// emission order.
type Program struct {
	alloc    *Allocator
	decls    []string
	body     *Block
	streams  []string
	channels []Channel
}

// NewProgram returns an empty program with a fresh resource allocator.
func NewProgram() *Program {
	return &Program{
		alloc: NewAllocator(),
		body:  &Block{},
	}
}

// Alloc returns the program's resource allocator. The allocator is scoped
// to this program and never shared across compilations.
func (p *Program) Alloc() *Allocator { return p.alloc }

// DeclareInt declares a scalar integer variable.
func (p *Program) DeclareInt(name string) *Var {
	v := &Var{name: name, typ: TypeInt}
	p.decls = append(p.decls, fmt.Sprintf("declare int %s", name))
	return v
}

// DeclareFixed declares a scalar fixed-point (real) variable.
func (p *Program) DeclareFixed(name string) *Var {
	v := &Var{name: name, typ: TypeFixed}
	p.decls = append(p.decls, fmt.Sprintf("declare fixed %s", name))
	return v
}

// DeclareBool declares a scalar boolean variable.
func (p *Program) DeclareBool(name string) *Var {
	v := &Var{name: name, typ: TypeBool}
	p.decls = append(p.decls, fmt.Sprintf("declare bool %s", name))
	return v
}

// DeclareIntArray declares an integer array initialized with values.
func (p *Program) DeclareIntArray(name string, values []int64) *Var {
	v := &Var{name: name, typ: TypeInt, isArray: true, length: len(values)}
	p.decls = append(p.decls, fmt.Sprintf(
		"declare int %s[%d] = [%s]", name, len(values), formatIntList(values)))
	return v
}

// DeclareFixedArray declares a fixed-point array initialized with values.
func (p *Program) DeclareFixedArray(name string, values []float64) *Var {
	v := &Var{name: name, typ: TypeFixed, isArray: true, length: len(values)}
	p.decls = append(p.decls, fmt.Sprintf(
		"declare fixed %s[%d] = [%s]", name, len(values), formatRealList(values)))
	return v
}

// DeclareStream declares a result stream.
func (p *Program) DeclareStream(name string) *Stream {
	s := &Stream{name: name}
	p.decls = append(p.decls, fmt.Sprintf("declare stream %s", name))
	return s
}

// Body returns the program's top-level instruction block.
func (p *Program) Body() *Block { return p.body }

// InfiniteLoop appends a perpetual loop to the program body and returns
// its block. The external controller steps it one shot at a time via the
// pause instruction at its top.
func (p *Program) InfiniteLoop() *Block {
	return p.body.child("infinite_loop:")
}

// RegisterChannel records a named result channel. Uniqueness is checked
// at final assembly, not here, so every colliding registration is still
// visible to the caller's diagnostics.
func (p *Program) RegisterChannel(name string, v *Var, s *Stream) {
	p.channels = append(p.channels, Channel{Name: name, Var: v, Stream: s})
}

// Channels returns all registered result channels in registration order.
func (p *Program) Channels() []Channel { return p.channels }

// BufferSave appends a stream-processing directive buffering length
// samples per pass under the given channel name.
func (p *Program) BufferSave(s *Stream, length int, channel string) {
	p.streams = append(p.streams, fmt.Sprintf(
		"%s.buffer(%d).save(%q)", s.name, length, channel))
}

// SaveAll appends a stream-processing directive accumulating every sample
// under the given channel name.
func (p *Program) SaveAll(s *Stream, channel string) {
	p.streams = append(p.streams, fmt.Sprintf("%s.save_all(%q)", s.name, channel))
}

// String renders the full program text. Rendering is a pure function of
// the build calls made so far.
func (p *Program) String() string {
	var b strings.Builder
	b.WriteString("program:\n")
	for _, d := range p.decls {
		b.WriteString("  ")
		b.WriteString(d)
		b.WriteByte('\n')
	}
	p.body.write(&b, 1)
	if len(p.streams) > 0 {
		b.WriteString("  stream_processing:\n")
		for _, s := range p.streams {
			b.WriteString("    ")
			b.WriteString(s)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
