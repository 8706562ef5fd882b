package qua

import (
	"fmt"
	"strings"
)

// stmt is either a leaf instruction line or a nested block.
type stmt struct {
	line  string
	block *Block
}

// Block is a nested sequence of instructions. The zero value is usable as
// an empty block.
type Block struct {
	header string
	stmts  []stmt
}

func (b *Block) child(header string) *Block {
	nb := &Block{header: header}
	b.stmts = append(b.stmts, stmt{block: nb})
	return nb
}

func (b *Block) add(line string) {
	b.stmts = append(b.stmts, stmt{line: line})
}

// Pause suspends execution until the external controller resumes the
// program. Used as the per-shot synchronization point.
func (b *Block) Pause() {
	b.add("pause")
}

// For opens an iteration block running idx from 0 inclusive to length
// exclusive and returns the loop body.
func (b *Block) For(idx *Var, length int) *Block {
	return b.child(fmt.Sprintf("for %s in 0..%d:", idx.name, length))
}

// Assign assigns the expression to the variable.
func (b *Block) Assign(v *Var, e Expr) {
	b.add(fmt.Sprintf("assign %s = %s", v.name, e.render()))
}

// Play emits a pulse operation on an element. A nil amp plays the
// operation at its configured amplitude; a nil duration uses the pulse's
// configured length.
func (b *Block) Play(op, element string, amp, duration Expr) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "play %q", op)
	if amp != nil {
		fmt.Fprintf(&sb, " * amp(%s)", amp.render())
	}
	fmt.Fprintf(&sb, " on %q", element)
	if duration != nil {
		fmt.Fprintf(&sb, " for %s", duration.render())
	}
	b.add(sb.String())
}

// Measure demodulates the named operation on an element into the given
// output variables.
func (b *Block) Measure(op, element string, outs ...*Var) {
	names := make([]string, len(outs))
	for i, v := range outs {
		names[i] = v.name
	}
	b.add(fmt.Sprintf("measure %q on %q -> (%s)", op, element, strings.Join(names, ", ")))
}

// Save pushes the variable's current value onto the stream.
func (b *Block) Save(v *Var, s *Stream) {
	b.add(fmt.Sprintf("save %s -> %s", v.name, s.name))
}

// Wait idles the listed elements for the given duration.
func (b *Block) Wait(duration Expr, elements ...string) {
	quoted := make([]string, len(elements))
	for i, e := range elements {
		quoted[i] = fmt.Sprintf("%q", e)
	}
	b.add(fmt.Sprintf("wait %s on %s", duration.render(), strings.Join(quoted, ", ")))
}

// Align synchronizes the listed elements. With no elements, all elements
// are aligned.
func (b *Block) Align(elements ...string) {
	if len(elements) == 0 {
		b.add("align")
		return
	}
	quoted := make([]string, len(elements))
	for i, e := range elements {
		quoted[i] = fmt.Sprintf("%q", e)
	}
	b.add(fmt.Sprintf("align %s", strings.Join(quoted, ", ")))
}

func (b *Block) write(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	if b.header != "" {
		sb.WriteString(indent)
		sb.WriteString(b.header)
		sb.WriteByte('\n')
		depth++
		indent += "  "
	}
	for _, s := range b.stmts {
		if s.block != nil {
			s.block.write(sb, depth)
			continue
		}
		sb.WriteString(indent)
		sb.WriteString(s.line)
		sb.WriteByte('\n')
	}
}
