// Package sequence implements the tree of sequence nodes a measurement
// is built from, the polymorphic emission protocol over it, and the
// read-sequence structures (signals, readout points, observables).
package sequence

import (
	"context"
	"fmt"
	"strings"

	"github.com/andncl/arbok-driver/internal/param"
	"github.com/andncl/arbok-driver/internal/qua"
	"github.com/andncl/arbok-driver/internal/sample"
)

// Emitter is the capability every sequence-node variant provides: emit
// its contribution into the current device program, split into the three
// phases the program layout needs.
type Emitter interface {
	// node exposes the tree structure shared by all variants. Every
	// variant embeds Node, which provides it.
	node() *Node
	// EmitDeclare declares the variables and streams the node needs.
	EmitDeclare(ctx context.Context, p *qua.Program) error
	// EmitBody emits the node's instructions into the given block.
	EmitBody(ctx context.Context, p *qua.Program, b *qua.Block) error
	// EmitStream emits the node's stream-processing directives.
	EmitStream(ctx context.Context, p *qua.Program) error
}

// Node is the tree element embedded by every sequence variant. It owns
// the node's parameters in an explicit mapping and its children in
// insertion order; insertion order is emission order.
type Node struct {
	name   string
	sample *sample.Sample
	self   Emitter
	parent Emitter

	children  []Emitter
	childSet  map[string]Emitter
	params    map[string]*param.Parameter
	paramSeq  []string
	groups    map[string][]string
	groupSeq  []string
}

func (n *Node) init(name string, smp *sample.Sample, self Emitter) {
	n.name = name
	n.sample = smp
	n.self = self
	n.childSet = make(map[string]Emitter)
	n.params = make(map[string]*param.Parameter)
	n.groups = make(map[string][]string)
}

func (n *Node) node() *Node { return n }

// Name returns the node's local name.
func (n *Node) Name() string { return n.name }

// Sample returns the shared hardware-configuration facts. Read-only by
// contract; nodes never mutate the sample.
func (n *Node) Sample() *sample.Sample { return n.sample }

// Parent returns the parent emitter, nil for the root.
func (n *Node) Parent() Emitter { return n.parent }

// FullName joins the owning-node chain with the channel separator.
func (n *Node) FullName() string {
	var parts []string
	for cur := n; cur != nil; {
		parts = append(parts, cur.name)
		if cur.parent == nil {
			break
		}
		cur = cur.parent.node()
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "__")
}

// Children returns the child emitters in insertion order.
func (n *Node) Children() []Emitter { return n.children }

// AddChild attaches a child node. Sibling names must be unique.
func (n *Node) AddChild(c Emitter) error {
	cn := c.node()
	if cn.parent != nil {
		return fmt.Errorf("sequence %q already has a parent", cn.name)
	}
	if n.Has(cn.name) {
		return fmt.Errorf("sequence %q already has a child or parameter named %q", n.name, cn.name)
	}
	cn.parent = n.self
	n.children = append(n.children, c)
	n.childSet[cn.name] = c
	return nil
}

// Child returns the direct child with the given name.
func (n *Node) Child(name string) (Emitter, bool) {
	c, ok := n.childSet[name]
	return c, ok
}

// Has reports whether name is taken by a parameter, a parameter group,
// or a child on this node.
func (n *Node) Has(name string) bool {
	if _, ok := n.params[name]; ok {
		return true
	}
	if _, ok := n.groups[name]; ok {
		return true
	}
	_, ok := n.childSet[name]
	return ok
}

// AddParameter stores a resolved parameter under its name. Part of the
// param.Owner contract.
func (n *Node) AddParameter(p *param.Parameter) error {
	if n.Has(p.Name()) {
		return fmt.Errorf("name %q already taken on sequence %q", p.Name(), n.name)
	}
	n.params[p.Name()] = p
	n.paramSeq = append(n.paramSeq, p.Name())
	return nil
}

// RegisterGroup records the aggregate name of an element-expanded
// parameter spec. Part of the param.Owner contract.
func (n *Node) RegisterGroup(base string, members []string) error {
	if n.Has(base) {
		return fmt.Errorf("name %q already taken on sequence %q", base, n.name)
	}
	n.groups[base] = append([]string(nil), members...)
	n.groupSeq = append(n.groupSeq, base)
	return nil
}

// Parameter returns the parameter with the given resolved name.
func (n *Node) Parameter(name string) (*param.Parameter, bool) {
	p, ok := n.params[name]
	return p, ok
}

// Parameters returns the node's parameters in resolution order.
func (n *Node) Parameters() []*param.Parameter {
	out := make([]*param.Parameter, len(n.paramSeq))
	for i, name := range n.paramSeq {
		out[i] = n.params[name]
	}
	return out
}

// GroupParameters returns the member parameters of an element-expanded
// spec, in element declaration order.
func (n *Node) GroupParameters(base string) ([]*param.Parameter, error) {
	members, ok := n.groups[base]
	if !ok {
		return nil, &ReferenceError{Path: base, Where: n.FullName()}
	}
	out := make([]*param.Parameter, len(members))
	for i, name := range members {
		out[i] = n.params[name]
	}
	return out, nil
}

// ResolveParameter resolves a dotted path ("child.child.param") relative
// to this node into a parameter handle. Resolution happens once, at
// configuration time, never during emission.
func (n *Node) ResolveParameter(path string) (*param.Parameter, error) {
	segs := strings.Split(path, ".")
	cur := n
	for i, seg := range segs {
		if i == len(segs)-1 {
			if p, ok := cur.params[seg]; ok {
				return p, nil
			}
			return nil, &ReferenceError{Path: path, Where: n.FullName()}
		}
		child, ok := cur.childSet[seg]
		if !ok {
			return nil, &ReferenceError{Path: path, Where: n.FullName()}
		}
		cur = child.node()
	}
	return nil, &ReferenceError{Path: path, Where: n.FullName()}
}

// Contains reports whether p is owned by this node or any descendant.
func (n *Node) Contains(p *param.Parameter) bool {
	for _, own := range n.params {
		if own == p {
			return true
		}
	}
	for _, c := range n.children {
		if c.node().Contains(p) {
			return true
		}
	}
	return false
}

// ClearSweepBindings drops sweep bindings on every parameter under this
// node. Each compilation pass starts from unbound parameters.
func (n *Node) ClearSweepBindings() {
	for _, p := range n.params {
		p.ClearSweep()
	}
	for _, c := range n.children {
		c.node().ClearSweepBindings()
	}
}

// Leaf reports whether the node has no children.
func (n *Node) Leaf() bool { return len(n.children) == 0 }

// emitDeclareChildren runs the declare phase over all children in order.
func emitDeclareChildren(ctx context.Context, n *Node, p *qua.Program) error {
	for _, c := range n.children {
		if err := c.EmitDeclare(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// emitBodyChildren runs the body phase over all children in order.
func emitBodyChildren(ctx context.Context, n *Node, p *qua.Program, b *qua.Block) error {
	for _, c := range n.children {
		if err := c.EmitBody(ctx, p, b); err != nil {
			return err
		}
	}
	return nil
}

// emitStreamChildren runs the stream phase over all children in order.
func emitStreamChildren(ctx context.Context, n *Node, p *qua.Program) error {
	for _, c := range n.children {
		if err := c.EmitStream(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
