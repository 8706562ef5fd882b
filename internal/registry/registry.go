// Package registry holds the compiled-in building blocks a configuration
// can instantiate: sequence factories keyed by type name and readout
// factories keyed by method name.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/andncl/arbok-driver/internal/config"
	"github.com/andncl/arbok-driver/internal/sample"
	"github.com/andncl/arbok-driver/internal/sequence"
)

// Module is the interface all core modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// SequenceFactory builds one sub-sequence instance with the module's
// emission hooks attached.
type SequenceFactory func(name string, smp *sample.Sample) *sequence.SubSequence

// ReadoutFactory builds one derived readout bound to a read-sequence.
// The factory resolves the config's observable paths eagerly, so a bad
// reference fails at build time.
type ReadoutFactory func(name string, rs *sequence.ReadSequence, cfg *config.ReadoutConfig) (sequence.Readout, error)

// Registry holds the registered factories for a single application
// instance.
type Registry struct {
	sequences map[string]SequenceFactory
	readouts  map[string]ReadoutFactory
}

// New creates an empty Registry instance.
func New() *Registry {
	return &Registry{
		sequences: make(map[string]SequenceFactory),
		readouts:  make(map[string]ReadoutFactory),
	}
}

// RegisterSequence registers a sequence factory under its type name.
func (r *Registry) RegisterSequence(typ string, f SequenceFactory) {
	if _, exists := r.sequences[typ]; exists {
		panic(fmt.Sprintf("sequence type %q already registered", typ))
	}
	slog.Debug("Registering sequence factory.", "type", typ)
	r.sequences[typ] = f
}

// RegisterReadout registers a readout factory under its method name.
func (r *Registry) RegisterReadout(method string, f ReadoutFactory) {
	if _, exists := r.readouts[method]; exists {
		panic(fmt.Sprintf("readout method %q already registered", method))
	}
	slog.Debug("Registering readout factory.", "method", method)
	r.readouts[method] = f
}

// NewSequence instantiates a registered sequence type.
func (r *Registry) NewSequence(typ, name string, smp *sample.Sample) (*sequence.SubSequence, error) {
	f, ok := r.sequences[typ]
	if !ok {
		return nil, fmt.Errorf("unknown sequence type %q, registered: %v", typ, r.SequenceTypes())
	}
	return f(name, smp), nil
}

// NewReadout instantiates a registered readout method.
func (r *Registry) NewReadout(rs *sequence.ReadSequence, cfg *config.ReadoutConfig) (sequence.Readout, error) {
	f, ok := r.readouts[cfg.Method]
	if !ok {
		return nil, fmt.Errorf("unknown readout method %q, registered: %v", cfg.Method, r.ReadoutMethods())
	}
	return f(cfg.Name, rs, cfg)
}

// SequenceTypes returns the registered sequence type names, sorted.
func (r *Registry) SequenceTypes() []string {
	out := make([]string, 0, len(r.sequences))
	for typ := range r.sequences {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// ReadoutMethods returns the registered readout method names, sorted.
func (r *Registry) ReadoutMethods() []string {
	out := make([]string, 0, len(r.readouts))
	for m := range r.readouts {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
