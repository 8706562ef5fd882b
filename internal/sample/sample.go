// Package sample holds the read-only hardware-configuration facts shared
// by every node of a sequence tree: physical element names, voltage
// divider scale factors, and output-port existence. Nodes look facts up;
// they never mutate them.
package sample

import (
	"fmt"
	"sort"
)

// Sample describes one physical device configuration.
type Sample struct {
	name     string
	elements []string
	present  map[string]struct{}
	dividers map[string]float64
}

// New validates the divider config against the declared elements and
// returns an immutable sample. Every divider entry must reference a
// declared element.
func New(name string, elements []string, dividers map[string]float64) (*Sample, error) {
	if name == "" {
		return nil, fmt.Errorf("sample needs a name")
	}
	present := make(map[string]struct{}, len(elements))
	for _, e := range elements {
		if _, dup := present[e]; dup {
			return nil, fmt.Errorf("sample %q: element %q declared twice", name, e)
		}
		present[e] = struct{}{}
	}
	for e := range dividers {
		if _, ok := present[e]; !ok {
			return nil, fmt.Errorf(
				"sample %q: divider config references unknown element %q", name, e)
		}
	}
	s := &Sample{
		name:     name,
		elements: append([]string(nil), elements...),
		present:  present,
		dividers: make(map[string]float64, len(dividers)),
	}
	for e, d := range dividers {
		s.dividers[e] = d
	}
	return s, nil
}

// Name returns the sample's name.
func (s *Sample) Name() string { return s.name }

// Elements returns the declared element names in declaration order.
func (s *Sample) Elements() []string {
	return append([]string(nil), s.elements...)
}

// HasElement reports whether the element exists on this sample.
func (s *Sample) HasElement(name string) bool {
	_, ok := s.present[name]
	return ok
}

// Scale returns the voltage divider scale factor for an element, 1.0 when
// no divider is configured.
func (s *Sample) Scale(element string) float64 {
	if d, ok := s.dividers[element]; ok {
		return d
	}
	return 1.0
}

// DividedElements returns the elements with a configured divider, sorted
// for deterministic iteration.
func (s *Sample) DividedElements() []string {
	out := make([]string, 0, len(s.dividers))
	for e := range s.dividers {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
