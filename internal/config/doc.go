// Package config defines the format-agnostic configuration model for a
// measurement session: the sample description, the sequence trees of
// every measurement, and their sweep declarations.
//
// The config.Model is the single source of truth for the builder
// package. Concrete implementations of the Loader interface, such as
// for HCL, are provided in separate packages.
package config
