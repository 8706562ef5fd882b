// Package hclconf is the HCL-specific implementation of the
// config.Loader interface.
package hclconf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/andncl/arbok-driver/internal/config"
	"github.com/andncl/arbok-driver/internal/ctxlog"
)

// Loader loads HCL configuration files into the format-agnostic model.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load orchestrates the HCL loading process. It is agnostic to the
// origin of the paths and merges valid blocks from every file found.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, smp := range root.Samples {
			if model.Sample != nil {
				return nil, fmt.Errorf("file %s: sample %q: a session holds exactly one sample, already have %q",
					file, smp.Name, model.Sample.Name)
			}
			model.Sample = translateSample(smp)
		}
		for _, m := range root.Measurements {
			mc, err := translateMeasurement(m)
			if err != nil {
				return nil, fmt.Errorf("file %s: %w", file, err)
			}
			model.Measurements = append(model.Measurements, mc)
		}
	}

	if model.Sample == nil {
		return nil, fmt.Errorf("no sample block found in %v", paths)
	}
	logger.Debug("HCL loading complete.",
		"sample", model.Sample.Name, "measurements", len(model.Measurements))
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all
// .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
