package hclconf

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot is the schema used to decode all top-level blocks from any
// configuration file.
type fileRoot struct {
	Samples      []*sampleBlock      `hcl:"sample,block"`
	Measurements []*measurementBlock `hcl:"measurement,block"`
	Remain       hcl.Body            `hcl:",remain"`
}

type sampleBlock struct {
	Name     string          `hcl:"name,label"`
	Elements []string        `hcl:"elements"`
	Dividers []*dividerBlock `hcl:"divider,block"`
}

type dividerBlock struct {
	Element string  `hcl:"element,label"`
	Scale   float64 `hcl:"scale"`
}

type measurementBlock struct {
	Name          string           `hcl:"name,label"`
	Sequences     []*sequenceBlock `hcl:"sequence,block"`
	ReadSequences []*readSeqBlock  `hcl:"read_sequence,block"`
	Sweeps        []*sweepBlock    `hcl:"sweep,block"`
}

type sequenceBlock struct {
	Type       string            `hcl:"type,label"`
	Name       string            `hcl:"name,label"`
	Parameters []*parameterBlock `hcl:"parameter,block"`
	Children   []*sequenceBlock  `hcl:"sequence,block"`
}

type parameterBlock struct {
	Name     string               `hcl:"name,label"`
	Type     string               `hcl:"type"`
	Unit     string               `hcl:"unit,optional"`
	Label    string               `hcl:"label,optional"`
	Value    cty.Value            `hcl:"value,optional"`
	Elements []*elementValueBlock `hcl:"element,block"`
}

type elementValueBlock struct {
	Name  string    `hcl:"name,label"`
	Value cty.Value `hcl:"value"`
}

type readSeqBlock struct {
	Name       string            `hcl:"name,label"`
	Parameters []*parameterBlock `hcl:"parameter,block"`
	Signals    []*signalBlock    `hcl:"signal,block"`
	Readouts   []*readoutBlock   `hcl:"readout,block"`
}

type signalBlock struct {
	Name   string        `hcl:"name,label"`
	Roles  []*roleBlock  `hcl:"role,block"`
	Points []*pointBlock `hcl:"point,block"`
}

type roleBlock struct {
	Role    string `hcl:"role,label"`
	Element string `hcl:"element"`
}

type pointBlock struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Observables []string `hcl:"observables"`
}

type readoutBlock struct {
	Name   string            `hcl:"name,label"`
	Method string            `hcl:"method"`
	Signal string            `hcl:"signal"`
	Inputs map[string]string `hcl:"inputs,optional"`
	Args   cty.Value         `hcl:"args,optional"`
}

type sweepBlock struct {
	Bindings []*sweepValuesBlock `hcl:"values,block"`
}

type sweepValuesBlock struct {
	Parameter string    `hcl:"parameter"`
	Setpoints []float64 `hcl:"setpoints"`
}
