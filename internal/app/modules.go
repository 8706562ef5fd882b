package app

import (
	"github.com/andncl/arbok-driver/internal/registry"
	"github.com/andncl/arbok-driver/modules/difference"
	"github.com/andncl/arbok-driver/modules/ramp"
	"github.com/andncl/arbok-driver/modules/threshold"
)

// coreModules is the definitive list of all building blocks compiled
// into the binary.
var coreModules = []registry.Module{
	&ramp.Module{},
	&difference.Module{},
	&threshold.Module{},
}
