// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"fmt"
	"sort"

	"github.com/nyxfield/sonance/internal/alerr"
)

// registry holds the Player constructors compiled into this binary.
// Each concrete backend file registers itself from an init() guarded by
// its own build tag, so a consumer never needs its own build-tag-gated
// selection logic: it just asks for a backend by name and gets a clear
// error if that build wasn't compiled in.
var registry = map[string]func() Player{}

func register(name string, ctor func() Player) {
	registry[name] = ctor
}

// New constructs the named backend, or a NoDevice error if this binary
// wasn't built with that backend's build tag.
func New(name string) (Player, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, alerr.New(alerr.NoDevice, "backend.New",
			fmt.Sprintf("backend %q not compiled into this binary (available: %v)", name, Available()))
	}
	return ctor(), nil
}

// Available lists the backend names compiled into this binary, sorted
// for stable CLI help/error output.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
