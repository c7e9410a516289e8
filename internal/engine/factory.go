package engine

import (
	"fmt"
	"sort"
	"strings"
)

// Constructor builds an engine from shared configuration.
type Constructor func(cfg Config) (Engine, error)

// engineConstructors maps engine names to their constructors.
// Engines register themselves via RegisterEngine.
var engineConstructors = make(map[string]Constructor)

// RegisterEngine registers an engine constructor by name.
func RegisterEngine(name string, constructor Constructor) {
	engineConstructors[strings.ToLower(name)] = constructor
}

// New creates an engine by name.
func New(name string, cfg Config) (Engine, error) {
	constructor, ok := engineConstructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown engine: %s (supported: %s)", name, strings.Join(Available(), ", "))
	}
	return constructor(cfg)
}

// Available returns the sorted list of registered engine names.
func Available() []string {
	names := make([]string, 0, len(engineConstructors))
	for name := range engineConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
