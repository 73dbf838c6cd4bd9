package view

import (
	"slices"

	"github.com/matzehuels/archlens/pkg/modname"
	"github.com/matzehuels/archlens/pkg/modtree"
)

// Classifier tells system modules from third-party packages.
//
// A name belongs to the system when it equals or sits inside one of
// SystemPrefixes, or when it is listed in SystemNames. Significant lists the
// top-level third-party packages worth drawing; when empty, every package
// outside the system is significant.
type Classifier struct {
	SystemPrefixes []string `toml:"system_prefixes" json:"system_prefixes,omitempty"`
	SystemNames    []string `toml:"system_names" json:"system_names,omitempty"`
	Significant    []string `toml:"significant" json:"significant,omitempty"`
}

// WithDefaults returns c with SystemPrefixes set to the top-level names of
// f's system tree when c lists neither prefixes nor names.
func (c Classifier) WithDefaults(f *modtree.Forest) Classifier {
	if len(c.SystemPrefixes) == 0 && len(c.SystemNames) == 0 {
		c.SystemPrefixes = SystemRoots(f)
	}
	return c
}

// SystemRoots returns the top-level component names of f's system tree in
// insertion order.
func SystemRoots(f *modtree.Forest) []string {
	var roots []string
	for name := range f.System.Root().Children() {
		roots = append(roots, name)
	}
	return roots
}

// BelongsToSystem reports whether name is part of the analyzed system.
func (c Classifier) BelongsToSystem(name string) bool {
	if slices.Contains(c.SystemNames, name) || slices.Contains(c.SystemPrefixes, name) {
		return true
	}
	return modname.AnyContains(c.SystemPrefixes, name)
}

// IsSignificantExternal reports whether name lies in a significant
// third-party package.
func (c Classifier) IsSignificantExternal(name string) bool {
	if name == "" || c.BelongsToSystem(name) {
		return false
	}
	if len(c.Significant) == 0 {
		return true
	}
	return slices.Contains(c.Significant, modname.Parent(name, 1))
}

// IsSignificantExternalTopLevel is IsSignificantExternal restricted to
// top-level names.
func (c Classifier) IsSignificantExternalTopLevel(name string) bool {
	return modname.Level(name) == 1 && c.IsSignificantExternal(name)
}
