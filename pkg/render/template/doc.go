// Package template defines the engine-agnostic evaluation contract used by the
// render lifecycle, plus a registry of named engines. Engine adapters live in
// sub-packages (pongo, htmltemplate).
package template
