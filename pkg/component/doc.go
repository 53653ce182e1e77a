// Package component is the render call site. A Renderer resolves component
// descriptors, evaluates them through a template engine or a compiled
// RenderFunc inside the buffer-stack lifecycle, and binds the render and
// capture helpers so templates can nest components of any engine.
package component
