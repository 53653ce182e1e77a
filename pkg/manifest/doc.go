// Package manifest loads component manifests from JSON or YAML and turns them
// into the component and template-engine registries a Renderer needs.
package manifest
