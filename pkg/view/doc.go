// Package view provides Context, the host rendering context that owns the
// output buffer slot during one top-level render.
package view
