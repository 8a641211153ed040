// Package hcl reads request documents written in HCL and translates them into
// the format-agnostic request model. It also formats documents for
// `radgo fmt`.
package hcl
