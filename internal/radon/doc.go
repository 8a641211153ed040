// Package radon defines the closed set of typed values that flow through every
// stage of the RAD engine, their total order and their canonical binary
// encoding.
//
// Values are immutable once constructed. Constructors copy the slices and maps
// they are given, and accessors return copies, so a value can be shared
// between pipelines without synchronization.
package radon
