// Package operators is the fixed catalog of RADON operators. Each operator is
// a pure function over values with a declared input kind and argument list.
//
// The catalog is keyed by opcode and resolved when a script is built, so an
// unknown opcode never reaches the interpreter. There is no way to register
// operators from outside this package: every node must run the same table.
package operators
