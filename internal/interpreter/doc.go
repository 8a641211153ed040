// Package interpreter runs a RADON script over an input value and produces a
// report.
//
// # Failure propagation
//
// Every call receives the output of the previous one. Errors are ordinary
// values, but they stop the script unless the next operator declares that it
// accepts them: an Error output followed by an operator that does not handle
// errors becomes the final result, and the report points at the call that
// produced it.
//
// # Determinism
//
// Given the same script and input, Execute returns a report whose canonical
// encoding is byte-identical on every run and every platform. The elapsed
// time is the only field that varies and it is never encoded.
package interpreter
