// Package request defines the format-agnostic model of a data request along
// with the Loader interface implemented by each document format.
//
// A Request is what a document says; Compile turns it into a Compiled request
// whose scripts are built and validated against the operator catalog. The
// witness pipeline only ever sees compiled requests.
package request
