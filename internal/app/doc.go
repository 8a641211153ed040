// Package app wires the node together: settings, transports, the retriever,
// the witness pipeline and the request loaders. It is decoupled from any
// specific entrypoint; the CLI and tests drive it through the same methods.
package app
