// Package transport fetches raw source bodies over the network. Each
// transport turns one request into a radon value (String, Bytes or Map) or a
// Go error; mapping errors onto radon error codes is left to the caller.
package transport
