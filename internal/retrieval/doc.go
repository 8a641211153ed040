// Package retrieval fetches the sources of a data request and turns each one
// into a single value.
//
// Every source is fetched over each configured network path (the direct
// connection and each proxy) and its script runs on every body. The path
// results must then agree: the largest group of equal results wins, and it is
// accepted only when it reaches the paranoia threshold. Sources and paths are
// fetched concurrently, bounded by a shared in-flight limit and rate limiter,
// and the result array is always ordered by source index.
package retrieval
