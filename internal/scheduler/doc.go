// Package scheduler drives serve mode: it runs every loaded request once per
// interval on a fixed pool of workers and records each outcome.
//
// # How It Works
//
// On start and then on every tick, the scheduler pushes each request that is
// not already running onto a job channel. Workers take requests from the
// channel, run the witness pipeline and store the outcome. A request whose
// previous run is still in progress is skipped for that tick, so slow
// sources never pile up runs of the same request.
//
// Cancelling the context stops dispatching; Run returns once every worker
// has finished its current request.
package scheduler
