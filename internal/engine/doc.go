// Package engine is the concurrent execution core of spikegridgo.
//
// One simulation timestep is driven through four strictly ordered phases:
// aggregate-input, advance-state, update-weights, record. Within a phase,
// every task is independent and may run on any worker in any order; between
// phases, a barrier guarantees that no task of phase K+1 observes graph
// state that has not incorporated all of phase K.
//
// Two interchangeable backends bound intra-phase parallelism to the
// configured worker budget: a fixed pool of long-lived workers draining a
// bounded queue, and a throttled spawner that starts one goroutine per task
// behind a counting admission gate. A worker budget of zero selects a fully
// sequential in-process path that produces results identical to the
// concurrent paths up to floating-point summation order.
package engine
