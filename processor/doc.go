// Package processor contains processors for the audio graph.
//
// Every processor here is real-time safe: Process doesn't allocate, lock
// or block. Values that cross thread boundaries go through mutable.Slot.
package processor
