/*
Package engine defines the real-time contract of audio graph processors.

Concept

A graph of processors is executed once per audio block. Every processor
declares a fixed number of audio inputs and outputs and a fixed set of
typed event ports once, at construction, and never changes them. The
executor hands it a Context that is valid only for one Process call:

	Inputs       - read-only audio of upstream results;
	Outputs      - writable audio buffers owned by the graph;
	Results      - what downstream processors read, Outputs by default;
	EventInputs  - events produced upstream in this block;
	EventOutputs - events this processor produces in this block.

Process must read only declared inputs, write only declared outputs, run in
time proportional to the block size, not allocate, not block and not panic.
All fallible work belongs to construction.

Events

Parameter changes inside a block are events with a frame offset. A processor
that only knows how to render a parameter-constant run of samples implements
SlicedProcessor and lets ProcessSliced split the block at event offsets.
*/
package engine
