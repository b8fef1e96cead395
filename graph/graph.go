// Package graph wires processors into a DAG. It owns audio and event
// buffers of every node and binds them into the processor context before
// each Process call.
package graph

import (
	"errors"
	"fmt"

	"github.com/rs/xid"

	"pipelined.dev/engine"
	"pipelined.dev/engine/dag"
	"pipelined.dev/engine/event"
	"pipelined.dev/engine/internal/assert"
	"pipelined.dev/engine/log"
	"pipelined.dev/engine/thread"
)

var (
	// ErrForeignNode is returned when node was added to another graph.
	ErrForeignNode = errors.New("node belongs to another graph")
	// ErrPortRange is returned when port index is out of range.
	ErrPortRange = errors.New("port out of range")
	// ErrPortType is returned when event ports have different types.
	ErrPortType = errors.New("event port type mismatch")
	// ErrConnected is returned when input is already connected.
	ErrConnected = errors.New("input already connected")
	// ErrCompiled is returned when graph is changed after compilation.
	ErrCompiled = errors.New("graph is compiled")
)

// DefaultEventCapacity is the default number of preallocated events per
// event output.
const DefaultEventCapacity = 64

type (
	// Graph is a set of processors and connections between their ports.
	// It's not safe for concurrent use.
	Graph struct {
		maxBufferSize int
		eventCapacity int
		silence       []float64
		nodes         []*Node
		compiled      bool
		log           log.Logger
	}

	// Node is a processor added to the graph.
	Node struct {
		id        xid.ID
		processor engine.Processor
		graph     *Graph
		audio     []source
		events    []source
		outputs   [][]float64
		ctx       engine.Context
	}

	// source is an output port of a node. Nil node means unconnected.
	source struct {
		node *Node
		port int
	}
)

// Option configures graph.
type Option func(*Graph)

// WithEventCapacity sets number of preallocated events per event output.
func WithEventCapacity(capacity int) Option {
	return func(g *Graph) {
		g.eventCapacity = capacity
	}
}

// WithLogger sets graph logger.
func WithLogger(l log.Logger) Option {
	return func(g *Graph) {
		g.log = l
	}
}

// New returns empty graph for blocks up to maxBufferSize frames.
func New(maxBufferSize int, options ...Option) *Graph {
	g := &Graph{
		maxBufferSize: maxBufferSize,
		eventCapacity: DefaultEventCapacity,
		silence:       make([]float64, maxBufferSize),
		log:           log.Silent(),
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// Add adds processor to the graph. The graph takes ownership of it.
func (g *Graph) Add(p engine.Processor) (*Node, error) {
	if g.compiled {
		return nil, ErrCompiled
	}
	n := &Node{
		id:        xid.New(),
		processor: p,
		graph:     g,
		audio:     make([]source, p.NumInputs()),
		events:    make([]source, len(p.EventInputs())),
	}
	g.nodes = append(g.nodes, n)
	return n, nil
}

// ConnectAudio feeds audio output of src into audio input of dst.
func (g *Graph) ConnectAudio(src *Node, out int, dst *Node, in int) error {
	if err := g.validate(src, dst); err != nil {
		return err
	}
	if out < 0 || out >= src.processor.NumOutputs() {
		return fmt.Errorf("%v audio output %d: %w", src, out, ErrPortRange)
	}
	if in < 0 || in >= dst.processor.NumInputs() {
		return fmt.Errorf("%v audio input %d: %w", dst, in, ErrPortRange)
	}
	if dst.audio[in].node != nil {
		return fmt.Errorf("%v audio input %d: %w", dst, in, ErrConnected)
	}
	dst.audio[in] = source{node: src, port: out}
	return nil
}

// ConnectEvent feeds event output of src into event input of dst. Ports
// must have the same element type.
func (g *Graph) ConnectEvent(src *Node, out int, dst *Node, in int) error {
	if err := g.validate(src, dst); err != nil {
		return err
	}
	outputs, inputs := src.processor.EventOutputs(), dst.processor.EventInputs()
	if out < 0 || out >= len(outputs) {
		return fmt.Errorf("%v event output %d: %w", src, out, ErrPortRange)
	}
	if in < 0 || in >= len(inputs) {
		return fmt.Errorf("%v event input %d: %w", dst, in, ErrPortRange)
	}
	if outputs[out].Type() != inputs[in].Type() {
		return fmt.Errorf("%v -> %v: %w", outputs[out], inputs[in], ErrPortType)
	}
	if dst.events[in].node != nil {
		return fmt.Errorf("%v event input %v: %w", dst, inputs[in], ErrConnected)
	}
	dst.events[in] = source{node: src, port: out}
	return nil
}

func (g *Graph) validate(nodes ...*Node) error {
	if g.compiled {
		return ErrCompiled
	}
	for _, n := range nodes {
		if n.graph != g {
			return fmt.Errorf("%v: %w", n, ErrForeignNode)
		}
	}
	return nil
}

// Compile allocates buffers and returns executor of the graph. With
// workers the executor distributes independent nodes between them. The
// graph can't be changed afterwards.
func (g *Graph) Compile(workers ...*thread.Worker) (dag.Executor, error) {
	if g.compiled {
		return nil, ErrCompiled
	}
	var d dag.DAG
	tasks := make(map[*Node]dag.TaskID, len(g.nodes))
	for _, n := range g.nodes {
		n.bind(g.maxBufferSize, g.eventCapacity)
		tasks[n] = d.AddTask(n.process)
	}

	edges := 0
	for _, n := range g.nodes {
		n.connectEvents()
		parents := make(map[*Node]struct{})
		for _, src := range n.sources() {
			if src.node == nil {
				continue
			}
			if _, ok := parents[src.node]; ok {
				continue
			}
			parents[src.node] = struct{}{}
			if err := d.AddChild(tasks[src.node], tasks[n]); err != nil {
				return nil, fmt.Errorf("connect %v to %v: %w", src.node, n, err)
			}
			edges++
		}
	}
	g.compiled = true
	g.log.Debug(fmt.Sprintf("graph compiled: %d nodes, %d edges, %d workers", len(g.nodes), edges, len(workers)))
	return d.Runnable(workers...), nil
}

// ID returns unique id of the node.
func (n *Node) ID() xid.ID {
	return n.id
}

// Processor returns processor of the node.
func (n *Node) Processor() engine.Processor {
	return n.processor
}

// Result returns audio result of the output port rendered in the last
// block. It's valid until the next block is executed.
func (n *Node) Result(port int) []float64 {
	return n.ctx.Results[port]
}

func (n *Node) String() string {
	return fmt.Sprintf("%s/%s#%s", n.processor.TypeName(), n.processor.Name(), n.id)
}

// bind allocates buffers of the node.
func (n *Node) bind(maxBufferSize, eventCapacity int) {
	p := n.processor
	n.outputs = make([][]float64, p.NumOutputs())
	for i := range n.outputs {
		n.outputs[i] = make([]float64, maxBufferSize)
	}
	n.ctx = engine.Context{
		Inputs:       make([][]float64, p.NumInputs()),
		Outputs:      make([][]float64, p.NumOutputs()),
		Results:      make([][]float64, p.NumOutputs()),
		EventInputs:  event.NewInputs(p.EventInputs()),
		EventOutputs: event.NewOutputs(p.EventOutputs(), eventCapacity),
	}
	for i := range n.ctx.Results {
		n.ctx.Results[i] = n.outputs[i][:0]
	}
}

// sources returns connections of all inputs.
func (n *Node) sources() []source {
	sources := make([]source, 0, len(n.audio)+len(n.events))
	sources = append(sources, n.audio...)
	return append(sources, n.events...)
}

// connectEvents binds event inputs to the output buffers of sources.
func (n *Node) connectEvents() {
	for i, src := range n.events {
		if src.node != nil {
			n.ctx.EventInputs.Set(i, src.node.ctx.EventOutputs.At(src.port))
		}
	}
}

// process is the task of the node executed once per block.
func (n *Node) process(tc *dag.ThreadContext) {
	bs := tc.BufferSize
	if assert.Enabled && bs > n.graph.maxBufferSize {
		assert.Failf("block of %d frames exceeds %d", bs, n.graph.maxBufferSize)
	}
	ctx := &n.ctx
	ctx.BufferSize = bs
	for i, src := range n.audio {
		if src.node == nil {
			ctx.Inputs[i] = n.graph.silence[:bs]
			continue
		}
		ctx.Inputs[i] = src.node.ctx.Results[src.port][:bs]
	}
	for i := range ctx.Outputs {
		ctx.Outputs[i] = n.outputs[i][:bs]
		ctx.Results[i] = ctx.Outputs[i]
	}
	ctx.EventOutputs.Clear()
	engine.VerifyContext(n.processor, ctx)
	n.processor.Process(ctx)
}
