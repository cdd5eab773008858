package modular

import (
	"encoding/json"
	"fmt"
	"math"
)

const maxPolyphony = 64

// Endpoint names one port on one module.
type Endpoint struct {
	Module string `json:"module"`
	Port   string `json:"port"`
}

// PatchModule is one module instance in a patch. RackSlot and Position are
// editor view metadata and ignored by the engine.
type PatchModule struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Params   map[string]float64 `json:"params,omitempty"`
	RackSlot int                `json:"rackSlot,omitempty"` //nolint:tagliatelle
	Position []float64          `json:"position,omitempty"`
}

// PatchConnection is one directed edge from a source output port to a target
// input port. Amount is a signed scalar: modulation depth for CV targets,
// mix gain for audio targets.
type PatchConnection struct {
	ID     string   `json:"id,omitempty"`
	Source Endpoint `json:"source"`
	Target Endpoint `json:"target"`
	Amount float64  `json:"amount"`
}

// Patch is the declarative description of a modular instrument.
type Patch struct {
	Modules     []PatchModule     `json:"modules"`
	Connections []PatchConnection `json:"connections"`
	Polyphony   int               `json:"polyphony"`
}

// ParsePatch decodes a JSON patch description. Structural validation happens
// at load time, not here.
func ParsePatch(raw []byte) (Patch, error) {
	var p Patch

	err := json.Unmarshal(raw, &p)
	if err != nil {
		return Patch{}, fmt.Errorf("invalid patch json: %w", err)
	}

	return p, nil
}

// compiledModule binds one patch module to its registry entry with the
// initial clamped parameter values.
type compiledModule struct {
	id      string
	desc    Descriptor
	factory Factory
	params  []float64
}

// compiledEdge is one resolved connection with module and port indices.
// delayed edges read the source's previous-block output to break cycles.
type compiledEdge struct {
	src     int
	srcPort int
	dst     int
	dstPort int
	amount  float64
	delayed bool
}

// compiledPatch is the immutable, validated form of a patch: resolved
// modules and edges, per-module incoming edge lists, and the cached block
// evaluation order. It depends only on the connection set, so it is computed
// once per load.
type compiledPatch struct {
	modules   []compiledModule
	edges     []compiledEdge
	incoming  [][]int
	connected [][]bool
	order     []int
	delayed   []int
	terminals []int
	polyphony int
}

// compilePatch validates a patch against the registry and resolves it into
// executable form. All failure paths run off the audio thread.
func compilePatch(reg *Registry, p Patch) (*compiledPatch, error) {
	if p.Polyphony < 1 || p.Polyphony > maxPolyphony {
		return nil, fmt.Errorf("%w: polyphony %d out of range [1, %d]", ErrPatchGraph, p.Polyphony, maxPolyphony)
	}

	if len(p.Modules) == 0 {
		return nil, fmt.Errorf("%w: patch has no modules", ErrPatchGraph)
	}

	modules := make([]compiledModule, 0, len(p.Modules))
	index := make(map[string]int, len(p.Modules))

	for _, m := range p.Modules {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: module with empty id", ErrPatchGraph)
		}

		if _, dup := index[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate module id %q", ErrPatchGraph, m.ID)
		}

		desc, factory, err := reg.Lookup(m.Type)
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", m.ID, err)
		}

		params, err := resolveParams(desc, m)
		if err != nil {
			return nil, err
		}

		index[m.ID] = len(modules)
		modules = append(modules, compiledModule{
			id:      m.ID,
			desc:    desc,
			factory: factory,
			params:  params,
		})
	}

	edges, err := resolveConnections(p.Connections, modules, index)
	if err != nil {
		return nil, err
	}

	cp := &compiledPatch{
		modules:   modules,
		edges:     edges,
		polyphony: p.Polyphony,
	}

	cp.order, cp.delayed = schedule(len(modules), edges)
	for _, e := range cp.delayed {
		cp.edges[e].delayed = true
	}

	cp.incoming = make([][]int, len(modules))
	cp.connected = make([][]bool, len(modules))

	for i, m := range modules {
		cp.connected[i] = make([]bool, len(m.desc.Inputs))
	}

	for i, e := range cp.edges {
		cp.incoming[e.dst] = append(cp.incoming[e.dst], i)
		cp.connected[e.dst][e.dstPort] = true
	}

	for i, m := range modules {
		if len(m.desc.Outputs) == 0 {
			cp.terminals = append(cp.terminals, i)
		}
	}

	return cp, nil
}

func resolveParams(desc Descriptor, m PatchModule) ([]float64, error) {
	params := desc.DefaultParams()

	for key, value := range m.Params {
		idx := desc.ParamIndex(key)
		if idx < 0 {
			return nil, fmt.Errorf("module %q (%s): %w: %s", m.ID, m.Type, ErrUnknownParameter, key)
		}

		params[idx] = desc.Params[idx].Clamp(value)
	}

	return params, nil
}

func resolveConnections(
	conns []PatchConnection,
	modules []compiledModule,
	index map[string]int,
) ([]compiledEdge, error) {
	edges := make([]compiledEdge, 0, len(conns))

	for i, c := range conns {
		src, ok := index[c.Source.Module]
		if !ok {
			return nil, fmt.Errorf("%w: connection %d source references unknown module %q", ErrPatchGraph, i, c.Source.Module)
		}

		dst, ok := index[c.Target.Module]
		if !ok {
			return nil, fmt.Errorf("%w: connection %d target references unknown module %q", ErrPatchGraph, i, c.Target.Module)
		}

		srcPort := modules[src].desc.OutputIndex(c.Source.Port)
		if srcPort < 0 {
			return nil, fmt.Errorf("%w: connection %d source port %q not an output of %q",
				ErrPatchGraph, i, c.Source.Port, c.Source.Module)
		}

		dstPort := modules[dst].desc.InputIndex(c.Target.Port)
		if dstPort < 0 {
			return nil, fmt.Errorf("%w: connection %d target port %q not an input of %q",
				ErrPatchGraph, i, c.Target.Port, c.Target.Module)
		}

		if math.IsNaN(c.Amount) || math.IsInf(c.Amount, 0) {
			return nil, fmt.Errorf("%w: connection %d amount must be finite", ErrPatchGraph, i)
		}

		edges = append(edges, compiledEdge{
			src:     src,
			srcPort: srcPort,
			dst:     dst,
			dstPort: dstPort,
			amount:  c.Amount,
		})
	}

	return edges, nil
}
