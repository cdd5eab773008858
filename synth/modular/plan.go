package modular

// PlanStep is one module in block evaluation order.
type PlanStep struct {
	ModuleID string
	Kind     string
}

// PlanEdge is one resolved connection. Delayed edges read the source's
// previous block to break a feedback cycle.
type PlanEdge struct {
	Source  Endpoint
	Target  Endpoint
	Amount  float64
	Delayed bool
}

// Plan is a read-only summary of a compiled patch: the cached evaluation
// order and the resolved connection set.
type Plan struct {
	Steps     []PlanStep
	Edges     []PlanEdge
	Polyphony int
}

// PlanPatch validates and compiles a patch without instantiating any
// modules, returning its evaluation plan. Useful for offline inspection
// of patch files.
func (r *Registry) PlanPatch(p Patch) (*Plan, error) {
	cp, err := compilePatch(r, p)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Steps:     make([]PlanStep, 0, len(cp.order)),
		Edges:     make([]PlanEdge, 0, len(cp.edges)),
		Polyphony: cp.polyphony,
	}

	for _, idx := range cp.order {
		m := cp.modules[idx]
		plan.Steps = append(plan.Steps, PlanStep{ModuleID: m.id, Kind: m.desc.Kind})
	}

	for _, e := range cp.edges {
		plan.Edges = append(plan.Edges, PlanEdge{
			Source: Endpoint{
				Module: cp.modules[e.src].id,
				Port:   cp.modules[e.src].desc.Outputs[e.srcPort].ID,
			},
			Target: Endpoint{
				Module: cp.modules[e.dst].id,
				Port:   cp.modules[e.dst].desc.Inputs[e.dstPort].ID,
			},
			Amount:  e.amount,
			Delayed: e.delayed,
		})
	}

	return plan, nil
}
