package modular

import "math"

// PortSemantic distinguishes audio-rate from control-rate ports.
type PortSemantic int

const (
	// SemanticAudio marks an audio-rate port.
	SemanticAudio PortSemantic = iota
	// SemanticCV marks a control-rate port.
	SemanticCV
)

// String returns the semantic name used in the patch format and catalog output.
func (s PortSemantic) String() string {
	if s == SemanticCV {
		return "cv"
	}
	return "audio"
}

// PortSpec declares one input or output port of a module kind.
// Default is the bias an unconnected input port reads.
type PortSpec struct {
	ID       string
	Semantic PortSemantic
	Default  float64
}

// ParamSpec declares one parameter of a module kind with its valid range.
type ParamSpec struct {
	ID      string
	Default float64
	Min     float64
	Max     float64
}

// Clamp returns value forced into the spec's [Min, Max] range.
// Non-finite values fall back to the default.
func (p ParamSpec) Clamp(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return p.Default
	}
	if value < p.Min {
		return p.Min
	}
	if value > p.Max {
		return p.Max
	}
	return value
}

// Descriptor is the immutable declaration of a module kind: its ports and
// parameters. Descriptors are registry-owned and never mutated after startup.
type Descriptor struct {
	Kind    string
	Inputs  []PortSpec
	Outputs []PortSpec
	Params  []ParamSpec
}

// InputIndex returns the index of the named input port, or -1.
func (d Descriptor) InputIndex(id string) int {
	for i, p := range d.Inputs {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// OutputIndex returns the index of the named output port, or -1.
func (d Descriptor) OutputIndex(id string) int {
	for i, p := range d.Outputs {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ParamIndex returns the index of the named parameter, or -1.
func (d Descriptor) ParamIndex(id string) int {
	for i, p := range d.Params {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// DefaultParams returns a fresh slice of the descriptor's parameter defaults.
func (d Descriptor) DefaultParams() []float64 {
	out := make([]float64, len(d.Params))
	for i, p := range d.Params {
		out[i] = p.Default
	}
	return out
}
