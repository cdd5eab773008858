package modular

// Builtin module kind names.
const (
	KindVCO    = "VCO"
	KindLFO    = "LFO"
	KindNoise  = "Noise"
	KindADSR   = "ADSR"
	KindVCF    = "VCF"
	KindVCA    = "VCA"
	KindOutput = "Output"
)

const referenceA4 = 440.0

// DefaultRegistry returns a registry populated with the builtin module
// catalog. Descriptors declare the ports and parameter ranges the patch
// editor offers; factories build the per-voice instances.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(Descriptor{
		Kind: KindVCO,
		Inputs: []PortSpec{
			{ID: "fm", Semantic: SemanticCV},
			{ID: "sync", Semantic: SemanticCV},
		},
		Outputs: []PortSpec{
			{ID: "out", Semantic: SemanticAudio},
		},
		Params: []ParamSpec{
			{ID: "freq", Default: referenceA4, Min: 1, Max: 20000},
			{ID: "wave", Default: waveSine, Min: waveSine, Max: waveTriangle},
			{ID: "fmDepth", Default: 1, Min: 0, Max: 10},
			{ID: "track", Default: 1, Min: 0, Max: 1},
		},
	}, newVCO)

	r.MustRegister(Descriptor{
		Kind: KindLFO,
		Outputs: []PortSpec{
			{ID: "out", Semantic: SemanticCV},
		},
		Params: []ParamSpec{
			{ID: "rate", Default: 2, Min: 0.01, Max: 100},
			{ID: "wave", Default: waveSine, Min: waveSine, Max: waveTriangle},
			{ID: "depth", Default: 1, Min: 0, Max: 1},
		},
	}, newLFO)

	r.MustRegister(Descriptor{
		Kind: KindNoise,
		Outputs: []PortSpec{
			{ID: "out", Semantic: SemanticAudio},
		},
		Params: []ParamSpec{
			{ID: "level", Default: 1, Min: 0, Max: 1},
		},
	}, newNoise)

	r.MustRegister(Descriptor{
		Kind: KindADSR,
		Inputs: []PortSpec{
			{ID: "gate", Semantic: SemanticCV},
		},
		Outputs: []PortSpec{
			{ID: "out", Semantic: SemanticCV},
		},
		Params: []ParamSpec{
			{ID: "attack", Default: 0.01, Min: 0.001, Max: 10},
			{ID: "decay", Default: 0.1, Min: 0.001, Max: 10},
			{ID: "sustain", Default: 0.7, Min: 0, Max: 1},
			{ID: "release", Default: 0.2, Min: 0.001, Max: 10},
			{ID: "velSense", Default: 0, Min: 0, Max: 1},
		},
	}, newADSR)

	r.MustRegister(Descriptor{
		Kind: KindVCF,
		Inputs: []PortSpec{
			{ID: "in", Semantic: SemanticAudio},
			{ID: "cutoffMod", Semantic: SemanticCV},
		},
		Outputs: []PortSpec{
			{ID: "out", Semantic: SemanticAudio},
		},
		Params: []ParamSpec{
			{ID: "cutoff", Default: 1000, Min: 20, Max: 20000},
			{ID: "resonance", Default: 0.5, Min: 0, Max: 4},
			{ID: "modDepth", Default: 0, Min: -1, Max: 1},
		},
	}, newVCF)

	r.MustRegister(Descriptor{
		Kind: KindVCA,
		Inputs: []PortSpec{
			{ID: "in", Semantic: SemanticAudio},
			{ID: "gain", Semantic: SemanticCV, Default: 1},
		},
		Outputs: []PortSpec{
			{ID: "out", Semantic: SemanticAudio},
		},
		Params: []ParamSpec{
			{ID: "level", Default: 1, Min: 0, Max: 1},
		},
	}, newVCA)

	r.MustRegister(Descriptor{
		Kind: KindOutput,
		Inputs: []PortSpec{
			{ID: "in", Semantic: SemanticAudio},
		},
		Params: []ParamSpec{
			{ID: "level", Default: 0.8, Min: 0, Max: 1},
		},
	}, newOutput)

	return r
}
