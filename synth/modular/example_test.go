package modular_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/synth/core"
	"github.com/cwbudde/algo-synth/synth/modular"
)

func ExampleEngine() {
	engine, err := modular.NewEngine(nil,
		core.WithSampleRate(48000),
		core.WithBlockSize(256),
	)
	if err != nil {
		panic(err)
	}

	patch := modular.Patch{
		Modules: []modular.PatchModule{
			{ID: "vco1", Type: modular.KindVCO},
			{ID: "out", Type: modular.KindOutput},
		},
		Connections: []modular.PatchConnection{
			{
				Source: modular.Endpoint{Module: "vco1", Port: "out"},
				Target: modular.Endpoint{Module: "out", Port: "in"},
				Amount: 1,
			},
		},
		Polyphony: 1,
	}

	if err := engine.LoadPatch(patch); err != nil {
		panic(err)
	}

	voice := engine.NoteOn(69, 1)
	block := engine.RenderBlock(256)

	peak := 0.0
	for _, v := range block {
		if v > peak {
			peak = v
		}
	}

	fmt.Printf("voice %d rendered %d frames, sounding: %t\n", voice, len(block), peak > 0.1)
	// Output:
	// voice 1 rendered 256 frames, sounding: true
}

func ExampleRegistry_Catalog() {
	for _, desc := range modular.DefaultRegistry().Catalog() {
		fmt.Println(desc.Kind, len(desc.Inputs), len(desc.Outputs))
	}
	// Output:
	// ADSR 1 1
	// LFO 0 1
	// Noise 0 1
	// Output 1 0
	// VCA 2 1
	// VCF 2 1
	// VCO 2 1
}

func ExampleParsePatch() {
	raw := []byte(`{
		"modules": [
			{"id": "vco1", "type": "VCO"},
			{"id": "vcf1", "type": "VCF", "params": {"cutoff": 800}},
			{"id": "out", "type": "Output"}
		],
		"connections": [
			{"source": {"module": "vco1", "port": "out"},
			 "target": {"module": "vcf1", "port": "in"}, "amount": 1},
			{"source": {"module": "vcf1", "port": "out"},
			 "target": {"module": "out", "port": "in"}, "amount": 1}
		],
		"polyphony": 8
	}`)

	patch, err := modular.ParsePatch(raw)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%d modules, %d connections, polyphony %d\n",
		len(patch.Modules), len(patch.Connections), patch.Polyphony)
	// Output:
	// 3 modules, 2 connections, polyphony 8
}
