//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/algo-synth/synth/core"
	"github.com/cwbudde/algo-synth/synth/modular"
)

var (
	engine *modular.Engine
	funcs  []js.Func
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		sr := 48000.0
		block := 512
		if len(args) > 0 {
			sr = args[0].Float()
		}
		if len(args) > 1 {
			block = args[1].Int()
		}
		e, err := modular.NewEngine(nil,
			core.WithSampleRate(sr),
			core.WithBlockSize(block),
		)
		if err != nil {
			return err.Error()
		}
		engine = e
		return js.Null()
	}))

	api.Set("loadPatch", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		if err := engine.LoadPatchJSON([]byte(args[0].String())); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("noteOn", export(func(args []js.Value) any {
		if engine == nil || len(args) < 2 {
			return 0
		}
		id := engine.NoteOn(args[0].Float(), args[1].Float())
		return int(id)
	}))

	api.Set("noteOff", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		engine.NoteOff(uint64(args[0].Int()))
		return js.Null()
	}))

	api.Set("allNotesOff", export(func(_ []js.Value) any {
		if engine == nil {
			return js.Null()
		}
		engine.AllNotesOff()
		return js.Null()
	}))

	api.Set("setParameter", export(func(args []js.Value) any {
		if engine == nil || len(args) < 3 {
			return js.Null()
		}
		if err := engine.SetParameter(args[0].String(), args[1].String(), args[2].Float()); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("render", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		out := engine.RenderBlock(args[0].Int())
		arr := js.Global().Get("Float32Array").New(len(out))
		for i := range out {
			arr.SetIndex(i, float32(out[i]))
		}
		return arr
	}))

	api.Set("catalog", export(func(_ []js.Value) any {
		if engine == nil {
			return js.Global().Get("Array").New(0)
		}
		descs := engine.Catalog()
		arr := js.Global().Get("Array").New(len(descs))
		for i, desc := range descs {
			entry := js.Global().Get("Object").New()
			entry.Set("kind", desc.Kind)
			entry.Set("inputs", portArray(desc.Inputs))
			entry.Set("outputs", portArray(desc.Outputs))
			params := js.Global().Get("Array").New(len(desc.Params))
			for j, p := range desc.Params {
				item := js.Global().Get("Object").New()
				item.Set("id", p.ID)
				item.Set("default", p.Default)
				item.Set("min", p.Min)
				item.Set("max", p.Max)
				params.SetIndex(j, item)
			}
			entry.Set("params", params)
			arr.SetIndex(i, entry)
		}
		return arr
	}))

	js.Global().Set("AlgoSynth", api)
	select {}
}

func portArray(ports []modular.PortSpec) js.Value {
	arr := js.Global().Get("Array").New(len(ports))
	for i, p := range ports {
		arr.SetIndex(i, p.ID)
	}
	return arr
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
