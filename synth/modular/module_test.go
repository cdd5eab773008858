package modular

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/internal/testutil"
)

const testSampleRate = 48000.0

func testModuleCtx(blockSize int) Context {
	return Context{SampleRate: testSampleRate, BlockSize: blockSize}
}

func blocks(ports, frames int) [][]float64 {
	out := make([][]float64, ports)
	for i := range out {
		out[i] = make([]float64, frames)
	}
	return out
}

func TestVCOSine(t *testing.T) {
	t.Parallel()

	const frames = 4096

	mod, err := newVCO(testModuleCtx(frames))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// freq 440, sine, fmDepth 1, tracking on.
	if err := mod.Configure(testModuleCtx(frames), []float64{440, waveSine, 1, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mod.(NoteReceiver).NoteOn(440, 1)

	in := blocks(2, frames)
	out := blocks(1, frames)
	mod.Process(in, out)

	testutil.RequireFinite(t, out[0])

	freq, err := testutil.PeakFrequency(out[0], testSampleRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(freq-440) > 15 {
		t.Errorf("peak at %.1f Hz, want ~440", freq)
	}
}

func TestVCOTracksNotePitch(t *testing.T) {
	t.Parallel()

	const frames = 4096

	mod, _ := newVCO(testModuleCtx(frames))
	_ = mod.Configure(testModuleCtx(frames), []float64{440, waveSine, 1, 1})

	mod.(NoteReceiver).NoteOn(880, 1)

	in := blocks(2, frames)
	out := blocks(1, frames)
	mod.Process(in, out)

	freq, err := testutil.PeakFrequency(out[0], testSampleRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(freq-880) > 15 {
		t.Errorf("peak at %.1f Hz, want ~880", freq)
	}
}

func TestVCOFreeRunsWithTrackingOff(t *testing.T) {
	t.Parallel()

	const frames = 4096

	mod, _ := newVCO(testModuleCtx(frames))
	_ = mod.Configure(testModuleCtx(frames), []float64{220, waveSine, 1, 0})

	// Note pitch must be ignored.
	mod.(NoteReceiver).NoteOn(1760, 1)

	in := blocks(2, frames)
	out := blocks(1, frames)
	mod.Process(in, out)

	freq, err := testutil.PeakFrequency(out[0], testSampleRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(freq-220) > 15 {
		t.Errorf("peak at %.1f Hz, want ~220", freq)
	}
}

func TestVCOWaveShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		wave float64
	}{
		{"sine", waveSine},
		{"saw", waveSaw},
		{"square", waveSquare},
		{"triangle", waveTriangle},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			const frames = 512

			mod, _ := newVCO(testModuleCtx(frames))
			_ = mod.Configure(testModuleCtx(frames), []float64{440, tc.wave, 1, 1})
			mod.(NoteReceiver).NoteOn(440, 1)

			in := blocks(2, frames)
			out := blocks(1, frames)
			mod.Process(in, out)

			testutil.RequireFinite(t, out[0])

			if peak := testutil.MaxAbs(out[0]); peak > 1.0001 || peak < 0.5 {
				t.Errorf("peak %v out of expected range", peak)
			}
		})
	}
}

func TestLFODepthAndReset(t *testing.T) {
	t.Parallel()

	const frames = 48000

	mod, _ := newLFO(testModuleCtx(frames))
	// 2 Hz triangle at half depth.
	_ = mod.Configure(testModuleCtx(frames), []float64{2, waveTriangle, 0.5})

	out := blocks(1, frames)
	mod.Process(nil, out)

	first := append([]float64(nil), out[0]...)

	if peak := testutil.MaxAbs(first); math.Abs(peak-0.5) > 0.01 {
		t.Errorf("depth 0.5 should bound output at 0.5, peak %v", peak)
	}

	mod.Reset()
	mod.Process(nil, out)
	testutil.RequireSliceEqual(t, out[0], first)
}

func TestNoiseDeterministicPerSeed(t *testing.T) {
	t.Parallel()

	const frames = 1024

	build := func(seed int64) []float64 {
		mod, _ := newNoise(testModuleCtx(frames))
		_ = mod.Configure(testModuleCtx(frames), []float64{1})
		mod.(Seeder).SetSeed(seed)

		out := blocks(1, frames)
		mod.Process(nil, out)

		return out[0]
	}

	testutil.RequireSliceEqual(t, build(7), build(7))

	a, b := build(1), build(2)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}

	if same {
		t.Error("different seeds produced identical noise")
	}
}

func TestNoiseResetRestartsSequence(t *testing.T) {
	t.Parallel()

	const frames = 256

	mod, _ := newNoise(testModuleCtx(frames))
	_ = mod.Configure(testModuleCtx(frames), []float64{1})
	mod.(Seeder).SetSeed(42)

	out := blocks(1, frames)
	mod.Process(nil, out)
	first := append([]float64(nil), out[0]...)

	mod.Reset()
	mod.Process(nil, out)
	testutil.RequireSliceEqual(t, out[0], first)
}

func TestADSRStageWalk(t *testing.T) {
	t.Parallel()

	const frames = 48000

	mod, _ := newADSR(testModuleCtx(frames))
	// attack 10ms, decay 20ms, sustain 0.5, release 50ms, no velocity sense.
	_ = mod.Configure(testModuleCtx(frames), []float64{0.01, 0.02, 0.5, 0.05, 0})

	env := mod.(*adsrModule)
	env.NoteOn(440, 1)

	in := blocks(1, frames)
	out := blocks(1, frames)
	mod.Process(in, out)

	attackEnd := int(0.01 * testSampleRate)
	decayEnd := attackEnd + int(0.02*testSampleRate)

	if got := out[0][attackEnd+2]; math.Abs(got-1) > 0.05 {
		t.Errorf("attack peak = %v, want ~1", got)
	}

	if got := out[0][decayEnd+10]; math.Abs(got-0.5) > 0.05 {
		t.Errorf("sustain level = %v, want ~0.5", got)
	}

	if !env.TailActive() {
		t.Error("gated envelope must report an active tail")
	}

	env.NoteOff()
	mod.Process(in, out)

	if env.TailActive() {
		t.Error("envelope should be idle after release completes")
	}

	if got := out[0][frames-1]; got != 0 {
		t.Errorf("released envelope should end at 0, got %v", got)
	}
}

func TestADSRVelocitySense(t *testing.T) {
	t.Parallel()

	const frames = 4800

	mod, _ := newADSR(testModuleCtx(frames))
	_ = mod.Configure(testModuleCtx(frames), []float64{0.001, 0.01, 1, 0.05, 1})

	mod.(NoteReceiver).NoteOn(440, 0.5)

	in := blocks(1, frames)
	out := blocks(1, frames)
	mod.Process(in, out)

	if peak := testutil.MaxAbs(out[0]); math.Abs(peak-0.5) > 0.02 {
		t.Errorf("full velocity sense at velocity 0.5 should peak ~0.5, got %v", peak)
	}
}

func TestADSRGateCV(t *testing.T) {
	t.Parallel()

	const frames = 4800

	mod, _ := newADSR(testModuleCtx(frames))
	_ = mod.Configure(testModuleCtx(frames), []float64{0.001, 0.01, 0.8, 0.01, 0})

	in := blocks(1, frames)
	out := blocks(1, frames)

	// Gate high through the CV input only, no note gate.
	for i := 0; i < frames/2; i++ {
		in[0][i] = 1
	}

	mod.Process(in, out)

	if peak := testutil.MaxAbs(out[0][:frames/2]); peak < 0.5 {
		t.Errorf("CV gate should trigger the envelope, peak %v", peak)
	}

	if got := out[0][frames-1]; got != 0 {
		t.Errorf("envelope should release after CV gate drops, got %v", got)
	}
}

func TestVCFBoundedUnderNoise(t *testing.T) {
	t.Parallel()

	const frames = 48000

	filt, _ := newVCF(testModuleCtx(frames))
	// High resonance, modulated cutoff.
	_ = filt.Configure(testModuleCtx(frames), []float64{2000, 3.5, 0.5})

	noise, _ := newNoise(testModuleCtx(frames))
	_ = noise.Configure(testModuleCtx(frames), []float64{1})

	audio := blocks(1, frames)
	noise.Process(nil, audio)

	in := [][]float64{audio[0], make([]float64, frames)}
	for i := range in[1] {
		in[1][i] = math.Sin(float64(i) / 1000)
	}

	out := blocks(1, frames)
	filt.Process(in, out)

	testutil.RequireFinite(t, out[0])

	if peak := testutil.MaxAbs(out[0]); peak > 4 {
		t.Errorf("filter output diverging, peak %v", peak)
	}
}

func TestVCFPassesLowRejectsHigh(t *testing.T) {
	t.Parallel()

	const frames = 8192

	run := func(freq float64) float64 {
		filt, _ := newVCF(testModuleCtx(frames))
		_ = filt.Configure(testModuleCtx(frames), []float64{500, 0, 0})

		in := blocks(2, frames)
		step := 2 * math.Pi * freq / testSampleRate
		for i := range in[0] {
			in[0][i] = math.Sin(step * float64(i))
		}

		out := blocks(1, frames)
		filt.Process(in, out)

		return testutil.MaxAbs(out[0][frames/2:])
	}

	low := run(100)
	high := run(8000)

	if low < 0.5 {
		t.Errorf("100 Hz should pass a 500 Hz lowpass, peak %v", low)
	}

	if high > low/4 {
		t.Errorf("8 kHz should be strongly attenuated: low %v, high %v", low, high)
	}
}

func TestVCAGainClampsNegative(t *testing.T) {
	t.Parallel()

	const frames = 16

	amp, _ := newVCA(testModuleCtx(frames))
	_ = amp.Configure(testModuleCtx(frames), []float64{1})

	in := blocks(2, frames)
	for i := range in[0] {
		in[0][i] = 1
		in[1][i] = -0.5
	}

	out := blocks(1, frames)
	amp.Process(in, out)

	for i, v := range out[0] {
		if v != 0 {
			t.Fatalf("negative summed gain must clamp to silence, sample %d = %v", i, v)
		}
	}
}

func TestVCAAppliesGainAndLevel(t *testing.T) {
	t.Parallel()

	const frames = 16

	amp, _ := newVCA(testModuleCtx(frames))
	_ = amp.Configure(testModuleCtx(frames), []float64{0.5})

	in := blocks(2, frames)
	for i := range in[0] {
		in[0][i] = 0.8
		in[1][i] = 0.5
	}

	out := blocks(1, frames)
	amp.Process(in, out)

	want := make([]float64, frames)
	for i := range want {
		want[i] = 0.8 * 0.5 * 0.5
	}

	testutil.RequireSliceNearlyEqual(t, out[0], want, 1e-12)
}

func TestOutputScalesAndReports(t *testing.T) {
	t.Parallel()

	const frames = 32

	sink, _ := newOutput(testModuleCtx(frames))
	_ = sink.Configure(testModuleCtx(frames), []float64{0.25})

	in := blocks(1, frames)
	for i := range in[0] {
		in[0][i] = 1
	}

	sink.Process(in, nil)

	rendered := sink.(Terminal).Rendered()
	want := make([]float64, frames)
	for i := range want {
		want[i] = 0.25
	}

	testutil.RequireSliceNearlyEqual(t, rendered, want, 1e-12)
}
