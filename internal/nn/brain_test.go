package nn

import (
	"bytes"
	"math"
	"math/rand"
	"strings"
	"testing"
)

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestSeedBrainGoldenOutput(t *testing.T) {
	b := New(DefaultOptions())

	out := b.Think([NumInputs]float32{0, 0, 500, 0})

	// Hidden units saturate at this distance, so the outputs only depend on the
	// output layer: sigmoid(-1.1206839 + w0+w5+w6+w7) and the same for row 1.
	golden := [NumOutputs]float32{0.202976067, 0.796131946}
	for i := range golden {
		if abs32(out[i]-golden[i]) > 1e-5 {
			t.Errorf("output %d: got %.9f, want %.9f", i, out[i], golden[i])
		}
	}
	if !(out[0] < out[1]) {
		t.Errorf("seed brain should not thrust far from a centered gap, got %v", out)
	}
}

func TestSeedBrainWithoutBias(t *testing.T) {
	b := New(Options{Activation: Tanh, Bias: false, MutationStep: CoarseMutationStep})

	for i, v := range b.HiddenBias {
		if v != 0 {
			t.Errorf("hidden bias %d: got %v, want 0", i, v)
		}
	}
	for i, v := range b.OutputBias {
		if v != 0 {
			t.Errorf("output bias %d: got %v, want 0", i, v)
		}
	}

	out := b.Think([NumInputs]float32{0, 0, 500, 0})
	golden := [NumOutputs]float32{-0.955646840, 0.970571431}
	for i := range golden {
		if abs32(out[i]-golden[i]) > 1e-5 {
			t.Errorf("output %d: got %.9f, want %.9f", i, out[i], golden[i])
		}
	}
}

func TestThinkIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := Random(rng, DefaultOptions())
	before := b

	inputs := [NumInputs]float32{12.5, -300, 840, -42}
	first := b.Think(inputs)
	second := b.Think(inputs)

	if first != second {
		t.Fatalf("think is not deterministic: %v vs %v", first, second)
	}
	if b != before {
		t.Fatal("think mutated the brain")
	}
}

func TestRandomRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 200; n++ {
		b := Random(rng, DefaultOptions())
		for i, p := range b.Params() {
			if p < -1 || p > 1 {
				t.Fatalf("brain %d param %d out of [-1,1]: %v", n, i, p)
			}
		}
	}
}

func TestRandomWithoutBiasLeavesBiasZero(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := Random(rng, Options{Activation: Tanh, Bias: false, MutationStep: CoarseMutationStep})
	if b.HiddenBias != ([NumHidden]float32{}) || b.OutputBias != ([NumOutputs]float32{}) {
		t.Fatalf("expected zero biases, got %v %v", b.HiddenBias, b.OutputBias)
	}

	for _, child := range b.GenerateNChild(10, rng) {
		if child.HiddenBias != ([NumHidden]float32{}) || child.OutputBias != ([NumOutputs]float32{}) {
			t.Fatal("mutation touched biases with bias disabled")
		}
	}
}

func TestTopologyInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	brains := []Brain{New(DefaultOptions()), Random(rng, DefaultOptions())}
	seed := New(DefaultOptions())
	brains = append(brains, seed.GenerateNChild(5, rng)...)

	for i, b := range brains {
		if len(b.HiddenWeights) != 32 || len(b.OutputWeights) != 16 ||
			len(b.HiddenBias) != 8 || len(b.OutputBias) != 2 {
			t.Errorf("brain %d has wrong topology", i)
		}
		if got := len(b.Params()); got != NumParams {
			t.Errorf("brain %d: got %d params, want %d", i, got, NumParams)
		}
	}
}

func TestGenerateNChildCount(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	b := Random(rng, DefaultOptions())

	for _, n := range []int{0, 1, 100} {
		if got := len(b.GenerateNChild(n, rng)); got != n {
			t.Errorf("GenerateNChild(%d) returned %d children", n, got)
		}
	}
	if got := len(b.GenerateNChild(-3, rng)); got != 0 {
		t.Errorf("negative n returned %d children", got)
	}
}

func TestMutationLocality(t *testing.T) {
	steps := []float32{FineMutationStep, CoarseMutationStep}
	for _, step := range steps {
		rng := rand.New(rand.NewSource(11))
		opts := DefaultOptions()
		opts.MutationStep = step
		parent := Random(rng, opts)
		pp := parent.Params()

		for c, child := range parent.GenerateNChild(50, rng) {
			cp := child.Params()
			for i := range pp {
				// allow one float32 rounding of the sum
				if d := abs32(cp[i] - pp[i]); d > step+1e-6 {
					t.Fatalf("step %v child %d param %d moved %v", step, c, i, d)
				}
			}
		}
	}
}

func TestChildrenAreIndependentCopies(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	parent := Random(rng, DefaultOptions())
	snapshot := parent

	children := parent.GenerateNChild(2, rng)
	children[0].HiddenWeights[0] = 42

	if parent != snapshot {
		t.Fatal("reproduction modified the parent")
	}
	if children[1].HiddenWeights[0] == 42 {
		t.Fatal("children share parameter storage")
	}
	if children[0] == children[1] {
		t.Fatal("children should be independently mutated")
	}
}

func TestActivationBoundedness(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for _, act := range []Activation{Sigmoid, Tanh} {
		opts := DefaultOptions()
		opts.Activation = act
		lo, hi := act.Range()

		for n := 0; n < 100; n++ {
			b := Random(rng, opts)
			inputs := [NumInputs]float32{
				float32(rng.NormFloat64() * 1000),
				float32(rng.NormFloat64() * 1000),
				float32(rng.NormFloat64() * 1000),
				float32(rng.NormFloat64() * 1000),
			}
			for i, o := range b.Think(inputs) {
				if math.IsNaN(float64(o)) || o <= lo || o >= hi {
					t.Fatalf("%s output %d out of range: %v", act, i, o)
				}
			}
		}
	}
}

func TestThinkExtremeInputs(t *testing.T) {
	extremes := [][NumInputs]float32{
		{0, 0, math.MaxFloat32, -math.MaxFloat32},
		{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		{-math.MaxFloat32, math.MaxFloat32, -math.MaxFloat32, math.MaxFloat32},
		{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}

	for _, opts := range []Options{
		DefaultOptions(),
		{Activation: Tanh, Bias: false, MutationStep: CoarseMutationStep},
	} {
		b := New(opts)
		lo, hi := opts.Activation.Range()
		for _, in := range extremes {
			for i, o := range b.Think(in) {
				if math.IsNaN(float64(o)) || o <= lo || o >= hi {
					t.Errorf("%s input %v: output %d = %v, want inside (%v, %v)", opts.Activation, in, i, o, lo, hi)
				}
			}
		}
	}
}

func TestOutputStaysInsideOpenRange(t *testing.T) {
	for _, act := range []Activation{Sigmoid, Tanh} {
		lo, hi := act.Range()
		if got := act.Output(act.Apply(1e6)); got >= hi {
			t.Errorf("%s saturated high to %v", act, got)
		}
		if got := act.Output(act.Apply(-1e6)); got <= lo {
			t.Errorf("%s saturated low to %v", act, got)
		}
		if got := act.Output(act.Apply(0)); got != (lo+hi)/2 {
			t.Errorf("%s midpoint: got %v", act, got)
		}
	}
}

func TestParseActivation(t *testing.T) {
	tests := []struct {
		name    string
		want    Activation
		wantErr bool
	}{
		{"sigmoid", Sigmoid, false},
		{"Logistic", Sigmoid, false},
		{"tanh", Tanh, false},
		{"relu", Sigmoid, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseActivation(tc.name)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDump(t *testing.T) {
	b := New(DefaultOptions())

	var buf bytes.Buffer
	if err := b.Dump(&buf); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	out := buf.String()

	for _, section := range []string{"Hidden weights:", "Output weights:", "Hidden bias:", "Output bias:"} {
		if !strings.Contains(out, section) {
			t.Errorf("dump missing %q", section)
		}
	}
	// 1 header + 1 activation + 4 section titles + 8 + 2 + 1 + 1 rows
	if got := strings.Count(out, "\n"); got != 18 {
		t.Errorf("expected 18 lines, got %d:\n%s", got, out)
	}
	if b.String() != out {
		t.Error("String should match Dump")
	}
}
