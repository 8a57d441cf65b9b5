// Package nn holds the fixed-topology feed-forward brain that drives each agent.
package nn

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
)

// Network dimensions. Topology never changes at runtime, so parameters live in arrays.
const (
	NumInputs  = 4 // position, velocity, distance to pipe, gap offset
	NumHidden  = 8
	NumOutputs = 2 // thrust, idle

	// NumParams is the total number of weights and biases
	NumParams = NumHidden*NumInputs + NumOutputs*NumHidden + NumHidden + NumOutputs
)

// Default mutation half-widths. Fine is the default; coarse is the larger step
// used together with the zero-bias tanh variant.
const (
	FineMutationStep   float32 = 0.005
	CoarseMutationStep float32 = 0.15
)

// Options is the activation, bias and mutation policy shared by a whole population
type Options struct {
	Activation   Activation
	Bias         bool
	MutationStep float32
}

// DefaultOptions returns logistic activation with biases and the fine mutation step
func DefaultOptions() Options {
	return Options{
		Activation:   Sigmoid,
		Bias:         true,
		MutationStep: FineMutationStep,
	}
}

// Brain is a 4-8-2 feed-forward network. It is a value type: assigning a Brain
// copies every parameter.
type Brain struct {
	HiddenWeights [NumHidden * NumInputs]float32  // row i holds the weights of hidden unit i
	OutputWeights [NumOutputs * NumHidden]float32 // row i holds the weights of output unit i
	HiddenBias    [NumHidden]float32
	OutputBias    [NumOutputs]float32

	Options Options
}

// New returns the literal seed brain, a known reasonable flyer used for
// reproducible baselines. Biases are zeroed when opts disables them.
func New(opts Options) Brain {
	b := Brain{
		HiddenWeights: [NumHidden * NumInputs]float32{
			-0.8487895, 0.49137527, 0.39987323, 0.364316,
			0.23451778, -0.103829905, -0.19837642, 0.99858856,
			0.62801474, -0.30081648, -1.1717306, 0.7693195,
			-0.39168888, 0.52182764, -0.13809662, 0.67412513,
			-0.34392887, 0.9412651, -0.13442256, -0.27424228,
			-0.7642416, 0.74272853, 1.330818, 0.05658693,
			-0.49279448, 0.224115, 1.0401345, 1.6181815,
			0.3687311, 0.3473385, 0.35138813, -0.18115227,
		},
		OutputWeights: [NumOutputs * NumHidden]float32{
			0.3215181, 0.71852684, 0.5317758, 0.67969036, -0.28395957, -0.812366, 0.84331447, -0.5995793,
			-0.2996683, -0.9115532, 0.23906352, -0.9690799, 0.7915144, 0.63064504, 0.72257954, 0.19844499,
		},
		HiddenBias: [NumHidden]float32{
			0.936299, -0.35624337, 0.005529036, 0.79126817, 0.5500305, 0.4516027, -0.03398283, -0.91007674,
		},
		OutputBias: [NumOutputs]float32{-1.1206839, 0.11029067},
		Options:    opts,
	}
	if !opts.Bias {
		b.HiddenBias = [NumHidden]float32{}
		b.OutputBias = [NumOutputs]float32{}
	}
	return b
}

// Random returns a brain with every parameter drawn uniformly from [-1, 1]
func Random(rng *rand.Rand, opts Options) Brain {
	b := Brain{Options: opts}
	for i := range b.HiddenWeights {
		b.HiddenWeights[i] = uniform(rng, 1)
	}
	for i := range b.OutputWeights {
		b.OutputWeights[i] = uniform(rng, 1)
	}
	if opts.Bias {
		for i := range b.HiddenBias {
			b.HiddenBias[i] = uniform(rng, 1)
		}
		for i := range b.OutputBias {
			b.OutputBias[i] = uniform(rng, 1)
		}
	}
	return b
}

// uniform draws from [-r, r]
func uniform(rng *rand.Rand, r float32) float32 {
	return (rng.Float32()*2 - 1) * r
}

// Think runs a forward pass. It is pure: no state changes and no randomness.
func (b *Brain) Think(inputs [NumInputs]float32) [NumOutputs]float32 {
	act := b.Options.Activation

	// sums run in float64 so products of large finite inputs cannot reach Inf
	var hidden [NumHidden]float64
	for i := 0; i < NumHidden; i++ {
		sum := float64(b.HiddenBias[i])
		for j := 0; j < NumInputs; j++ {
			sum += float64(inputs[j]) * float64(b.HiddenWeights[i*NumInputs+j])
		}
		hidden[i] = act.Apply(sum)
	}

	var out [NumOutputs]float32
	for i := 0; i < NumOutputs; i++ {
		sum := float64(b.OutputBias[i])
		for j := 0; j < NumHidden; j++ {
			sum += hidden[j] * float64(b.OutputWeights[i*NumHidden+j])
		}
		out[i] = act.Output(act.Apply(sum))
	}
	return out
}

// GenerateNChild returns n independent copies of b, each with every parameter
// shifted by a uniform offset in [-MutationStep, MutationStep]
func (b *Brain) GenerateNChild(n int, rng *rand.Rand) []Brain {
	if n <= 0 {
		return []Brain{}
	}
	step := b.Options.MutationStep
	children := make([]Brain, n)
	for c := range children {
		child := *b
		for i := range child.HiddenWeights {
			child.HiddenWeights[i] += uniform(rng, step)
		}
		for i := range child.OutputWeights {
			child.OutputWeights[i] += uniform(rng, step)
		}
		if child.Options.Bias {
			for i := range child.HiddenBias {
				child.HiddenBias[i] += uniform(rng, step)
			}
			for i := range child.OutputBias {
				child.OutputBias[i] += uniform(rng, step)
			}
		}
		children[c] = child
	}
	return children
}

// Params flattens all parameters: hidden weights, output weights, hidden bias, output bias
func (b *Brain) Params() []float32 {
	params := make([]float32, 0, NumParams)
	params = append(params, b.HiddenWeights[:]...)
	params = append(params, b.OutputWeights[:]...)
	params = append(params, b.HiddenBias[:]...)
	params = append(params, b.OutputBias[:]...)
	return params
}

// Weights is the flattened, JSON-friendly view of a brain
type Weights struct {
	Activation    string    `json:"activation"`
	HiddenWeights []float32 `json:"hidden_weights"`
	OutputWeights []float32 `json:"output_weights"`
	HiddenBias    []float32 `json:"hidden_bias"`
	OutputBias    []float32 `json:"output_bias"`
}

// Weights returns a copy of the parameters for diagnostics
func (b *Brain) Weights() Weights {
	return Weights{
		Activation:    b.Options.Activation.String(),
		HiddenWeights: append([]float32(nil), b.HiddenWeights[:]...),
		OutputWeights: append([]float32(nil), b.OutputWeights[:]...),
		HiddenBias:    append([]float32(nil), b.HiddenBias[:]...),
		OutputBias:    append([]float32(nil), b.OutputBias[:]...),
	}
}

// Dump writes every parameter in matrix layout
func (b *Brain) Dump(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("---- Brain ----\n")
	fmt.Fprintf(&sb, "Activation: %s\n", b.Options.Activation)

	sb.WriteString("Hidden weights:\n")
	writeRows(&sb, b.HiddenWeights[:], NumInputs)
	sb.WriteString("Output weights:\n")
	writeRows(&sb, b.OutputWeights[:], NumHidden)
	sb.WriteString("Hidden bias:\n")
	writeRows(&sb, b.HiddenBias[:], NumHidden)
	sb.WriteString("Output bias:\n")
	writeRows(&sb, b.OutputBias[:], NumOutputs)

	_, err := io.WriteString(w, sb.String())
	return err
}

func (b *Brain) String() string {
	var sb strings.Builder
	_ = b.Dump(&sb)
	return sb.String()
}

func writeRows(sb *strings.Builder, vals []float32, width int) {
	for i, v := range vals {
		if i%width != 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(sb, "%g", v)
		if i%width == width-1 {
			sb.WriteByte('\n')
		}
	}
}
