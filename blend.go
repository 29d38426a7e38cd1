package drape

import "github.com/hajimehoshi/ebiten/v2"

// BlendFactor weights the source or destination color in a blend equation.
type BlendFactor uint8

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSourceColor
	BlendFactorOneMinusSourceColor
	BlendFactorSourceAlpha
	BlendFactorOneMinusSourceAlpha
	BlendFactorDestinationColor
	BlendFactorOneMinusDestinationColor
	BlendFactorDestinationAlpha
	BlendFactorOneMinusDestinationAlpha
	BlendFactorSourceAlphaSaturate // min(As, 1-Ad) for RGB, one for alpha
)

// BlendEquation combines the weighted source and destination terms.
type BlendEquation uint8

const (
	BlendEquationAdd             BlendEquation = iota // src*fs + dst*fd
	BlendEquationSubtract                             // src*fs - dst*fd
	BlendEquationReverseSubtract                      // dst*fd - src*fs
)

// BlendMode describes how a layer is composited onto what is already drawn.
// It is a plain value so a layer's compositing intent can be inspected and
// tested without a rendering backend. Colors are premultiplied.
type BlendMode struct {
	Name        string
	Equation    BlendEquation
	Source      BlendFactor
	Destination BlendFactor
}

var (
	// BlendNormal is premultiplied source-over.
	BlendNormal = BlendMode{
		Name:        "normal",
		Equation:    BlendEquationAdd,
		Source:      BlendFactorOne,
		Destination: BlendFactorOneMinusSourceAlpha,
	}

	// BlendAdditiveSaturating brightens highlights where the canvas is still
	// uncovered and scales covered pixels by the inverse light color, so the
	// pattern colors underneath are never washed out.
	BlendAdditiveSaturating = BlendMode{
		Name:        "additive-saturating",
		Equation:    BlendEquationAdd,
		Source:      BlendFactorSourceAlphaSaturate,
		Destination: BlendFactorOneMinusSourceColor,
	}

	// BlendReverseSubtractiveMask carves overlay shading (folds, creases)
	// out of the destination, weighted by the mask's alpha.
	BlendReverseSubtractiveMask = BlendMode{
		Name:        "reverse-subtractive-mask",
		Equation:    BlendEquationReverseSubtract,
		Source:      BlendFactorOneMinusDestinationAlpha,
		Destination: BlendFactorSourceAlpha,
	}
)

// String returns the blend mode's name.
func (b BlendMode) String() string {
	if b.Name == "" {
		return "custom"
	}
	return b.Name
}

// Blend computes the composited premultiplied RGBA of src over dst. It is the
// reference the GPU path must agree with; each channel is clamped to [0, 1].
func (b BlendMode) Blend(src, dst [4]float64) [4]float64 {
	var out [4]float64
	for i := 0; i < 4; i++ {
		alpha := i == 3
		fs := b.Source.weight(src, dst, i, alpha)
		fd := b.Destination.weight(src, dst, i, alpha)
		var v float64
		switch b.Equation {
		case BlendEquationSubtract:
			v = src[i]*fs - dst[i]*fd
		case BlendEquationReverseSubtract:
			v = dst[i]*fd - src[i]*fs
		default:
			v = src[i]*fs + dst[i]*fd
		}
		out[i] = clamp01(v)
	}
	return out
}

// weight evaluates the factor for channel i.
func (f BlendFactor) weight(src, dst [4]float64, i int, alpha bool) float64 {
	switch f {
	case BlendFactorZero:
		return 0
	case BlendFactorOne:
		return 1
	case BlendFactorSourceColor:
		return src[i]
	case BlendFactorOneMinusSourceColor:
		return 1 - src[i]
	case BlendFactorSourceAlpha:
		return src[3]
	case BlendFactorOneMinusSourceAlpha:
		return 1 - src[3]
	case BlendFactorDestinationColor:
		return dst[i]
	case BlendFactorOneMinusDestinationColor:
		return 1 - dst[i]
	case BlendFactorDestinationAlpha:
		return dst[3]
	case BlendFactorOneMinusDestinationAlpha:
		return 1 - dst[3]
	case BlendFactorSourceAlphaSaturate:
		if alpha {
			return 1
		}
		return min(src[3], 1-dst[3])
	}
	return 0
}

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
// RGB and alpha share the equation. Ebiten has no alpha-saturate factor, so
// it maps to one-minus-destination-alpha for RGB, which is exact for opaque
// sources such as light maps, and to one for alpha.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	op := b.Equation.ebiten()
	return ebiten.Blend{
		BlendFactorSourceRGB:        b.Source.ebiten(false),
		BlendFactorSourceAlpha:      b.Source.ebiten(true),
		BlendFactorDestinationRGB:   b.Destination.ebiten(false),
		BlendFactorDestinationAlpha: b.Destination.ebiten(true),
		BlendOperationRGB:           op,
		BlendOperationAlpha:         op,
	}
}

func (f BlendFactor) ebiten(alpha bool) ebiten.BlendFactor {
	switch f {
	case BlendFactorZero:
		return ebiten.BlendFactorZero
	case BlendFactorOne:
		return ebiten.BlendFactorOne
	case BlendFactorSourceColor:
		return ebiten.BlendFactorSourceColor
	case BlendFactorOneMinusSourceColor:
		return ebiten.BlendFactorOneMinusSourceColor
	case BlendFactorSourceAlpha:
		return ebiten.BlendFactorSourceAlpha
	case BlendFactorOneMinusSourceAlpha:
		return ebiten.BlendFactorOneMinusSourceAlpha
	case BlendFactorDestinationColor:
		return ebiten.BlendFactorDestinationColor
	case BlendFactorOneMinusDestinationColor:
		return ebiten.BlendFactorOneMinusDestinationColor
	case BlendFactorDestinationAlpha:
		return ebiten.BlendFactorDestinationAlpha
	case BlendFactorOneMinusDestinationAlpha:
		return ebiten.BlendFactorOneMinusDestinationAlpha
	case BlendFactorSourceAlphaSaturate:
		if alpha {
			return ebiten.BlendFactorOne
		}
		return ebiten.BlendFactorOneMinusDestinationAlpha
	}
	return ebiten.BlendFactorZero
}

func (e BlendEquation) ebiten() ebiten.BlendOperation {
	switch e {
	case BlendEquationSubtract:
		return ebiten.BlendOperationSubtract
	case BlendEquationReverseSubtract:
		return ebiten.BlendOperationReverseSubtract
	default:
		return ebiten.BlendOperationAdd
	}
}
