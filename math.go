package sequencer

import "math"

// expNeg computes exp(-x), the shared building block for CV slide
// interpolation (§4.8), DiscreteMapTrackEngine slew (§4.4) and
// TeletypeTrackEngine CV slew.
func expNeg(x float32) float32 {
	return float32(math.Exp(-float64(x)))
}
