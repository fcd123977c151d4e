package sequencer

import (
	"fmt"
	"math"
)

// RouteSource is where a route reads its modulation signal from.
type RouteSource uint8

const (
	SourceNone RouteSource = iota
	SourceCvIn1
	SourceCvIn2
	SourceCvIn3
	SourceCvIn4
	SourceMidiCC
	SourceMidiNote
	SourceMidiPitchBend
)

// RouteTarget is a routable parameter. Targets carry min/max bounds of
// their own (see routeTargetBounds) and may apply to one or more tracks.
type RouteTarget uint8

const (
	RouteTargetNone RouteTarget = iota
	RouteTargetDivisor
	RouteTargetScale
	RouteTargetRootNote
	RouteTargetOctave
	RouteTargetTranspose
	RouteTargetOffset
	RouteTargetSlideTime
	RouteTargetFirstStep
	RouteTargetLastStep
	RouteTargetRunMode
	RouteTargetClockMult
	RouteTargetDiscreteMapRangeHigh
	RouteTargetDiscreteMapRangeLow
	RouteTargetCvOutputRotate
)

// Shaper reshapes a sampled, clamped source value before it is scaled by
// depth and offset by bias.
type Shaper uint8

const (
	ShaperNone Shaper = iota
	ShaperCrease
	ShaperLocation
	ShaperEnvelope
	ShaperTriangleFold
	ShaperFrequencyFollower
	ShaperActivity
	ShaperProgressiveDivider
	ShaperVcaNext
)

// Apply reshapes a normalized [-1,1] value.
func (s Shaper) Apply(x float32) float32 {
	switch s {
	case ShaperCrease:
		if x < 0 {
			return -x * x
		}
		return x * x
	case ShaperTriangleFold:
		// Fold values that exceed [-1,1] back into range.
		for x > 1 || x < -1 {
			if x > 1 {
				x = 2 - x
			} else {
				x = -2 - x
			}
		}
		return x
	case ShaperLocation:
		return x * x * x
	case ShaperEnvelope:
		// Concave attack-style rise: small values climb faster than they
		// do under ShaperCrease, endpoints preserved.
		return x * (2 - absf32(x))
	case ShaperFrequencyFollower:
		// Expands values near zero, the inverse taper of ShaperCrease,
		// modeling a follower's increased sensitivity near the root pitch.
		if x < 0 {
			return -float32(math.Sqrt(float64(-x)))
		}
		return float32(math.Sqrt(float64(x)))
	case ShaperActivity:
		// Deadzone: ignores small jitter, passes real activity through
		// unshaped.
		if absf32(x) < 0.2 {
			return 0
		}
		return x
	case ShaperProgressiveDivider:
		// Quantizes into 8 discrete levels, echoing a clock divider's
		// progressive subdivision of its input.
		const levels = 8
		return float32(math.Round(float64(x)*levels)) / levels
	case ShaperVcaNext:
		// Ease-out taper: approaches its endpoint quickly, modeling a VCA
		// gain fed forward into the next track.
		if x < 0 {
			return -(1 - (1+x)*(1+x))
		}
		return 1 - (1-x)*(1-x)
	default:
		return x
	}
}

func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// routeTargetBounds returns a target's valid output range.
func routeTargetBounds(t RouteTarget) (lo, hi float32) {
	switch t {
	case RouteTargetDivisor:
		return 1, 768
	case RouteTargetScale:
		return 0, scaleCount - 1
	case RouteTargetRootNote:
		return 0, 11
	case RouteTargetOctave:
		return -8, 8
	case RouteTargetTranspose:
		return -12, 12
	case RouteTargetFirstStep, RouteTargetLastStep:
		return 0, noteSequenceStepCount - 1
	case RouteTargetClockMult:
		return 0.5, 1.5
	case RouteTargetCvOutputRotate:
		return 0, 7
	default:
		return -5, 5
	}
}

// Route maps a source to a target, shaping each target track
// independently via bias/depth/shaper.
type Route struct {
	Source RouteSource
	Target RouteTarget

	// TrackMask selects which of the project's tracks this route
	// applies to (bit i = track i).
	TrackMask uint8

	BiasPct  int8 // -100..100
	DepthPct int8 // -100..100
	Shaper   Shaper
}

// ErrConflictingRoute is returned by CommitRoutes when two routes target
// the same parameter on the same track (§4.9, §7).
type ErrConflictingRoute struct {
	RouteIndex int
}

func (e *ErrConflictingRoute) Error() string {
	return fmt.Sprintf("conflicting route at index %d", e.RouteIndex)
}

// CommitRoutes validates that no two enabled routes target the same
// parameter on the same track, returning the index of the first
// conflicting route if so (§4.9 "Conflicts ... must be detected at
// commit and rejected with a message identifying the conflicting route
// index").
func (p *Project) CommitRoutes(routes [ConfigRouteCount]Route) error {
	seen := make(map[[2]int]bool)
	for i, r := range routes {
		if r.Target == RouteTargetNone {
			continue
		}
		for tr := 0; tr < ConfigTrackCount; tr++ {
			if r.TrackMask&(1<<tr) == 0 {
				continue
			}
			key := [2]int{tr, int(r.Target)}
			if seen[key] {
				return &ErrConflictingRoute{RouteIndex: i}
			}
			seen[key] = true
		}
	}
	p.Routes = routes
	return nil
}

// sampleSource reads and clamps a route's source to [-1,1], staleness up
// to one frame acceptable per §5 (cvInputs is a 1-frame-old snapshot
// supplied by the caller, modeling the ADC driver handoff).
func sampleSource(src RouteSource, cvInputs [4]Volts, midiCC, midiNote, midiPitchBend float32) float32 {
	clamp := func(v float32) float32 {
		if v > 1 {
			return 1
		}
		if v < -1 {
			return -1
		}
		return v
	}
	switch src {
	case SourceCvIn1:
		return clamp(float32(cvInputs[0]) / 5)
	case SourceCvIn2:
		return clamp(float32(cvInputs[1]) / 5)
	case SourceCvIn3:
		return clamp(float32(cvInputs[2]) / 5)
	case SourceCvIn4:
		return clamp(float32(cvInputs[3]) / 5)
	case SourceMidiCC:
		return clamp(midiCC)
	case SourceMidiNote:
		return clamp(midiNote)
	case SourceMidiPitchBend:
		return clamp(midiPitchBend)
	default:
		return 0
	}
}

// Value computes this route's contribution for one track: sample ->
// clamp -> shape -> scale by depth -> offset by bias -> scale into the
// target's range (§4.9 "Applying a route each frame").
func (r *Route) Value(cvInputs [4]Volts, midiCC, midiNote, midiPitchBend float32) float32 {
	x := sampleSource(r.Source, cvInputs, midiCC, midiNote, midiPitchBend)
	x = r.Shaper.Apply(x)
	x = x * (float32(r.DepthPct) / 100)
	x = x + float32(r.BiasPct)/100

	lo, hi := routeTargetBounds(r.Target)
	norm := (x + 1) / 2 // x in roughly [-1,1] -> [0,1]
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	return lo + norm*(hi-lo)
}

// Describe formats a route for a UI list-model-style consumer, grounded
// on RouteListModel.h in original_source/.
func (r *Route) Describe() string {
	if r.Target == RouteTargetNone {
		return "unassigned"
	}
	return fmt.Sprintf("src=%d -> target=%d bias=%d%% depth=%d%%", r.Source, r.Target, r.BiasPct, r.DepthPct)
}
