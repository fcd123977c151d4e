package sequencer

import "testing"

func TestCommitRoutesDetectsConflict(t *testing.T) {
	p := NewProject()

	var routes [ConfigRouteCount]Route
	routes[0] = Route{Target: RouteTargetDivisor, TrackMask: 0b0001}
	routes[1] = Route{Target: RouteTargetDivisor, TrackMask: 0b0001}

	err := p.CommitRoutes(routes)
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	ce, ok := err.(*ErrConflictingRoute)
	if !ok {
		t.Fatalf("expected *ErrConflictingRoute, got %T", err)
	}
	if ce.RouteIndex != 1 {
		t.Fatalf("RouteIndex = %d, want 1", ce.RouteIndex)
	}
}

func TestCommitRoutesAllowsDisjointTracks(t *testing.T) {
	p := NewProject()

	var routes [ConfigRouteCount]Route
	routes[0] = Route{Target: RouteTargetDivisor, TrackMask: 0b0001}
	routes[1] = Route{Target: RouteTargetDivisor, TrackMask: 0b0010}

	if err := p.CommitRoutes(routes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Routes != routes {
		t.Fatal("expected Routes to be committed")
	}
}

func TestRouteValueStaysWithinTargetBounds(t *testing.T) {
	r := Route{
		Source:   SourceCvIn1,
		Target:   RouteTargetOctave,
		BiasPct:  100,
		DepthPct: 100,
	}
	v := r.Value([4]Volts{100, 0, 0, 0}, 0, 0, 0)
	lo, hi := routeTargetBounds(RouteTargetOctave)
	if v < lo || v > hi {
		t.Fatalf("value %v out of bounds [%v, %v]", v, lo, hi)
	}
}

func TestShaperCreasePreservesSign(t *testing.T) {
	if got := ShaperCrease.Apply(-0.5); got > 0 {
		t.Fatalf("expected negative input to stay negative, got %v", got)
	}
	if got := ShaperCrease.Apply(0.5); got < 0 {
		t.Fatalf("expected positive input to stay positive, got %v", got)
	}
}

func TestShaperTriangleFoldStaysInRange(t *testing.T) {
	got := ShaperTriangleFold.Apply(2.5)
	if got < -1 || got > 1 {
		t.Fatalf("folded value %v out of [-1,1]", got)
	}
}

func TestShaperEndpointsArePreserved(t *testing.T) {
	shapers := []Shaper{
		ShaperEnvelope, ShaperFrequencyFollower, ShaperActivity,
		ShaperProgressiveDivider, ShaperVcaNext,
	}
	for _, s := range shapers {
		if got := s.Apply(1); got != 1 {
			t.Fatalf("shaper %d: Apply(1) = %v, want 1", s, got)
		}
		if got := s.Apply(-1); got != -1 {
			t.Fatalf("shaper %d: Apply(-1) = %v, want -1", s, got)
		}
	}
}

func TestShaperActivityAppliesDeadzone(t *testing.T) {
	if got := ShaperActivity.Apply(0.1); got != 0 {
		t.Fatalf("expected small input inside the deadzone to read 0, got %v", got)
	}
	if got := ShaperActivity.Apply(0.5); got != 0.5 {
		t.Fatalf("expected input outside the deadzone to pass through, got %v", got)
	}
}

func TestShaperProgressiveDividerQuantizes(t *testing.T) {
	got := ShaperProgressiveDivider.Apply(0.3)
	if got != 0.25 && got != 0.375 {
		t.Fatalf("expected a quantized 1/8th step, got %v", got)
	}
}
