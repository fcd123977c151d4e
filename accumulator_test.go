package sequencer

import "testing"

func TestAccumulatorWrapOrder(t *testing.T) {
	a := NewAccumulator()
	a.Enabled = true
	a.Direction = AccumUp
	a.Order = AccumWrap
	a.MinValue = 0
	a.MaxValue = 3
	a.StepValue = 1
	a.CurrentValue = 3

	a.Tick()
	if a.CurrentValue != 0 {
		t.Fatalf("expected wrap to 0, got %d", a.CurrentValue)
	}
}

func TestAccumulatorPendulumReflects(t *testing.T) {
	a := NewAccumulator()
	a.Enabled = true
	a.Direction = AccumUp
	a.Order = AccumPendulum
	a.MinValue = 0
	a.MaxValue = 2
	a.StepValue = 1
	a.CurrentValue = 2

	a.Tick()
	if a.CurrentValue < 0 || a.CurrentValue > 2 {
		t.Fatalf("pendulum value out of bounds: %d", a.CurrentValue)
	}
}

func TestAccumulatorHoldClamps(t *testing.T) {
	a := NewAccumulator()
	a.Enabled = true
	a.Direction = AccumUp
	a.Order = AccumHold
	a.MinValue = 0
	a.MaxValue = 5
	a.StepValue = 10
	a.CurrentValue = 0

	a.Tick()
	if a.CurrentValue != 5 {
		t.Fatalf("expected hold clamp to max 5, got %d", a.CurrentValue)
	}
}

func TestAccumulatorDisabledNoOp(t *testing.T) {
	a := NewAccumulator()
	a.Enabled = false
	a.CurrentValue = 7
	a.Tick()
	if a.CurrentValue != 7 {
		t.Fatalf("expected disabled accumulator to not mutate, got %d", a.CurrentValue)
	}
}

func TestAccumulatorStepOverrideDecoding(t *testing.T) {
	cases := []struct {
		encoded        uint8
		use, overrides bool
		value          int8
	}{
		{0, false, false, 0},
		{1, true, false, 0},
		{2, true, true, -7},
		{8, true, true, -1},
		{9, true, true, 1},
		{15, true, true, 7},
	}
	for _, c := range cases {
		use, overrides, value := decodeAccumulatorStepValue(c.encoded)
		if use != c.use || overrides != c.overrides || value != c.value {
			t.Fatalf("decode(%d) = (%v,%v,%d), want (%v,%v,%d)", c.encoded, use, overrides, value, c.use, c.overrides, c.value)
		}
	}
}

func TestAccumulatorRecordRoundTrip(t *testing.T) {
	a := NewAccumulator()
	a.Enabled = true
	a.Direction = AccumDown
	a.Order = AccumRandom
	a.Polarity = AccumBipolar
	a.MinValue = -10
	a.MaxValue = 10
	a.StepValue = 3
	a.CurrentValue = -2

	rec := a.ToRecord()

	b := NewAccumulator()
	b.LoadRecord(rec)

	if b.Enabled != a.Enabled || b.Direction != a.Direction || b.Order != a.Order ||
		b.Polarity != a.Polarity || b.MinValue != a.MinValue || b.MaxValue != a.MaxValue ||
		b.StepValue != a.StepValue || b.CurrentValue != a.CurrentValue {
		t.Fatalf("round trip mismatch: got %+v, want fields from %+v", b, a)
	}
}
