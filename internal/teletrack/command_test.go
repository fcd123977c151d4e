package teletrack

import "testing"

func TestParseCommandLineValid(t *testing.T) {
	cases := []struct {
		line string
		want Command
	}{
		{"TR.P 1 1", Command{Op: OpTriggerSet, Args: []int{1, 1}}},
		{"TR.PULSE 2 50", Command{Op: OpTriggerPulse, Args: []int{2, 50}}},
		{"CV 1 8192 0", Command{Op: OpCv, Args: []int{1, 8192, 0}}},
		{"CV.SLEW 1 100", Command{Op: OpCvSlew, Args: []int{1, 100}}},
		{"CV.OFFSET 1 -250", Command{Op: OpCvOffset, Args: []int{1, -250}}},
	}
	for _, c := range cases {
		got, ok := ParseCommandLine(c.line)
		if !ok {
			t.Fatalf("%q: expected ok", c.line)
		}
		if got.Op != c.want.Op || len(got.Args) != len(c.want.Args) {
			t.Fatalf("%q: got %+v, want %+v", c.line, got, c.want)
		}
		for i := range got.Args {
			if got.Args[i] != c.want.Args[i] {
				t.Fatalf("%q: arg %d = %d, want %d", c.line, i, got.Args[i], c.want.Args[i])
			}
		}
	}
}

func TestParseCommandLineInvalid(t *testing.T) {
	cases := []string{
		"",
		"UNKNOWN.OP 1 2",
		"TR.P 1",        // wrong arg count
		"CV 1 notanint 0", // non-numeric arg
	}
	for _, line := range cases {
		if _, ok := ParseCommandLine(line); ok {
			t.Fatalf("%q: expected not ok", line)
		}
	}
}
