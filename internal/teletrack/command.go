package teletrack

import (
	"strconv"
	"strings"
)

// Op names this codec's supported subset of the scripting language's
// commands (§4.10/§4.11 "one parsed-and-validated command per line").
// Reimplementing the full teletype operator language (hundreds of ops,
// expressions, variables) is out of scope here; these five drive the
// output-side C-ABI shims (tele_tr, tele_tr_pulse, tele_cv, tele_cv_slew,
// tele_cv_off). No command reaches the read-side or metro shims.
type Op string

const (
	OpTriggerSet   Op = "TR.P"
	OpTriggerPulse Op = "TR.PULSE"
	OpCv           Op = "CV"
	OpCvSlew       Op = "CV.SLEW"
	OpCvOffset     Op = "CV.OFFSET"
)

// Command is one parsed, validated script line: an operator and its
// integer arguments (tele_command_t, §4.11).
type Command struct {
	Op   Op
	Args []int
}

// ParseCommandLine parses and validates one script line into a
// Command. ok is false for anything unrecognized or malformed,
// matching §7's "offending line is skipped, playback continues".
func ParseCommandLine(line string) (cmd Command, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false
	}

	op := Op(fields[0])
	want := argCountFor(op)
	if want < 0 {
		return Command{}, false
	}
	if len(fields)-1 != want {
		return Command{}, false
	}

	args := make([]int, want)
	for i, f := range fields[1:] {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Command{}, false
		}
		args[i] = v
	}
	return Command{Op: op, Args: args}, true
}

func argCountFor(op Op) int {
	switch op {
	case OpTriggerSet:
		return 2 // channel, state
	case OpTriggerPulse:
		return 2 // channel, ms
	case OpCv:
		return 3 // channel, raw14bit, slew(0/1)
	case OpCvSlew:
		return 2 // channel, ms
	case OpCvOffset:
		return 2 // channel, millivolts
	default:
		return -1
	}
}
