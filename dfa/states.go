package dfa

// BaseState enumerates the states every compiled Graph starts with, before
// any keyword- or generic-word-specific states are appended. Mirrors the
// fixed state layout of original_source/generator/BaseStates.{hpp,cpp}.
type BaseState int

const (
	// StateStart is state 0: no bytes of the current token consumed yet.
	StateStart BaseState = iota
	// StateInvalid is a sink state: once entered, no further transition
	// leaves it except a Reset. Reached on an unrecognized byte.
	StateInvalid
	// StateDone is reached when the terminator sequence completes.
	StateDone
	// StateInSpace is entered after consuming the single separator byte;
	// it emits nothing.
	StateInSpace
	// StateInDigits is entered while accumulating a decimal number.
	StateInDigits
	// StateInGenericWord is entered while accumulating a path/opaque word
	// (anything starting with a byte outside the fixed keyword alphabet).
	StateInGenericWord

	// NumBaseStates is the number of states present before BuildGraph
	// appends any keyword-stem or terminator-stem states.
	NumBaseStates
)

func (s BaseState) String() string {
	switch s {
	case StateStart:
		return "Start"
	case StateInvalid:
		return "Invalid"
	case StateDone:
		return "Done"
	case StateInSpace:
		return "InSpace"
	case StateInDigits:
		return "InDigits"
	case StateInGenericWord:
		return "InGenericWord"
	default:
		return "Unknown"
	}
}
