package dfa

import "fmt"

// EmissionKind distinguishes the three kinds of token a compiled Graph can
// emit on a completed stem, mirroring original_source/generator's
// Token = variant<GenericWord, Number, WordInfo>.
type EmissionKind int

const (
	// EmitWord fires when a fixed keyword's full spelling is recognized
	// (GETFILE, GET, OK, FILE_NOT_FOUND, ERROR, INVALID) and is followed by
	// a separator, the terminator, or NUL.
	EmitWord EmissionKind = iota
	// EmitNumber fires when a run of digits ends.
	EmitNumber
	// EmitGeneric fires when a run of non-keyword word characters ends;
	// this is how path tokens are produced.
	EmitGeneric
)

// Emission describes what a transition produces. Word is only meaningful
// when Kind is EmitWord, and names which registered word matched.
type Emission struct {
	Kind EmissionKind
	Word string
}

func (e Emission) String() string {
	switch e.Kind {
	case EmitWord:
		return fmt.Sprintf("Word(%s)", e.Word)
	case EmitNumber:
		return "Number"
	case EmitGeneric:
		return "Generic"
	default:
		return "?"
	}
}

// Action is a single DFA transition: which state to move to, whether the
// byte-recording buffer should be reset as part of the move, and what to
// emit, if anything.
type Action struct {
	ToState        int
	ResetRecording bool
	Emit           *Emission
}

// invalidAction is the implicit result of any undefined (state, byte) pair.
var invalidAction = Action{ToState: int(StateInvalid)}

// Graph is the uncompressed transition table: one map per state, keyed by
// input byte. Absent entries behave as invalidAction. Graph is produced by
// BuildGraph and consumed by Compress.
type Graph []map[byte]Action

// NumStates reports how many states the graph has, including the base
// states.
func (g Graph) NumStates() int { return len(g) }

// Words is the set of fixed keywords a Graph recognizes, keyed by their
// exact spelling. The keyword's string id is what Emission.Word carries
// when that keyword completes.
type Words map[string]struct{}

// Errors returned by BuildGraph when the caller's keyword set or alphabet
// is malformed.
var (
	// ErrEmptyWord is returned when a zero-length keyword is registered.
	ErrEmptyWord = fmt.Errorf("dfa: word must not be empty")
	// ErrWordNotAllWordChars is returned when a keyword contains a byte
	// outside IsWordChar.
	ErrWordNotAllWordChars = fmt.Errorf("dfa: word contains a non-word character")
	// ErrStartsGenericNotWordChar is returned when a generic-word-start
	// byte is outside IsWordChar.
	ErrStartsGenericNotWordChar = fmt.Errorf("dfa: generic-word-start byte is not a word character")
	// ErrWordStartsGeneric is returned when a fixed keyword begins with
	// a byte also registered as a generic-word-start byte — the two
	// alphabets must be disjoint or the first byte is ambiguous.
	ErrWordStartsGeneric = fmt.Errorf("dfa: word starts with a reserved generic-word-start byte")
	// ErrWordStartsDigit is returned when a keyword begins with a digit,
	// which would collide with the number-accumulation start transition.
	ErrWordStartsDigit = fmt.Errorf("dfa: word starts with a digit")
	// ErrGenericStartIsDigit is returned when a generic-word-start byte
	// is a digit, for the same reason.
	ErrGenericStartIsDigit = fmt.Errorf("dfa: generic-word-start byte is a digit")
	// ErrEmptyTerminator is returned when the terminator string is empty.
	ErrEmptyTerminator = fmt.Errorf("dfa: terminator must not be empty")
	// ErrTerminatorNotSeparate is returned when the terminator contains a
	// word character or a space, which would make it ambiguous with a
	// keyword, path, or number in progress.
	ErrTerminatorNotSeparate = fmt.Errorf("dfa: terminator must contain no word characters and no space")
)
