package token

import (
	"errors"
	"strconv"

	"github/sabouaram/getfile/dfa"
)

// ErrInvalidByte is returned by Process when the current byte has no valid
// transition from the tokenizer's current state. Once returned, the
// tokenizer is permanently invalid until Reset is called.
var ErrInvalidByte = errors.New("token: invalid byte for current state")

// Tokenizer walks a compiled dfa.Table one byte at a time, accumulating
// Token values as keyword stems, digit runs, and generic words complete.
// It is not safe for concurrent use; callers that serve many connections
// use one Tokenizer per in-flight connection (server.handleConnection
// creates a new one for each accepted connection).
type Tokenizer struct {
	table     *dfa.Table
	state     int
	recording []byte
	tokens    []Token
	invalid   bool
	done      bool
}

// New returns a Tokenizer reading against table, starting at table's Start
// state.
func New(table *dfa.Table) *Tokenizer {
	return &Tokenizer{table: table, state: int(dfa.StateStart)}
}

// Reset returns the tokenizer to its initial state so it can be reused for
// a new header on the same connection or a pooled one.
func (t *Tokenizer) Reset() {
	t.state = int(dfa.StateStart)
	t.recording = t.recording[:0]
	t.tokens = t.tokens[:0]
	t.invalid = false
	t.done = false
}

// Done reports whether the terminator has been consumed.
func (t *Tokenizer) Done() bool { return t.done }

// Invalid reports whether an unrecognized byte was seen.
func (t *Tokenizer) Invalid() bool { return t.invalid }

// NumTokens reports how many tokens have been emitted so far.
func (t *Tokenizer) NumTokens() int { return len(t.tokens) }

// Token returns the i-th emitted token.
func (t *Tokenizer) Token(i int) Token { return t.tokens[i] }

// Tokens returns every token emitted so far. The returned slice aliases the
// tokenizer's internal storage; callers must not retain it across a Reset.
func (t *Tokenizer) Tokens() []Token { return t.tokens }

// Process feeds data into the tokenizer and returns how many leading bytes
// were consumed. Feeding may be chunked arbitrarily — a keyword or number
// split across two Process calls tokenizes identically to one call with
// the concatenated bytes. Process stops as soon as Done or Invalid becomes
// true, so trailing bytes in data past the terminator (the start of a
// response body, for instance) are left unconsumed for the caller to hand
// to whatever reads the body.
func (t *Tokenizer) Process(data []byte) (int, error) {
	if t.done {
		return 0, nil
	}
	if t.invalid {
		return 0, ErrInvalidByte
	}
	for i, b := range data {
		a := t.table.Lookup(t.state, b)
		if a.ToState == int(dfa.StateInvalid) {
			t.invalid = true
			return i, ErrInvalidByte
		}

		// A byte landing in InGenericWord or InDigits is part of the
		// word/number being accumulated, whether it is the first byte
		// of the run or a continuation of one already in progress.
		if a.ToState == int(dfa.StateInGenericWord) || a.ToState == int(dfa.StateInDigits) {
			t.recording = append(t.recording, b)
		}

		if a.Emit != nil {
			tok := Token{Kind: a.Emit.Kind, Word: a.Emit.Word}
			switch a.Emit.Kind {
			case dfa.EmitGeneric:
				tok.Text = string(t.recording)
			case dfa.EmitNumber:
				n, err := strconv.ParseUint(string(t.recording), 10, 64)
				if err != nil {
					t.invalid = true
					return i + 1, ErrInvalidByte
				}
				tok.Number = n
			}
			t.tokens = append(t.tokens, tok)
		}

		if a.ResetRecording {
			t.recording = t.recording[:0]
		}

		t.state = a.ToState
		if t.state == int(dfa.StateDone) {
			t.done = true
			return i + 1, nil
		}
	}
	return len(data), nil
}
