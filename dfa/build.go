package dfa

import "sort"

// BuildGraph compiles a Graph from a fixed keyword set, an alphabet of bytes
// that may start a generic (opaque) word, and a terminator string.
//
// Transitions are added in the same order original_source/generator's
// build_graph.cpp uses: the single separator byte, digit runs, generic-word
// runs, each keyword's letters, then the terminator, with a trailing NUL
// byte wired as a terminator shortcut from every state that could otherwise
// emit a token. Keywords that share a prefix (GET / GETFILE) share the
// states for that prefix automatically.
func BuildGraph(words Words, startsGeneric map[byte]struct{}, terminator string) (Graph, error) {
	if len(terminator) == 0 {
		return nil, ErrEmptyTerminator
	}
	for i := 0; i < len(terminator); i++ {
		if IsWordChar(terminator[i]) || terminator[i] == Space {
			return nil, ErrTerminatorNotSeparate
		}
	}
	for b := range startsGeneric {
		if !IsWordChar(b) {
			return nil, ErrStartsGenericNotWordChar
		}
		if IsDigit(b) {
			return nil, ErrGenericStartIsDigit
		}
	}
	for w := range words {
		if len(w) == 0 {
			return nil, ErrEmptyWord
		}
		if IsDigit(w[0]) {
			return nil, ErrWordStartsDigit
		}
		for i := 0; i < len(w); i++ {
			if !IsWordChar(w[i]) {
				return nil, ErrWordNotAllWordChars
			}
		}
		if _, bad := startsGeneric[w[0]]; bad {
			return nil, ErrWordStartsGeneric
		}
	}

	g := make(Graph, NumBaseStates)
	for i := range g {
		g[i] = map[byte]Action{}
	}
	addState := func() int {
		g = append(g, map[byte]Action{})
		return len(g) - 1
	}

	// 1. The separator byte: Start -> InSpace, and InSpace absorbs
	// repeated separators.
	g[StateStart][Space] = Action{ToState: int(StateInSpace)}
	g[StateInSpace][Space] = Action{ToState: int(StateInSpace)}

	// 2. Digit runs: Start or InSpace -> InDigits on any digit, InDigits
	// loops on further digits.
	for _, d := range DigitChars() {
		g[StateStart][d] = Action{ToState: int(StateInDigits)}
		g[StateInSpace][d] = Action{ToState: int(StateInDigits)}
		g[StateInDigits][d] = Action{ToState: int(StateInDigits)}
	}

	// 3. Generic-word start: Start or InSpace -> InGenericWord on any byte
	// in the caller's startsGeneric alphabet.
	for b := range startsGeneric {
		g[StateStart][b] = Action{ToState: int(StateInGenericWord)}
		g[StateInSpace][b] = Action{ToState: int(StateInGenericWord)}
	}

	// 4. Generic-word continuation: InGenericWord loops on any word
	// character, not just the starting alphabet (a path may contain
	// digits and letters after its first byte).
	for _, c := range WordChars() {
		g[StateInGenericWord][c] = Action{ToState: int(StateInGenericWord)}
	}

	// 5. Keyword stems, entered from Start or InSpace, sorted so
	// construction is deterministic regardless of map iteration order.
	sortedWords := make([]string, 0, len(words))
	for w := range words {
		sortedWords = append(sortedWords, w)
	}
	sort.Strings(sortedWords)

	stemState := map[string]int{}
	wordFinal := map[string]int{}
	for _, w := range sortedWords {
		prefix := ""
		cur := int(StateStart)
		for i := 0; i < len(w); i++ {
			c := w[i]
			next := w[:i+1]
			ns, ok := stemState[next]
			if !ok {
				ns = addState()
				stemState[next] = ns
			}
			if _, already := g[cur][c]; !already {
				g[cur][c] = Action{ToState: ns}
			}
			if i == 0 {
				g[StateInSpace][c] = Action{ToState: ns}
			}
			cur = ns
			prefix = next
		}
		wordFinal[w] = stemState[prefix]
	}

	// Separator-after-token transitions: a completed number, generic
	// word, or keyword is followed by a separator exactly like Start is.
	g[StateInDigits][Space] = Action{ToState: int(StateInSpace), ResetRecording: true, Emit: &Emission{Kind: EmitNumber}}
	g[StateInGenericWord][Space] = Action{ToState: int(StateInSpace), ResetRecording: true, Emit: &Emission{Kind: EmitGeneric}}
	for _, w := range sortedWords {
		g[wordFinal[w]][Space] = Action{ToState: int(StateInSpace), ResetRecording: true, Emit: &Emission{Kind: EmitWord, Word: w}}
	}

	// Origins: every state from which the terminator (or its NUL
	// shortcut) may be entered directly, paired with what completing a
	// token from that state emits.
	type origin struct {
		state int
		emit  *Emission
	}
	origins := []origin{
		{int(StateInSpace), nil},
		{int(StateInDigits), &Emission{Kind: EmitNumber}},
		{int(StateInGenericWord), &Emission{Kind: EmitGeneric}},
	}
	for _, w := range sortedWords {
		origins = append(origins, origin{wordFinal[w], &Emission{Kind: EmitWord, Word: w}})
	}

	// 6. Terminator stems: the first byte is reachable from every
	// origin above; subsequent bytes chain through states private to the
	// terminator itself.
	afterN := map[int]int{}
	for i := 0; i < len(terminator); i++ {
		c := terminator[i]
		isLast := i == len(terminator)-1
		var next int
		if isLast {
			next = int(StateDone)
		} else {
			next = addState()
		}
		if i == 0 {
			for _, o := range origins {
				g[o.state][c] = Action{ToState: next, ResetRecording: true, Emit: o.emit}
			}
		} else {
			prev := afterN[i]
			if _, already := g[prev][c]; !already {
				g[prev][c] = Action{ToState: next}
			}
		}
		afterN[i+1] = next
	}

	// 7. NUL byte, from any origin, behaves like the terminator's last
	// byte: it completes whatever token was pending and jumps straight
	// to Done.
	for _, o := range origins {
		g[o.state][0] = Action{ToState: int(StateDone), ResetRecording: true, Emit: o.emit}
	}

	return g, nil
}
