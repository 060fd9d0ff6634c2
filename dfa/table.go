package dfa

// Table is a compressed Graph: bytes that behave identically in every state
// are folded into one character class, so a state row only needs to be as
// wide as the number of distinct classes instead of the full 128-byte
// alphabet. Mirrors original_source/generator/CompressedGraph.{hpp,cpp}.
type Table struct {
	// ClassOf maps a byte to its class id. Class 0 is always the class
	// of bytes that have no transition from any state.
	ClassOf [NumCharacters]uint8
	// NumClasses is the number of distinct classes, including class 0.
	NumClasses int
	// Rows holds one row per state; each row has NumClasses entries.
	Rows [][]Action
}

// NumStates reports how many states this table has.
func (t *Table) NumStates() int { return len(t.Rows) }

// Lookup returns the Action for being in state and reading byte c. Bytes
// outside the 0-127 range and states outside the table are always invalid.
func (t *Table) Lookup(state int, c byte) Action {
	if state < 0 || state >= len(t.Rows) || int(c) >= NumCharacters {
		return invalidAction
	}
	class := t.ClassOf[c]
	row := t.Rows[state]
	if int(class) >= len(row) {
		return invalidAction
	}
	return row[class]
}
