package dfa

import (
	"fmt"
	"strings"
)

// Compress folds g's 128-wide columns into character classes and returns
// the resulting Table. Two bytes land in the same class exactly when every
// state treats them identically (same target state, same reset behavior,
// same emission) — the column-hashing technique from
// original_source/generator/compress_graph.cpp, minus the SHA-256 digest:
// a plain string signature is enough since the alphabet is only 128 wide and
// this runs once, offline.
func Compress(g Graph) *Table {
	numStates := len(g)

	signature := func(b byte) string {
		var sb strings.Builder
		for s := 0; s < numStates; s++ {
			a, ok := g[s][b]
			if !ok {
				a = invalidAction
			}
			kind := -1
			word := ""
			if a.Emit != nil {
				kind = int(a.Emit.Kind)
				word = a.Emit.Word
			}
			fmt.Fprintf(&sb, "%d,%t,%d,%s;", a.ToState, a.ResetRecording, kind, word)
		}
		return sb.String()
	}

	invalidSig := signature(0x01) // byte 0x01 never appears in any GETFILE transition
	classOf := make(map[string]uint8, numStates)
	classOf[invalidSig] = 0
	nextClass := uint8(1)

	var classOfByte [NumCharacters]uint8
	repByte := map[uint8]byte{0: 0x01}

	for b := 0; b < NumCharacters; b++ {
		sig := signature(byte(b))
		id, ok := classOf[sig]
		if !ok {
			id = nextClass
			nextClass++
			classOf[sig] = id
			repByte[id] = byte(b)
		}
		classOfByte[b] = id
	}

	rows := make([][]Action, numStates)
	for s := 0; s < numStates; s++ {
		row := make([]Action, nextClass)
		for id := uint8(0); id < nextClass; id++ {
			b := repByte[id]
			a, ok := g[s][b]
			if !ok {
				a = invalidAction
			}
			row[id] = a
		}
		rows[s] = row
	}

	return &Table{ClassOf: classOfByte, NumClasses: int(nextClass), Rows: rows}
}
