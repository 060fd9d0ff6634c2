// Package token implements the table-driven tokenizer that walks a
// dfa.Table byte by byte and produces Token values, mirroring the gflib
// tokenizer described in original_source/gflib/gf-student.h (TokenId,
// Token, tok_create/tok_process/tok_reset).
package token

import "github/sabouaram/getfile/dfa"

// Token is one recognized unit from a header: either a fixed keyword, a
// decimal number, or an opaque word (used for request paths).
type Token struct {
	Kind dfa.EmissionKind
	// Word is the keyword spelling when Kind == dfa.EmitWord.
	Word string
	// Text is the accumulated bytes when Kind == dfa.EmitGeneric.
	Text string
	// Number is the parsed value when Kind == dfa.EmitNumber.
	Number uint64
}

// IsWord reports whether the token is the named keyword.
func (t Token) IsWord(name string) bool {
	return t.Kind == dfa.EmitWord && t.Word == name
}
