// Package protocol implements the GETFILE header codec: it serializes
// requests and responses to bytes and parses them back out of a
// token.Tokenizer, per the wire grammar in original_source/gflib and
// original_source/mtgf.
package protocol

import (
	"errors"
	"fmt"
	"strconv"

	"github/sabouaram/getfile/dfa"
	"github/sabouaram/getfile/token"
)

// Keyword spellings recognized on the wire. Case-sensitive.
const (
	KeywordGetfile       = "GETFILE"
	KeywordGet           = "GET"
	KeywordOk            = "OK"
	KeywordFileNotFound  = "FILE_NOT_FOUND"
	KeywordError         = "ERROR"
	KeywordInvalid       = "INVALID"
	Terminator           = "\r\n\r\n"
	genericWordStartByte = '/'
)

// Words returns the fixed keyword set a protocol tokenizer must be built
// with.
func Words() dfa.Words {
	return dfa.Words{
		KeywordGetfile:      {},
		KeywordGet:          {},
		KeywordOk:           {},
		KeywordFileNotFound: {},
		KeywordError:        {},
		KeywordInvalid:      {},
	}
}

// StartsGeneric returns the byte alphabet that may start a generic (path)
// word: GETFILE paths always begin with '/'.
func StartsGeneric() map[byte]struct{} {
	return map[byte]struct{}{genericWordStartByte: {}}
}

// NewTable builds the compressed DFA table used by every protocol
// Tokenizer. Callers typically build it once at process start and share it
// across connections.
func NewTable() *dfa.Table {
	g, err := dfa.BuildGraph(Words(), StartsGeneric(), Terminator)
	if err != nil {
		// Words(), StartsGeneric() and Terminator are fixed and valid by
		// construction; a failure here means this package's own
		// constants regressed.
		panic(fmt.Sprintf("protocol: invalid built-in grammar: %v", err))
	}
	return dfa.Compress(g)
}

// NewTokenizer returns a Tokenizer reading against table, ready to consume
// one header.
func NewTokenizer(table *dfa.Table) *token.Tokenizer {
	return token.New(table)
}

// Status is the in-memory response status, distinct from the on-wire
// keyword text so the server's public statuses can evolve independently of
// the wire grammar.
type Status int

const (
	StatusOk Status = iota
	StatusFileNotFound
	StatusError
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return KeywordOk
	case StatusFileNotFound:
		return KeywordFileNotFound
	case StatusError:
		return KeywordError
	case StatusInvalid:
		return KeywordInvalid
	default:
		return "UNKNOWN"
	}
}

// RequestGet is a parsed "GETFILE GET <path>" request.
type RequestGet struct {
	Path string
}

// Validate reports whether the request's path obeys the wire invariant:
// non-empty, starting with '/', every byte a word character.
func (r RequestGet) Validate() error {
	if len(r.Path) == 0 || r.Path[0] != genericWordStartByte {
		return ErrInvalidPath
	}
	for i := 0; i < len(r.Path); i++ {
		if !dfa.IsWordChar(r.Path[i]) {
			return ErrInvalidPath
		}
	}
	return nil
}

// Response is a parsed GETFILE response header. Size is only meaningful
// when Status == StatusOk.
type Response struct {
	Status Status
	Size   uint64
}

// Errors returned when parsing a malformed header.
var (
	ErrInvalidPath       = errors.New("protocol: invalid request path")
	ErrMalformedRequest  = errors.New("protocol: malformed request header")
	ErrMalformedResponse = errors.New("protocol: malformed response header")
	ErrTokenizerNotDone  = errors.New("protocol: tokenizer has not reached a terminator")
)

// SerializeRequest renders req as "GETFILE GET <path>\r\n\r\n".
func SerializeRequest(req RequestGet) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return []byte(KeywordGetfile + " " + KeywordGet + " " + req.Path + Terminator), nil
}

// SerializeResponse renders resp as "GETFILE OK <size>\r\n\r\n" for
// StatusOk, or "GETFILE <STATUS>\r\n\r\n" for any other status.
func SerializeResponse(resp Response) []byte {
	if resp.Status == StatusOk {
		return []byte(KeywordGetfile + " " + KeywordOk + " " + strconv.FormatUint(resp.Size, 10) + Terminator)
	}
	return []byte(KeywordGetfile + " " + resp.Status.String() + Terminator)
}

// ParseRequest succeeds iff tok is done and its token sequence is exactly
// [Getfile, Get, Path(p)], yielding RequestGet{p}.
func ParseRequest(tok *token.Tokenizer) (RequestGet, error) {
	if !tok.Done() {
		return RequestGet{}, ErrTokenizerNotDone
	}
	if tok.NumTokens() != 3 {
		return RequestGet{}, ErrMalformedRequest
	}
	if !tok.Token(0).IsWord(KeywordGetfile) || !tok.Token(1).IsWord(KeywordGet) {
		return RequestGet{}, ErrMalformedRequest
	}
	path := tok.Token(2)
	if path.Kind != dfa.EmitGeneric {
		return RequestGet{}, ErrMalformedRequest
	}
	req := RequestGet{Path: path.Text}
	if err := req.Validate(); err != nil {
		return RequestGet{}, err
	}
	return req, nil
}

// ParseResponse succeeds iff tok is done and its token sequence is either
// [Getfile, Ok, Size(s)] or [Getfile, X] where X is FileNotFound, Error, or
// Invalid.
func ParseResponse(tok *token.Tokenizer) (Response, error) {
	if !tok.Done() {
		return Response{}, ErrTokenizerNotDone
	}
	if tok.NumTokens() < 2 || !tok.Token(0).IsWord(KeywordGetfile) {
		return Response{}, ErrMalformedResponse
	}
	second := tok.Token(1)
	switch {
	case second.IsWord(KeywordOk):
		if tok.NumTokens() != 3 || tok.Token(2).Kind != dfa.EmitNumber {
			return Response{}, ErrMalformedResponse
		}
		return Response{Status: StatusOk, Size: tok.Token(2).Number}, nil
	case second.IsWord(KeywordFileNotFound):
		return statusOnly(tok, StatusFileNotFound)
	case second.IsWord(KeywordError):
		return statusOnly(tok, StatusError)
	case second.IsWord(KeywordInvalid):
		return statusOnly(tok, StatusInvalid)
	default:
		return Response{}, ErrMalformedResponse
	}
}

func statusOnly(tok *token.Tokenizer, s Status) (Response, error) {
	if tok.NumTokens() != 2 {
		return Response{}, ErrMalformedResponse
	}
	return Response{Status: s}, nil
}
