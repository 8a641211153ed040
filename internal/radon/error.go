package radon

import "fmt"

// ErrorCode classifies an Error value. Codes are part of the canonical
// encoding and must never be renumbered.
type ErrorCode uint8

const (
	Unknown         ErrorCode = 0x00
	MalformedScript ErrorCode = 0x01

	TooManySources ErrorCode = 0x10
	ScriptTooLong  ErrorCode = 0x11

	UnsupportedOperator ErrorCode = 0x20
	WrongArguments      ErrorCode = 0x21

	MalformedSource  ErrorCode = 0x30
	Timeout          ErrorCode = 0x31
	HTTPStatus       ErrorCode = 0x32
	TransportFailure ErrorCode = 0x33

	Underflow      ErrorCode = 0x40
	Overflow       ErrorCode = 0x41
	DivisionByZero ErrorCode = 0x42
	NotANumber     ErrorCode = 0x43

	WrongType        ErrorCode = 0x50
	IndexOutOfBounds ErrorCode = 0x51
	KeyNotFound      ErrorCode = 0x52
	ParseError       ErrorCode = 0x53

	InsufficientConsensus ErrorCode = 0x60
	SourcesDisagree       ErrorCode = 0x61
	InsufficientSources   ErrorCode = 0x62
	EmptyArray            ErrorCode = 0x63
	ModeTie               ErrorCode = 0x64
	NoReveals             ErrorCode = 0x65
	NotHomogeneous        ErrorCode = 0x66
)

var errorCodeNames = map[ErrorCode]string{
	Unknown:               "Unknown",
	MalformedScript:       "MalformedScript",
	TooManySources:        "TooManySources",
	ScriptTooLong:         "ScriptTooLong",
	UnsupportedOperator:   "UnsupportedOperator",
	WrongArguments:        "WrongArguments",
	MalformedSource:       "MalformedSource",
	Timeout:               "Timeout",
	HTTPStatus:            "HTTPStatus",
	TransportFailure:      "TransportFailure",
	Underflow:             "Underflow",
	Overflow:              "Overflow",
	DivisionByZero:        "DivisionByZero",
	NotANumber:            "NotANumber",
	WrongType:             "WrongType",
	IndexOutOfBounds:      "IndexOutOfBounds",
	KeyNotFound:           "KeyNotFound",
	ParseError:            "ParseError",
	InsufficientConsensus: "InsufficientConsensus",
	SourcesDisagree:       "SourcesDisagree",
	InsufficientSources:   "InsufficientSources",
	EmptyArray:            "EmptyArray",
	ModeTie:               "ModeTie",
	NoReveals:             "NoReveals",
	NotHomogeneous:        "NotHomogeneous",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(0x%02x)", uint8(c))
}

// Known reports whether the code is part of the taxonomy.
func (c ErrorCode) Known() bool {
	_, ok := errorCodeNames[c]
	return ok
}

// Error is a first-class error value. It flows through scripts like any other
// value and also satisfies the error interface so construction-time failures
// can be returned directly.
type Error struct {
	Code    ErrorCode
	Message string
}

// NewError builds an Error with a formatted message. Messages must be
// deterministic: never include timings, addresses or OS error text.
func NewError(code ErrorCode, format string, args ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (Error) Kind() Kind { return KindError }
func (Error) isValue()   {}

func (e Error) String() string {
	return fmt.Sprintf("Error(%s, %q)", e.Code, e.Message)
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsError returns v as an Error when it is one.
func AsError(v Value) (Error, bool) {
	e, ok := v.(Error)
	return e, ok
}

// IsError reports whether v is an Error.
func IsError(v Value) bool {
	_, ok := v.(Error)
	return ok
}
