package operators

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
)

const (
	OpStringAsBoolean      script.Opcode = 0x70
	OpStringAsBytes        script.Opcode = 0x71
	OpStringAsFloat        script.Opcode = 0x72
	OpStringAsInteger      script.Opcode = 0x73
	OpStringLength         script.Opcode = 0x74
	OpStringMatch          script.Opcode = 0x75
	OpStringParseJSONArray script.Opcode = 0x76
	OpStringParseJSONMap   script.Opcode = 0x77
	OpStringParseXMLMap    script.Opcode = 0x78
	OpStringToLowerCase    script.Opcode = 0x79
	OpStringToUpperCase    script.Opcode = 0x7A
	OpStringParseJSON      script.Opcode = 0x7B
	OpStringTrim           script.Opcode = 0x7C
	OpStringReplace        script.Opcode = 0x7D
	OpStringSlice          script.Opcode = 0x7E
	OpStringSplit          script.Opcode = 0x7F
)

func stringOperators() []*Operator {
	only := []radon.Kind{radon.KindString}
	str := func(code script.Opcode, name string, fn func(s string) radon.Value) *Operator {
		return &Operator{
			Code: code, Name: name, Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return fn(string(in.(radon.String)))
			},
		}
	}

	return []*Operator{
		str(OpStringAsBoolean, "StringAsBoolean", func(s string) radon.Value {
			switch strings.TrimSpace(s) {
			case "true":
				return radon.Boolean(true)
			case "false":
				return radon.Boolean(false)
			}
			return radon.NewError(radon.ParseError, "invalid boolean %q", s)
		}),
		str(OpStringAsBytes, "StringAsBytes", func(s string) radon.Value {
			return radon.Bytes(s)
		}),
		str(OpStringAsFloat, "StringAsFloat", func(s string) radon.Value {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return radon.NewError(radon.ParseError, "invalid float %q", s)
			}
			return radon.NewFloat(f)
		}),
		str(OpStringAsInteger, "StringAsInteger", func(s string) radon.Value {
			return radon.ParseInteger(strings.TrimSpace(s))
		}),
		str(OpStringLength, "StringLength", func(s string) radon.Value {
			return radon.NewInteger(int64(utf8.RuneCountInString(s)))
		}),
		{
			// StringMatch maps the input through a literal table, falling back
			// to the default when the input is not a key.
			Code: OpStringMatch, Name: "StringMatch", Input: only,
			Args: []script.ArgKind{script.ArgMap, script.ArgAny}, Required: 2,
			Fn: func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
				table, _ := literal(args, 0)
				def, _ := literal(args, 1)
				m, ok := table.(radon.Map)
				if !ok {
					return radon.NewError(radon.WrongArguments, "StringMatch needs a map")
				}
				if v, ok := m.Get(string(in.(radon.String))); ok {
					return v
				}
				return def
			},
		},
		str(OpStringParseJSONArray, "StringParseJSONArray", func(s string) radon.Value {
			return expectKind(ParseJSON(s), radon.KindArray)
		}),
		str(OpStringParseJSONMap, "StringParseJSONMap", func(s string) radon.Value {
			return expectKind(ParseJSON(s), radon.KindMap)
		}),
		str(OpStringParseXMLMap, "StringParseXMLMap", ParseXML),
		str(OpStringToLowerCase, "StringToLowerCase", func(s string) radon.Value {
			return radon.String(cases.Lower(language.Und).String(s))
		}),
		str(OpStringToUpperCase, "StringToUpperCase", func(s string) radon.Value {
			return radon.String(cases.Upper(language.Und).String(s))
		}),
		str(OpStringParseJSON, "StringParseJSON", ParseJSON),
		str(OpStringTrim, "StringTrim", func(s string) radon.Value {
			return radon.String(strings.TrimSpace(s))
		}),
		{
			Code: OpStringReplace, Name: "StringReplace", Input: only,
			Args: []script.ArgKind{script.ArgString, script.ArgString}, Required: 2,
			Fn: func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
				old, repl := stringArg(args, 0, ""), stringArg(args, 1, "")
				if old == "" {
					return radon.NewError(radon.WrongArguments, "StringReplace needs a non-empty pattern")
				}
				return radon.String(strings.ReplaceAll(string(in.(radon.String)), old, repl))
			},
		},
		{
			// StringSlice indexes Unicode scalar values, not bytes.
			Code: OpStringSlice, Name: "StringSlice", Input: only,
			Args: []script.ArgKind{script.ArgInteger, script.ArgInteger}, Required: 1,
			Fn: func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
				runes := []rune(string(in.(radon.String)))
				start, end, errv := sliceBounds(args, len(runes))
				if errv != nil {
					return errv
				}
				return radon.String(runes[start:end])
			},
		},
		{
			// StringSplit splits on the separator, or on runs of white space
			// when none is given.
			Code: OpStringSplit, Name: "StringSplit", Input: only,
			Args: []script.ArgKind{script.ArgString},
			Fn: func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
				s := string(in.(radon.String))
				var parts []string
				if sep := stringArg(args, 0, ""); sep != "" {
					parts = strings.Split(s, sep)
				} else {
					parts = strings.Fields(s)
				}
				out := make([]radon.Value, len(parts))
				for i, p := range parts {
					out[i] = radon.String(p)
				}
				return radon.NewArray(out...)
			},
		},
	}
}

func expectKind(v radon.Value, want radon.Kind) radon.Value {
	if radon.IsError(v) || v.Kind() == want {
		return v
	}
	return radon.NewError(radon.WrongType, "expected JSON %s, found %s", strings.ToLower(want.String()), strings.ToLower(v.Kind().String()))
}
