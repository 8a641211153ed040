package radon

// Kind identifies the variant of a Value. The numeric order of kinds is the
// first key of the total order used by Compare.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindBytes
	KindArray
	KindMap
	KindError
)

var kindNames = map[Kind]string{
	KindInvalid: "Invalid",
	KindBoolean: "Boolean",
	KindInteger: "Integer",
	KindFloat:   "Float",
	KindString:  "String",
	KindBytes:   "Bytes",
	KindArray:   "Array",
	KindMap:     "Map",
	KindError:   "Error",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Invalid"
}

// ParseKind resolves a kind by its name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name && k != KindInvalid {
			return k, true
		}
	}
	return KindInvalid, false
}
