// Package customid composes per-item identifiers from an ordered template of
// typed elements. Entropy, time and sequence allocation are injected so that
// generation is deterministic under test.
package customid

type Kind string

const (
	KindLiteral      Kind = "literal"
	KindRandomDigits Kind = "random_digits"
	KindRandomBits   Kind = "random_bits"
	KindGUID         Kind = "guid"
	KindDatetime     Kind = "datetime"
	KindSequence     Kind = "sequence"
)

const (
	DefaultSequenceWidth = 3
	DefaultMaxAttempts   = 5

	maxDigitsWidth = 19
	maxBitsWidth   = 63

	datetimeLayout = "20060102"
)

// Element is one slot of a template.
//
// Width depends on Kind: digit count for random_digits, bit count for
// random_bits and minimum zero-padded width for sequence (0 means
// DefaultSequenceWidth). It is ignored by the other kinds.
type Element struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Kind  Kind   `json:"kind" yaml:"kind" toml:"kind"`
	Order int    `json:"order" yaml:"order" toml:"order"`
	Value string `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Width int    `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
}

type Template []Element

func Literal(order int, value string) Element {
	return Element{Kind: KindLiteral, Order: order, Value: value}
}

func RandomDigits(order, width int) Element {
	return Element{Kind: KindRandomDigits, Order: order, Width: width}
}

func RandomBits(order, bits int) Element {
	return Element{Kind: KindRandomBits, Order: order, Width: bits}
}

func GUID(order int) Element {
	return Element{Kind: KindGUID, Order: order}
}

func Datetime(order int) Element {
	return Element{Kind: KindDatetime, Order: order}
}

func Sequence(order int) Element {
	return Element{Kind: KindSequence, Order: order}
}

// HasSequence reports whether the template draws from a sequence counter.
func (t Template) HasSequence() bool {
	for _, el := range t {
		if el.Kind == KindSequence {
			return true
		}
	}
	return false
}

// ParseKind maps both canonical kind names and the legacy type tags used by
// stored inventory formats ("text", "random6", "random20", ...) to an element
// skeleton with Kind and Width filled in.
func ParseKind(name string) (Element, bool) {
	switch name {
	case string(KindLiteral), "text":
		return Element{Kind: KindLiteral}, true
	case string(KindRandomDigits):
		return Element{Kind: KindRandomDigits}, true
	case "random6":
		return Element{Kind: KindRandomDigits, Width: 6}, true
	case "random9":
		return Element{Kind: KindRandomDigits, Width: 9}, true
	case string(KindRandomBits):
		return Element{Kind: KindRandomBits}, true
	case "random20":
		return Element{Kind: KindRandomBits, Width: 20}, true
	case "random32":
		return Element{Kind: KindRandomBits, Width: 32}, true
	case string(KindGUID):
		return Element{Kind: KindGUID}, true
	case string(KindDatetime):
		return Element{Kind: KindDatetime}, true
	case string(KindSequence):
		return Element{Kind: KindSequence}, true
	}
	return Element{}, false
}
