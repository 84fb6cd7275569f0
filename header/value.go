package header

import "fmt"

// Kind discriminates the four shapes a parameter value can take, per the
// header grammar: a bare flag, a decimal integer, a token/quoted string, or
// (when a key repeats within one offer) a list of the above in appearance
// order.
type Kind int

const (
	KindFlag Kind = iota
	KindInt
	KindText
	KindMulti
)

func (k Kind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindInt:
		return "int"
	case KindText:
		return "text"
	case KindMulti:
		return "multi"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single parameter value. Only one of Int/Text/Multi is
// meaningful, selected by Kind; KindFlag carries no payload.
type Value struct {
	Kind  Kind
	Int   int64
	Text  string
	Multi []Value
}

// FlagValue builds the bare-flag value ("; key" with no "=value").
func FlagValue() Value { return Value{Kind: KindFlag} }

// IntValue builds an unquoted decimal-integer value.
func IntValue(n int64) Value { return Value{Kind: KindInt, Int: n} }

// TextValue builds a string value; the serializer decides whether it needs
// quoting.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// MultiValue builds a duplicate-key list value. Elements should themselves
// be Flag/Int/Text, never Multi.
func MultiValue(vs ...Value) Value { return Value{Kind: KindMulti, Multi: vs} }

// Equal reports whether two values are structurally identical.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindFlag:
		return true
	case KindInt:
		return v.Int == o.Int
	case KindText:
		return v.Text == o.Text
	case KindMulti:
		if len(v.Multi) != len(o.Multi) {
			return false
		}
		for i := range v.Multi {
			if !v.Multi[i].Equal(o.Multi[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// appendValue folds a newly-seen occurrence of a key into an existing value,
// producing the duplicate-collapsing behavior the grammar requires: a
// second occurrence of a key turns a scalar into a two-element Multi: a
// third+ occurrence appends to the existing Multi.
func appendValue(existing Value, next Value) Value {
	if existing.Kind == KindMulti {
		existing.Multi = append(existing.Multi, next)
		return existing
	}
	return Value{Kind: KindMulti, Multi: []Value{existing, next}}
}
