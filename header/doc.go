// Package header implements the header grammar shared by extension offers
// and responses: a comma-separated list of `name[; key[=value]]*`
// fragments.
//
// Whitespace around ',' and ';' is insignificant. Names and keys are HTTP
// tokens (RFC 7230 tchar). An unquoted value is decoded as an integer when
// it is purely decimal digits, otherwise as text. A value may be quoted
// with `"…"`, in which case `\x` is the literal byte x and an unescaped
// `"` ends the string. A key that repeats within one offer collapses into
// a list value in the order it appeared; a key that appears once stays a
// scalar.
//
// ParseHeader and SerializeParams are exact inverses for any Params a
// Session may legitimately produce: parsing the serialized form of a
// (name, params) pair yields an equivalent single-entry Offers.
package header
