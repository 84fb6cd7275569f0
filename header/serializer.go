package header

import (
	"strconv"
	"strings"
)

// SerializeParams renders name and its params as a single offer fragment,
// e.g. `deflate; server_no_context_takeover; client_max_window_bits=15`.
// The caller joins multiple fragments with ", " to build a full header
// value; this function never inserts a leading/trailing comma itself.
func SerializeParams(name string, params Params) string {
	if params.Len() == 0 {
		return name
	}
	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range params.Keys() {
		v, _ := params.Get(k)
		writeKeyValue(&sb, k, v)
	}
	return sb.String()
}

func writeKeyValue(sb *strings.Builder, key string, v Value) {
	if v.Kind == KindMulti {
		for _, elem := range v.Multi {
			writeKeyValue(sb, key, elem)
		}
		return
	}
	sb.WriteString("; ")
	sb.WriteString(key)
	switch v.Kind {
	case KindFlag:
		// bare key, no "=value"
	case KindInt:
		sb.WriteString("=")
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case KindText:
		sb.WriteString("=")
		if isUnquotableToken(v.Text) {
			sb.WriteString(v.Text)
		} else {
			sb.WriteString(quoteToken(v.Text))
		}
	}
}

// isUnquotableToken reports whether s can be emitted bare, i.e. without
// quotes. A purely-decimal string is excluded even though it is a valid
// token, because an unquoted all-digit value round-trips through the
// parser as an integer, not text; quoting preserves the caller's intended
// Kind.
func isUnquotableToken(s string) bool {
	if s == "" {
		return false
	}
	if isAllDigits(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func quoteToken(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '\\' || b == '"' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(b)
	}
	sb.WriteByte('"')
	return sb.String()
}

// JoinOffers assembles multiple already-serialized offer fragments into a
// single header value, using ", " as the caller-layer separator the
// grammar reserves between offers.
func JoinOffers(fragments []string) string {
	return strings.Join(fragments, ", ")
}
