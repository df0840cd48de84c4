package markup

import "strings"

// Escape converts v to text safe for inclusion in HTML content and
// attribute values. nil becomes the empty string. Escaping is not
// idempotent: escaping twice double-escapes ampersands.
func Escape(v any) string {
	if v == nil {
		return ""
	}
	return escapeString(stringify(v))
}

// escapeString replaces & < > " ' and backtick with entities in a single
// left-to-right pass.
func escapeString(s string) string {
	if !strings.ContainsAny(s, "&<>\"'`") {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s) + len(s)/4)

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#x27;")
		case '`':
			buf.WriteString("&#x60;")
		default:
			buf.WriteByte(c)
		}
	}

	return buf.String()
}
