package markup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "plain", in: "hello", want: "hello"},
		{name: "all entities", in: "&<>\"'`", want: "&amp;&lt;&gt;&quot;&#x27;&#x60;"},
		{name: "script", in: "<script>alert('x')</script>", want: "&lt;script&gt;alert(&#x27;x&#x27;)&lt;/script&gt;"},
		{name: "already escaped", in: "&amp;", want: "&amp;amp;"},
		{name: "unicode", in: "日本<語>", want: "日本&lt;語&gt;"},
		{name: "number", in: 12, want: "12"},
		{name: "bool", in: false, want: "false"},
		{name: "time", in: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), want: "2000-01-01T00:00:00.000Z"},
		{name: "stringer fallback", in: []int{1}, want: "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestEscapeSinglePass(t *testing.T) {
	// replacement text is never rescanned
	assert.Equal(t, "&amp;lt;", Escape("&lt;"))
	assert.Equal(t, Escape("a")+Escape("&"), Escape("a&"))
}

func TestEscapeKeepsInvalidUTF8(t *testing.T) {
	in := "a\xffb<"
	assert.Equal(t, "a\xffb&lt;", escapeString(in))
}
