package errors

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		args    []any
		wantMsg string
		wantCat Category
	}{
		{
			name:    "argument error with type",
			code:    "H001",
			args:    []any{"int"},
			wantMsg: "Unsupported parameter of type int",
			wantCat: CategoryArgument,
		},
		{
			name:    "render error",
			code:    "H002",
			args:    []any{"map[string]int"},
			wantMsg: "Cannot render value of type map[string]int",
			wantCat: CategoryRender,
		},
		{
			name:    "message without args",
			code:    "H010",
			wantMsg: "Invalid template document",
			wantCat: CategoryTemplate,
		},
		{
			name:    "unknown error code",
			code:    "H999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.args...)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantCat, err.Category)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "ctx.yaml")
	assert.Equal(t, `file "ctx.yaml" not found`, err.Message)
	assert.Equal(t, CategoryCLI, err.Category)
	assert.Equal(t, `file "ctx.yaml" not found`, err.Error())
}

func TestError_Error(t *testing.T) {
	assert.Equal(t, "H040: Template \"home\" not found", New("H040", "home").Error())

	located := New("H010").WithLocation("index.yaml", 3, 7)
	assert.Equal(t, "index.yaml:3:7: H010: Invalid template document", located.Error())
}

func TestError_WithLocation(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "index.yaml")
	content := "tag: div\nchildren:\n  - text: a\n  - blink: true\n  - text: b\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	err := New("H011", "blink").WithLocation(file, 4, 5)

	require.NotNil(t, err.Location)
	assert.Equal(t, file, err.Location.File)
	assert.Equal(t, 4, err.Location.Line)
	assert.Equal(t, 5, err.Location.Column)
	assert.Equal(t, []string{"children:", "  - text: a", "  - blink: true", "  - text: b"}, err.Context)
}

func TestError_WithLocationMissingFile(t *testing.T) {
	err := New("H010").WithLocation("does-not-exist.yaml", 2, 1)
	assert.Empty(t, err.Context)
	assert.NotNil(t, err.Location)
}

func TestError_Builders(t *testing.T) {
	cause := stderrors.New("boom")
	err := New("H030", "index.html").
		WithDetail("custom detail").
		WithSuggestion("check credentials").
		WithContext([]string{"a"}).
		Wrap(cause)

	assert.Equal(t, "custom detail", err.Detail)
	assert.Equal(t, "check credentials", err.Suggestion)
	assert.Equal(t, []string{"a"}, err.Context)
	assert.Same(t, cause, err.Unwrap())
	assert.True(t, Is(err, cause))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, "H010"))

	coded := New("H010")
	assert.Same(t, coded, FromError(coded, "H020"))

	plain := stderrors.New("plain")
	wrapped := FromError(plain, "H020")
	assert.Equal(t, "H020", wrapped.Code)
	assert.Same(t, plain, wrapped.Wrapped)
}

func TestLocation_String(t *testing.T) {
	var nilLoc *Location
	assert.Equal(t, "", nilLoc.String())
	assert.Equal(t, "a.yaml:10:5", (&Location{File: "a.yaml", Line: 10, Column: 5}).String())
	assert.Equal(t, "a.yaml:10", (&Location{File: "a.yaml", Line: 10}).String())
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	dir := t.TempDir()
	file := filepath.Join(dir, "page.yaml")
	require.NoError(t, os.WriteFile(file, []byte("tag: div\nchildren:\n  - blink: 1\n"), 0o644))

	err := New("H011", "blink").
		WithLocation(file, 3, 5).
		WithSuggestion("Use a known node form").
		Wrap(stderrors.New("cause text"))

	formatted := err.Format()
	assert.Contains(t, formatted, "ERROR H011: Unknown template node \"blink\"")
	assert.Contains(t, formatted, file+":3:5")
	assert.Contains(t, formatted, "→    3 │   - blink: 1")
	assert.Contains(t, formatted, "Hint: Use a known node form")
	assert.Contains(t, formatted, "Cause: cause text")
	assert.NotContains(t, formatted, "\033[")
}

func TestFormatJSON(t *testing.T) {
	err := New("H001", "int").WithSuggestion("pass a string")
	got := err.FormatJSON()
	assert.True(t, strings.HasPrefix(got, `{"code":"H001","category":"argument"`))
	assert.Contains(t, got, `"suggestion":"pass a string"`)

	located := New("H011", "<blink>").WithLocation("a.yaml", 2, 0).Wrap(stderrors.New("boom"))
	got = located.FormatJSON()
	assert.Contains(t, got, `"location":{"file":"a.yaml","line":2}`)
	assert.Contains(t, got, `"cause":"boom"`)
	assert.Contains(t, got, `\u003cblink\u003e`)
}

func TestFprintJSON(t *testing.T) {
	var b strings.Builder
	FprintJSON(&b, New("H040", "home"))
	assert.True(t, strings.HasPrefix(b.String(), `{"code":"H040","category":"template"`))
	assert.True(t, strings.HasSuffix(b.String(), "}\n"))

	b.Reset()
	FprintJSON(&b, stderrors.New("plain failure"))
	assert.Equal(t, `{"message":"plain failure"}`+"\n", b.String())
}

func TestWrapText(t *testing.T) {
	assert.Nil(t, wrapText("", 10))
	assert.Equal(t, []string{"short"}, wrapText("short", 10))
	assert.Equal(t, []string{"one two", "three four"}, wrapText("one two three four", 10))
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b strings.Builder
	Fprint(&b, New("H040", "home"))
	assert.Contains(t, b.String(), "ERROR H040")

	b.Reset()
	Fprint(&b, stderrors.New("plain failure"))
	assert.Contains(t, b.String(), "ERROR: plain failure")
}
