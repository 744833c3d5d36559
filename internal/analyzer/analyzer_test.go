package analyzer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/a.py", "python"},
		{"Main.JAVA", "java"},
		{"web/app.ts", "typescript"},
		{"include/x.h", "c_header"},
		{"config.YML", "yaml"},
		{"README.md", "markdown"},
		{"Makefile", LanguageUnknown},
		{"archive.tar.gz", LanguageUnknown},
		{"", LanguageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.path))
		})
	}
}

func TestDetectLanguage_AllMappedExtensionsCaseInsensitive(t *testing.T) {
	for ext, lang := range languageExtensions {
		assert.Equal(t, lang, DetectLanguage("f"+ext))
		assert.Equal(t, lang, DetectLanguage("f"+strings.ToUpper(ext)))
	}
}

func TestParse_Python(t *testing.T) {
	src := `import os
import json.decoder
from collections import OrderedDict

class Foo(Base):
    def method(self):
        pass

class Bar:
    pass

def top_level(x):
    return x
`
	result := Parse(src, "python", "pkg/mod.py")

	require.Len(t, result.Entities.Classes, 2)
	assert.Equal(t, "Foo", result.Entities.Classes[0].Name)
	assert.Equal(t, "Bar", result.Entities.Classes[1].Name)
	assert.Empty(t, result.Entities.Classes[0].Methods)

	require.Len(t, result.Entities.Functions, 2)
	assert.Equal(t, "method", result.Entities.Functions[0].Name)
	assert.Equal(t, "top_level", result.Entities.Functions[1].Name)

	assert.Equal(t, []Import{{"os"}, {"json.decoder"}, {"collections"}}, result.Imports)
	assert.Nil(t, result.RawContentSnippet)
	assert.Empty(t, result.Error)
	assert.NotNil(t, result.Dependencies)
	assert.Empty(t, result.Dependencies)
}

func TestParse_UnsupportedLanguageReturnsSnippet(t *testing.T) {
	content := strings.Repeat("é", SnippetLength+50)

	result := Parse(content, "markdown", "README.md")

	assert.Empty(t, result.Entities.Classes)
	assert.Empty(t, result.Entities.Functions)
	assert.Empty(t, result.Imports)
	require.NotNil(t, result.RawContentSnippet)
	assert.Equal(t, SnippetLength, len([]rune(*result.RawContentSnippet)))
	assert.Empty(t, result.Error)
}

func TestSnippet_Short(t *testing.T) {
	assert.Equal(t, "abc", Snippet("abc"))
	assert.Equal(t, "", Snippet(""))
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"single unterminated", "a", 1},
		{"single terminated", "a\n", 1},
		{"two unterminated", "a\nb", 2},
		{"two terminated", "a\nb\n", 2},
		{"blank lines", "\n\n", 2},
		{"crlf", "a\r\nb\r\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountLines(tt.content))
		})
	}
}

func TestCalculateMetrics(t *testing.T) {
	src := "class A:\n    def m(self):\n        pass\n\nimport os\n"
	parsed := Parse(src, "python", "a.py")

	metrics := CalculateMetrics(src, "python", parsed)

	assert.Equal(t, 5, metrics.LinesOfCode)
	assert.Equal(t, 1, metrics.NumberOfClasses)
	assert.Equal(t, 1, metrics.NumberOfFunctionsOrMethods)
	assert.Equal(t, 1, metrics.NumberOfImports)
	assert.Zero(t, metrics.CommentDensity)
	assert.Zero(t, metrics.CyclomaticComplexity)
}

func TestGenerateTags(t *testing.T) {
	tests := []struct {
		path string
		lang string
		want []string
	}{
		{"src/a.py", "python", []string{"python", "src"}},
		{"README.md", "markdown", []string{"markdown"}},
		{"./a/b/./c/file.go", "go", []string{"go", "a", "b", "c"}},
		{"src/src/x.py", "python", []string{"python", "src"}},
		{"python/x.py", "python", []string{"python"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			tags := GenerateTags(tt.path, tt.lang)
			assert.ElementsMatch(t, tt.want, tags)
			assert.Contains(t, tags, tt.lang)
		})
	}
}

func TestAnalyze_JSONSchema(t *testing.T) {
	analysis := Analyze("src/a.py", "class A:\n    pass\n\ndef f():\n    pass\n")
	analysis.Summary = "does things"

	raw, err := analysis.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))

	for _, key := range []string{"file_path", "language", "summary", "entities", "dependencies", "imports", "metrics", "tags"} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "raw_content_snippet")
	assert.NotContains(t, decoded, "parsing_error")

	metrics := decoded["metrics"].(map[string]any)
	assert.Equal(t, float64(1), metrics["number_of_classes"])
	assert.Equal(t, float64(1), metrics["number_of_functions_or_methods"])
	assert.Equal(t, float64(0), metrics["comment_density"])
	assert.Equal(t, float64(0), metrics["cyclomatic_complexity"])
}

func TestAnalyze_PlainText(t *testing.T) {
	analysis := Analyze("README.md", "# Title\n\nSome text.\n")

	assert.Equal(t, "markdown", analysis.Language)
	assert.Empty(t, analysis.Entities.Classes)
	assert.Empty(t, analysis.Entities.Functions)
	require.NotNil(t, analysis.RawContentSnippet)
	assert.Equal(t, "# Title\n\nSome text.\n", *analysis.RawContentSnippet)
	assert.Nil(t, analysis.ParsingError)
}

func TestAnalyze_RecoveredParsePanic(t *testing.T) {
	orig := pythonParser
	pythonParser = func(string) ParseResult { panic("regex engine exploded") }
	defer func() { pythonParser = orig }()

	content := strings.Repeat("x", SnippetLength+50)
	analysis := Analyze("pkg/broken.py", content)

	require.NotNil(t, analysis.ParsingError)
	assert.Contains(t, *analysis.ParsingError, "pkg/broken.py")
	assert.Contains(t, *analysis.ParsingError, "regex engine exploded")
	require.NotNil(t, analysis.RawContentSnippet)
	assert.Equal(t, content[:SnippetLength], *analysis.RawContentSnippet)
	assert.Empty(t, analysis.Entities.Classes)
	assert.NotNil(t, analysis.Imports)

	raw, err := analysis.JSON()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Contains(t, decoded["parsing_error"], "regex engine exploded")
	assert.Equal(t, content[:SnippetLength], decoded["raw_content_snippet"])
	assert.Equal(t, []any{}, decoded["imports"])
}
