package analyzer

import (
	"fmt"
	"regexp"
)

var (
	pyClassPattern      = regexp.MustCompile(`(?m)^\s*class\s+(\w+)(?:\(|:)`)
	pyFuncPattern       = regexp.MustCompile(`(?m)^\s*def\s+(\w+)\s*\(`)
	pyImportPattern     = regexp.MustCompile(`(?m)^\s*import\s+([\w.]+)`)
	pyFromImportPattern = regexp.MustCompile(`(?m)^\s*from\s+([\w.]+)\s+import`)
)

// ParseResult is the output of structural extraction for one file.
type ParseResult struct {
	Entities          Entities
	Imports           []Import
	Dependencies      []string
	RawContentSnippet *string
	Error             string
}

// Parse extracts entities and imports. Only Python is supported; other
// languages get a raw content snippet. Extraction never fails: a panic inside
// the matchers is recovered into Error with the snippet as fallback.
func Parse(content, language, path string) (result ParseResult) {
	if language != "python" {
		return fallback(content, "")
	}

	defer func() {
		if r := recover(); r != nil {
			result = fallback(content, fmt.Sprintf("parse %s: %v", path, r))
		}
	}()

	return pythonParser(content)
}

// pythonParser is the extraction step guarded by Parse's recover.
var pythonParser = parsePython

func parsePython(content string) ParseResult {
	result := emptyResult()

	for _, m := range pyClassPattern.FindAllStringSubmatch(content, -1) {
		result.Entities.Classes = append(result.Entities.Classes, Class{Name: m[1], Methods: []Function{}})
	}
	for _, m := range pyFuncPattern.FindAllStringSubmatch(content, -1) {
		result.Entities.Functions = append(result.Entities.Functions, Function{Name: m[1]})
	}
	for _, m := range pyImportPattern.FindAllStringSubmatch(content, -1) {
		result.Imports = append(result.Imports, Import{Name: m[1]})
	}
	for _, m := range pyFromImportPattern.FindAllStringSubmatch(content, -1) {
		result.Imports = append(result.Imports, Import{Name: m[1]})
	}

	return result
}

func fallback(content, errMsg string) ParseResult {
	result := emptyResult()
	snippet := Snippet(content)
	result.RawContentSnippet = &snippet
	result.Error = errMsg
	return result
}

// emptyResult keeps every list non-nil so the JSON form always carries arrays.
func emptyResult() ParseResult {
	return ParseResult{
		Entities: Entities{
			Classes:   []Class{},
			Functions: []Function{},
		},
		Imports:      []Import{},
		Dependencies: []string{},
	}
}

// Snippet returns the first SnippetLength characters of content.
func Snippet(content string) string {
	runes := 0
	for i := range content {
		if runes == SnippetLength {
			return content[:i]
		}
		runes++
	}
	return content
}
