// Package analyzer extracts shallow structural facts from source files.
//
// Extraction is line-pattern based and only supported for Python. Every other
// language gets an empty entity set and a raw content snippet instead.
package analyzer

import "encoding/json"

// SnippetLength is the number of characters kept in RawContentSnippet.
const SnippetLength = 2000

// FileAnalysis is the per-file record persisted as the text payload of one point.
type FileAnalysis struct {
	FilePath          string   `json:"file_path"`
	Language          string   `json:"language"`
	Summary           string   `json:"summary"`
	Entities          Entities `json:"entities"`
	Dependencies      []string `json:"dependencies"`
	Imports           []Import `json:"imports"`
	Metrics           Metrics  `json:"metrics"`
	Tags              []string `json:"tags"`
	RawContentSnippet *string  `json:"raw_content_snippet,omitempty"`
	ParsingError      *string  `json:"parsing_error,omitempty"`
}

// Entities holds the declared classes and functions of a file, in source order.
type Entities struct {
	Classes   []Class    `json:"classes"`
	Functions []Function `json:"functions"`
}

// Class is a declared class. Methods is reserved and currently never populated.
type Class struct {
	Name    string     `json:"name"`
	Methods []Function `json:"methods"`
}

// Function is a declared function or method.
type Function struct {
	Name string `json:"name"`
}

// Import is a referenced module name.
type Import struct {
	Name string `json:"name"`
}

// Metrics are basic size counters. CommentDensity and CyclomaticComplexity are
// placeholders and always zero.
type Metrics struct {
	LinesOfCode                int     `json:"lines_of_code"`
	NumberOfClasses            int     `json:"number_of_classes"`
	NumberOfFunctionsOrMethods int     `json:"number_of_functions_or_methods"`
	CommentDensity             float64 `json:"comment_density"`
	CyclomaticComplexity       int     `json:"cyclomatic_complexity"`
	NumberOfImports            int     `json:"number_of_imports"`
}

// Analyze runs language detection, parsing, metrics and tagging for one file.
// The summary is left empty for the caller to fill.
func Analyze(relPath, content string) FileAnalysis {
	language := DetectLanguage(relPath)
	parsed := Parse(content, language, relPath)

	analysis := FileAnalysis{
		FilePath:          relPath,
		Language:          language,
		Entities:          parsed.Entities,
		Dependencies:      parsed.Dependencies,
		Imports:           parsed.Imports,
		Metrics:           CalculateMetrics(content, language, parsed),
		Tags:              GenerateTags(relPath, language),
		RawContentSnippet: parsed.RawContentSnippet,
	}
	if parsed.Error != "" {
		msg := parsed.Error
		analysis.ParsingError = &msg
	}
	return analysis
}

// JSON returns the canonical serialized form of the analysis.
func (a FileAnalysis) JSON() (string, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
