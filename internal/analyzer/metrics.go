package analyzer

import (
	"path/filepath"
	"strings"
)

// CalculateMetrics computes size counters from content and extracted entities.
func CalculateMetrics(content, language string, parsed ParseResult) Metrics {
	functions := len(parsed.Entities.Functions)

	// Per-class methods only count where extraction fills them in.
	methods := functions
	if language == "python" {
		for _, cls := range parsed.Entities.Classes {
			methods += len(cls.Methods)
		}
	}

	return Metrics{
		LinesOfCode:                CountLines(content),
		NumberOfClasses:            len(parsed.Entities.Classes),
		NumberOfFunctionsOrMethods: methods,
		NumberOfImports:            len(parsed.Imports),
	}
}

// CountLines returns the number of newline-delimited segments in content.
// A final segment without a trailing newline is counted.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// GenerateTags returns the language tag plus every directory on the route
// from the repository root to the file, de-duplicated.
func GenerateTags(path, language string) []string {
	tags := []string{language}
	seen := map[string]bool{language: true}

	parts := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	for _, part := range parts[:len(parts)-1] {
		if part == "" || part == "." || seen[part] {
			continue
		}
		seen[part] = true
		tags = append(tags, part)
	}

	return tags
}
