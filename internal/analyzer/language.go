package analyzer

import (
	"path/filepath"
	"strings"
)

// LanguageUnknown is returned for extensions missing from the language table.
const LanguageUnknown = "unknown"

var languageExtensions = map[string]string{
	".py":    "python",
	".java":  "java",
	".js":    "javascript",
	".ts":    "typescript",
	".go":    "go",
	".rb":    "ruby",
	".php":   "php",
	".cs":    "csharp",
	".c":     "c",
	".cpp":   "cpp",
	".h":     "c_header",
	".hpp":   "cpp_header",
	".rs":    "rust",
	".kt":    "kotlin",
	".scala": "scala",
	".swift": "swift",
	".md":    "markdown",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".html":  "html",
	".css":   "css",
	".txt":   "text",
	".sh":    "shell",
}

// DetectLanguage maps a file extension (case-insensitive) to a language tag.
func DetectLanguage(path string) string {
	if lang, ok := languageExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return LanguageUnknown
}
