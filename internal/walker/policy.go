// Package walker enumerates the files of a checked-out repository and applies
// the inclusion policy that decides which of them are worth analysing.
package walker

import (
	"path/filepath"
	"strings"
)

// DefaultSkippedExtensions lists binary, media, archive, build-artifact, lock
// and credential extensions. Keys are lower-case and include the dot.
var DefaultSkippedExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp", ".ico", ".svg",
	".mp4", ".mov", ".avi", ".mkv", ".webm",
	".mp3", ".wav", ".ogg", ".aac", ".flac",
	".zip", ".tar", ".gz", ".rar", ".7z", ".jar", ".war",
	".exe", ".dll", ".so", ".o", ".class", ".pyc", ".pyo", ".bin", ".dmg", ".app", ".msi",
	".ttf", ".otf", ".woff", ".woff2", ".eot",
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".ds_store", ".env", ".lock",
}

// DefaultSkippedFilenames lists lock files matched by lower-cased base name.
var DefaultSkippedFilenames = []string{
	"package-lock.json",
	"yarn.lock",
	"gemfile.lock",
	"composer.lock",
	"poetry.lock",
}

// VCSDir is never descended into.
const VCSDir = ".git"

// Policy decides which files are admitted into an ingestion run.
type Policy struct {
	skippedExtensions map[string]bool
	skippedFilenames  map[string]bool
}

// DefaultPolicy returns the policy built from the default tables.
func DefaultPolicy() Policy {
	return NewPolicy(DefaultSkippedExtensions, DefaultSkippedFilenames)
}

// NewPolicy builds a policy from extension and filename tables.
// Matching is case-insensitive.
func NewPolicy(extensions, filenames []string) Policy {
	p := Policy{
		skippedExtensions: make(map[string]bool, len(extensions)),
		skippedFilenames:  make(map[string]bool, len(filenames)),
	}
	for _, ext := range extensions {
		p.skippedExtensions[strings.ToLower(ext)] = true
	}
	for _, name := range filenames {
		p.skippedFilenames[strings.ToLower(name)] = true
	}
	return p
}

// Admit reports whether the file at relPath should be processed.
func (p Policy) Admit(relPath string) bool {
	slashed := filepath.ToSlash(relPath)
	for _, segment := range strings.Split(slashed, "/") {
		if segment == VCSDir {
			return false
		}
	}

	base := strings.ToLower(filepath.Base(relPath))
	if p.skippedFilenames[base] {
		return false
	}
	if p.skippedExtensions[strings.ToLower(filepath.Ext(base))] {
		return false
	}
	return true
}
