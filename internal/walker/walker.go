package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"
)

var (
	ErrNotText  = errors.New("file is not valid UTF-8 text")
	ErrTooLarge = errors.New("file exceeds size cap")
)

// Entry is one admitted file.
type Entry struct {
	AbsPath string
	RelPath string // relative to the walk root, OS separators
}

// Walk yields every file under root admitted by policy, depth-first in
// lexical order. The VCS metadata directory is pruned without being entered.
// Symlinks and other non-regular files are skipped and logged at debug level.
// Errors for unreadable directories are yielded and the walk continues; a
// consumer that stops ranging ends the walk.
func Walk(root string, policy Policy) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(Entry{AbsPath: path}, fmt.Errorf("walk %s: %w", path, err)) {
					return filepath.SkipAll
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if d.Name() == VCSDir && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				slog.Debug("Skipping non-regular file", "path", path, "type", d.Type().String())
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			if !policy.Admit(rel) {
				return nil
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			if !yield(Entry{AbsPath: abs, RelPath: rel}, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// ReadText reads a whole file and checks it decodes as UTF-8.
// maxBytes <= 0 disables the size cap.
func ReadText(path string, maxBytes int64) (string, error) {
	if maxBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if info.Size() > maxBytes {
			return "", fmt.Errorf("%w: %d bytes > %d", ErrTooLarge, info.Size(), maxBytes)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrNotText
	}
	return string(data), nil
}
