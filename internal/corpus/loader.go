package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tuanthng/imi/internal/fileid"
	"github.com/tuanthng/imi/internal/models"
)

// ReadFile reads a plain-text file into a DocumentInput. The document
// identifier is derived from the cleaned path, so re-reading the same file
// yields the same identifier. Invalid UTF-8 is replaced rather than rejected.
func ReadFile(path string) (*models.DocumentInput, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	return &models.DocumentInput{
		ID:      fileid.FileDocID(path),
		Title:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Content: text,
	}, nil
}

// LoadDirectories walks the given directories and reads every file whose
// extension matches (empty extensions = all files). Files are returned in
// walk order, which is deterministic per directory.
func LoadDirectories(dirs []string, extensions []string) ([]*models.DocumentInput, error) {
	var docs []*models.DocumentInput
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !matchExtension(path, extensions) {
				return nil
			}
			doc, readErr := ReadFile(path)
			if readErr != nil {
				return readErr
			}
			docs = append(docs, doc)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("load corpus dir %q: %w", dir, err)
		}
	}
	return docs, nil
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
