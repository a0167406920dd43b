package corpus

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperjump/ruiji/internal/models"
)

// Loader produces document inputs from files on disk.
type Loader struct {
	extractor *Extractor
}

// NewLoader returns a Loader with the default extractor.
func NewLoader() *Loader {
	return &Loader{extractor: NewExtractor()}
}

// LoadLines reads path as a line-oriented corpus: every non-empty line becomes
// one document. This is the shape of small hand-written corpora.
func (l *Loader) LoadLines(path string) ([]models.DocumentInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer f.Close()

	var inputs []models.DocumentInput
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		inputs = append(inputs, models.DocumentInput{
			Content: line,
			Source:  fmt.Sprintf("%s:%d", path, lineNo),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	return inputs, nil
}

// LoadFile extracts the file at path into a single document input.
func (l *Loader) LoadFile(path string) (models.DocumentInput, error) {
	text, err := l.extractor.Extract(path)
	if err != nil {
		return models.DocumentInput{}, fmt.Errorf("extract %s: %w", path, err)
	}
	return models.DocumentInput{Content: text, Source: path}, nil
}

// LoadDir walks root recursively and extracts one document per file whose
// extension is in extensions (empty means all files). Results are ordered by
// path so corpus positions are deterministic across runs.
func (l *Loader) LoadDir(root string, extensions []string) ([]models.DocumentInput, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !matchExtension(path, extensions) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)

	inputs := make([]models.DocumentInput, 0, len(paths))
	for _, path := range paths {
		in, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// Load resolves each path in paths: directories load recursively, files with
// a .lines suffix load line-per-document, other files load whole.
func (l *Loader) Load(paths []string, extensions []string) ([]models.DocumentInput, error) {
	var inputs []models.DocumentInput
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		switch {
		case info.IsDir():
			dirInputs, err := l.LoadDir(path, extensions)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, dirInputs...)
		case strings.HasSuffix(path, ".lines"):
			lineInputs, err := l.LoadLines(path)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, lineInputs...)
		default:
			in, err := l.LoadFile(path)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
		}
	}
	return inputs, nil
}

// matchExtension reports whether path's extension is in extensions.
// An empty extensions list matches everything.
func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
