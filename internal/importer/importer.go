package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/finstat-dev/finstat/internal/model"
)

// Extractor converts a raw bank export into canonical transactions.
type Extractor interface {
	Key() string
	DisplayName() string
	Extension() string
	Parse(raw string) ([]model.Transaction, error)
}

// Registry holds extractors by key. It is built once and never modified.
type Registry struct {
	ordered []Extractor
	byKey   map[string]Extractor
}

// Inbox layout of a project.
const (
	ImportDir    = "import"
	ProcessedDir = "processed"
)

// FileInfo describes an importable file in a directory.
type FileInfo struct {
	Name       string
	Path       string
	Size       int64
	Extractors []Extractor
}

// NewRegistry creates a registry of extractors. Panics on duplicate key.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{byKey: make(map[string]Extractor, len(extractors))}
	for _, e := range extractors {
		key := strings.ToLower(e.Key())
		if _, ok := r.byKey[key]; ok {
			panic("duplicate extractor key: " + key)
		}
		r.byKey[key] = e
		r.ordered = append(r.ordered, e)
	}
	return r
}

// DefaultRegistry returns a registry with all built-in extractors.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&SimpleExtractor{},
		&FioExtractor{},
		&MonetaExtractor{},
		&EquaExtractor{},
		&RaiffeisenExtractor{},
		&UniCreditExtractor{},
		&SodexoExtractor{},
		&OFXExtractor{},
	)
}

// Get returns the extractor registered under key.
func (r *Registry) Get(key string) (Extractor, error) {
	e, ok := r.byKey[strings.ToLower(key)]
	if !ok {
		return nil, &UnsupportedFormatError{Key: key}
	}
	return e, nil
}

// ByExtension returns every extractor handling ext, in registry order.
// The leading dot and letter case are ignored.
func (r *Registry) ByExtension(ext string) []Extractor {
	ext = normalizeExt(ext)
	var matches []Extractor
	for _, e := range r.ordered {
		if e.Extension() == ext {
			matches = append(matches, e)
		}
	}
	return matches
}

// All returns the extractors in registry order.
func (r *Registry) All() []Extractor {
	out := make([]Extractor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Keys returns the registered keys in registry order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.ordered))
	for i, e := range r.ordered {
		keys[i] = e.Key()
	}
	return keys
}

// Detect picks the extractor for filename by its extension. Candidates are
// tried in registry order and the first one that parses raw wins. When every
// candidate fails, the last error is returned.
func (r *Registry) Detect(filename, raw string) (Extractor, []model.Transaction, error) {
	ext := filepath.Ext(filename)
	candidates := r.ByExtension(ext)
	if len(candidates) == 0 {
		return nil, nil, &UnsupportedFormatError{Extension: normalizeExt(ext)}
	}

	var lastErr error
	for _, e := range candidates {
		txns, err := e.Parse(raw)
		if err == nil {
			return e, txns, nil
		}
		lastErr = err
	}
	return nil, nil, fmt.Errorf("no extractor for %s accepted the file: %w", filepath.Base(filename), lastErr)
}

// Scan returns the files in dir that at least one extractor can handle.
func Scan(dir string, r *Registry) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		extractors := r.ByExtension(filepath.Ext(e.Name()))
		if len(extractors) == 0 {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name:       e.Name(),
			Path:       filepath.Join(dir, e.Name()),
			Size:       info.Size(),
			Extractors: extractors,
		})
	}
	return files, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MarkProcessed moves dir/fileName to dir/processed/fileName. An already
// processed file of the same name is not overwritten.
func MarkProcessed(dir, fileName string) error {
	dstDir := filepath.Join(dir, ProcessedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, os.ErrExist)
	}
	if err := os.Rename(filepath.Join(dir, fileName), dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
