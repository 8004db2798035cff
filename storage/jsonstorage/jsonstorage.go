package jsonstorage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/dreamerjackson/ducrawler/spider"
	"go.uber.org/zap"
)

// JSONStorage writes each record set to <dir>/<output> as
// {"<collection>": [...]}, replacing any previous file.
type JSONStorage struct {
	options
}

func New(opts ...Option) *JSONStorage {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	return &JSONStorage{options: options}
}

func (s *JSONStorage) Path(cell *spider.DataCell) string {
	return filepath.Join(s.dir, cell.Output)
}

func (s *JSONStorage) Save(cell *spider.DataCell) error {
	if cell.Output == "" || cell.Collection == "" {
		return &spider.IOError{Path: s.dir, Err: errors.New("task " + cell.Task + " has no output file or collection")}
	}

	path := s.Path(cell)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &spider.IOError{Path: filepath.Dir(path), Err: err}
	}

	b, err := Encode(cell.Collection, cell.Items)
	if err != nil {
		return &spider.IOError{Path: path, Err: err}
	}

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return &spider.IOError{Path: path, Err: err}
	}

	s.logger.Info("records saved",
		zap.String("task", cell.Task),
		zap.String("path", path),
		zap.Int("count", len(cell.Items)),
	)

	return nil
}

// Encode renders items as a pretty-printed single-key document. A nil slice
// is written as an empty array.
func Encode(collection string, items []interface{}) ([]byte, error) {
	if items == nil {
		items = []interface{}{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(map[string]interface{}{collection: items}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
