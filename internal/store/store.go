package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pavelanni/examprep/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt is returned when a collection file exists but is not valid JSON.
	ErrCorrupt = errors.New("corrupt collection file")
)

// File names of the collections inside the data directory.
const (
	StudentsFile             = "students.json"
	ExamsFile                = "exams.json"
	EducationalMaterialsFile = "educational_materials.json"
	TopicsFile               = "materials.json"
)

// fileMode is the permission of every collection file.
const fileMode = 0o644

// Option configures a Store.
type Option func(*Store)

// WithStrictCatalogs makes corrupt exam and material files fail reads instead of
// reading as empty collections.
func WithStrictCatalogs(strict bool) Option {
	return func(s *Store) { s.strictCatalogs = strict }
}

// Store keeps each entity collection in its own JSON file under one directory.
type Store struct {
	dir            string
	strictCatalogs bool

	students  *collection[model.Student]
	exams     *collection[model.Exam]
	materials *collection[model.EducationalMaterial]
	topics    *collection[model.Topic]
}

// New returns a Store rooted at dir. The directory is created on first write.
func New(dir string, opts ...Option) *Store {
	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	s.students = newCollection[model.Student](filepath.Join(dir, StudentsFile), true)
	s.exams = newCollection[model.Exam](filepath.Join(dir, ExamsFile), s.strictCatalogs)
	s.materials = newCollection[model.EducationalMaterial](filepath.Join(dir, EducationalMaterialsFile), s.strictCatalogs)
	s.topics = newCollection[model.Topic](filepath.Join(dir, TopicsFile), s.strictCatalogs)
	return s
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// collection is one JSON document mapping primary key to record.
type collection[T any] struct {
	path   string
	strict bool
}

func newCollection[T any](path string, strict bool) *collection[T] {
	return &collection[T]{path: path, strict: strict}
}

// exists reports whether the backing file is present.
func (c *collection[T]) exists() (bool, error) {
	_, err := os.Stat(c.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// readRaw returns the document with its records left undecoded. A missing or
// zero-length file is empty. A document that is not a JSON object is ErrCorrupt
// for strict collections and empty otherwise.
func (c *collection[T]) readRaw() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		if c.strict {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.path, err)
		}
		slog.Warn("collection file is corrupt, reading it as empty", "path", c.path, "error", err)
		return map[string]json.RawMessage{}, nil
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return raw, nil
}

// decode turns raw records into T. A record that does not decode is ErrCorrupt
// for strict collections and skipped with a warning otherwise.
func (c *collection[T]) decode(raw map[string]json.RawMessage) (map[string]T, error) {
	docs := make(map[string]T, len(raw))
	for _, k := range sortedKeys(raw) {
		var doc T
		if err := json.Unmarshal(raw[k], &doc); err != nil {
			if c.strict {
				return nil, fmt.Errorf("%w: %s: record %q: %v", ErrCorrupt, c.path, k, err)
			}
			slog.Warn("skipping unreadable record", "path", c.path, "key", k, "error", err)
			continue
		}
		docs[k] = doc
	}
	return docs, nil
}

// readAll returns every record that decodes.
func (c *collection[T]) readAll() (map[string]T, error) {
	raw, err := c.readRaw()
	if err != nil {
		return nil, err
	}
	return c.decode(raw)
}

// readForWrite loads the document for a read-modify-write cycle. Strict
// collections refuse to rewrite a file holding a record that does not decode;
// tolerant ones carry such records over unchanged.
func (c *collection[T]) readForWrite() (map[string]json.RawMessage, error) {
	raw, err := c.readRaw()
	if err != nil {
		return nil, err
	}
	if c.strict {
		if _, err := c.decode(raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func encodeRecord(doc any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimSpace(buf.Bytes())), nil
}

// writeRaw rewrites the whole collection through a temporary file in the same directory.
func (c *collection[T]) writeRaw(raw map[string]json.RawMessage) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", c.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", c.path, err)
	}
	slog.Debug("wrote collection", "path", c.path, "records", len(raw))
	return nil
}

// upsert stores doc under key and rewrites the file.
func (c *collection[T]) upsert(key string, doc T) error {
	raw, err := c.readForWrite()
	if err != nil {
		return err
	}
	rec, err := encodeRecord(doc)
	if err != nil {
		return fmt.Errorf("encode %s record %q: %w", c.path, key, err)
	}
	raw[key] = rec
	return c.writeRaw(raw)
}

// remove deletes key. It returns false, leaving the file untouched, when the
// file or the key is absent.
func (c *collection[T]) remove(key string) (bool, error) {
	ok, err := c.exists()
	if err != nil || !ok {
		return false, err
	}
	raw, err := c.readForWrite()
	if err != nil {
		return false, err
	}
	if _, found := raw[key]; !found {
		return false, nil
	}
	delete(raw, key)
	if err := c.writeRaw(raw); err != nil {
		return false, err
	}
	return true, nil
}

func sortedKeys[T any](docs map[string]T) []string {
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
