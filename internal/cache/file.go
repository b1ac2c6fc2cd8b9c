package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"github.com/pable/kaynstats/internal/model"
)

// FileStore keeps the cache in a single document that is read fully on Load
// and rewritten fully on Save.
type FileStore struct {
	path       string
	yaml       bool
	compressed bool
}

// NewFileStore returns a FileStore for path. The format follows the suffix:
// .yaml/.yml is YAML, anything else JSON; a trailing .zst adds zstd compression.
func NewFileStore(path string) *FileStore {
	name := strings.ToLower(path)
	fs := &FileStore{path: path}
	if strings.HasSuffix(name, ".zst") {
		fs.compressed = true
		name = strings.TrimSuffix(name, ".zst")
	}
	fs.yaml = strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
	return fs
}

// Path returns the file the store reads and writes.
func (fs *FileStore) Path() string { return fs.path }

// Load reads the cache. A missing or empty file yields an empty cache.
func (fs *FileStore) Load() (model.Cache, error) {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Cache{}, nil
		}
		return nil, fmt.Errorf("read cache: %w", err)
	}
	if len(raw) == 0 {
		return model.Cache{}, nil
	}

	if fs.compressed {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		raw, err = dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: zstd: %v", ErrCorruptState, fs.path, err)
		}
	}

	c := model.Cache{}
	if fs.yaml {
		err = yaml.Unmarshal(raw, &c)
	} else {
		err = json.Unmarshal(raw, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptState, fs.path, err)
	}
	if c == nil { // document was a bare null
		c = model.Cache{}
	}
	for puuid, recs := range c {
		if recs == nil {
			c[puuid] = model.MatchRecords{}
		}
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes c to a temp file next to the target and renames it into place,
// so a reader never sees a half-written document.
func (fs *FileStore) Save(c model.Cache) error {
	data, err := fs.encode(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fs.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cache: %w", err)
	}
	if err := os.Rename(tmpPath, fs.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}

// Reset removes the cache file.
func (fs *FileStore) Reset() error {
	if err := os.Remove(fs.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reset cache: %w", err)
	}
	return nil
}

// Close is a no-op; FileStore holds no open handles.
func (fs *FileStore) Close() error { return nil }

func (fs *FileStore) encode(c model.Cache) ([]byte, error) {
	if c == nil {
		c = model.Cache{}
	}
	var buf bytes.Buffer
	var w io.Writer = &buf

	var enc *zstd.Encoder
	if fs.compressed {
		var err error
		enc, err = zstd.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		w = enc
	}

	if fs.yaml {
		ye := yaml.NewEncoder(w)
		ye.SetIndent(2)
		if err := ye.Encode(c); err != nil {
			return nil, fmt.Errorf("encode cache: %w", err)
		}
		if err := ye.Close(); err != nil {
			return nil, fmt.Errorf("encode cache: %w", err)
		}
	} else {
		je := json.NewEncoder(w)
		je.SetIndent("", "  ")
		if err := je.Encode(c); err != nil {
			return nil, fmt.Errorf("encode cache: %w", err)
		}
	}

	if enc != nil {
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
	}
	return buf.Bytes(), nil
}
