package installed

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// SpecDir is the directory below an install root that holds spec records.
const SpecDir = "specifications"

const recordExt = ".toml"

// FileStore keeps one TOML record per installed package in
// <root>/specifications.
type FileStore struct {
	dir    string
	logger *log.Logger
}

// NewFileStore returns a store rooted at installDir. The logger may be nil.
func NewFileStore(installDir string, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = log.Default()
	}
	return &FileStore{dir: filepath.Join(installDir, SpecDir), logger: logger}
}

// Dir returns the record directory.
func (f *FileStore) Dir() string { return f.dir }

// Load reads every record. A missing directory is an empty set; corrupt
// records are logged and skipped.
func (f *FileStore) Load(ctx context.Context) (*Set, error) {
	entries, err := os.ReadDir(f.dir)
	if os.IsNotExist(err) {
		return NewSet(), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", f.dir)
	}

	set := NewSet()
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		path := filepath.Join(f.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			f.logger.Warn("skipping unreadable spec record", "path", path, "err", err)
			continue
		}
		s, err := spec.Parse(data)
		if err != nil {
			f.logger.Warn("skipping invalid spec record", "path", path, "err", err)
			continue
		}
		set.Add(s)
	}
	return set, nil
}

// Record writes the TOML record of s atomically.
func (f *FileStore) Record(_ context.Context, s *spec.Spec) error {
	data, err := spec.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", f.dir)
	}
	path := f.path(s.FullName())
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInternal, err, "rename %s", tmp)
	}
	return nil
}

// Forget removes the record of fullName. A missing record is not an error.
func (f *FileStore) Forget(_ context.Context, fullName string) error {
	if err := os.Remove(f.path(fullName)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "remove record of %s", fullName)
	}
	return nil
}

func (f *FileStore) path(fullName string) string {
	return filepath.Join(f.dir, fullName+recordExt)
}
