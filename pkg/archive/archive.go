// Package archive reads and writes package archives.
//
// An archive is a gzip-compressed tar file named <full-name>.pkg. It holds
// the package metadata as metadata.toml and the payload under data/:
//
//	metadata.toml
//	data/bin/tool
//	data/lib/tool.sh
//
// Files under data/bin/ are written executable.
package archive

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

const (
	Ext          = ".pkg"          // Archive file extension
	MetadataFile = "metadata.toml" // Metadata entry name
	DataDir      = "data/"         // Payload prefix
)

const maxMetadataSize = 1 << 20

// FileName returns the archive file name for s.
func FileName(s *spec.Spec) string { return s.FullName() + Ext }

// Write encodes an archive for s to w. files maps paths relative to data/
// to their content.
func Write(w io.Writer, s *spec.Spec, files map[string][]byte) error {
	meta, err := spec.Marshal(s)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	if err := writeEntry(tw, MetadataFile, meta, 0o644); err != nil {
		return err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mode := int64(0o644)
		if strings.HasPrefix(name, "bin/") {
			mode = 0o755
		}
		if err := writeEntry(tw, DataDir+name, files[name], mode); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	return gz.Close()
}

func writeEntry(tw *tar.Writer, name string, data []byte, mode int64) error {
	hdr := &tar.Header{Name: name, Mode: mode, Size: int64(len(data)), Typeflag: tar.TypeReg}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Create writes an archive for s into dir and returns its path.
func Create(dir string, s *spec.Spec, files map[string][]byte) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, s, files); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(dir, FileName(s))
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return p, nil
}

// ReadSpec returns the metadata of the archive at p without extracting it.
func ReadSpec(p string) (*spec.Spec, error) {
	var s *spec.Spec
	err := walk(p, func(hdr *tar.Header, r io.Reader) (bool, error) {
		if hdr.Name != MetadataFile {
			return true, nil
		}
		var err error
		s, err = readMetadata(r)
		return false, err
	})
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New(errors.ErrCodeFormat, "%s: missing %s", p, MetadataFile)
	}
	return s, nil
}

// Extract unpacks the payload of the archive at p into dest and returns the
// archive's metadata. Entries escaping dest are rejected.
func Extract(p, dest string) (*spec.Spec, error) {
	var s *spec.Spec
	err := walk(p, func(hdr *tar.Header, r io.Reader) (bool, error) {
		if hdr.Name == MetadataFile {
			var err error
			s, err = readMetadata(r)
			return true, err
		}
		if !strings.HasPrefix(hdr.Name, DataDir) || hdr.Typeflag != tar.TypeReg {
			return true, nil
		}
		rel := path.Clean(strings.TrimPrefix(hdr.Name, DataDir))
		if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
			return false, errors.New(errors.ErrCodeFormat, "%s: illegal entry %q", p, hdr.Name)
		}
		target := filepath.Join(dest, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return false, err
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode)&0o777)
		if err != nil {
			return false, err
		}
		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			return false, errors.Wrap(errors.ErrCodeFormat, err, "%s: read %s", p, hdr.Name)
		}
		return true, f.Close()
	})
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New(errors.ErrCodeFormat, "%s: missing %s", p, MetadataFile)
	}
	return s, nil
}

func readMetadata(r io.Reader) (*spec.Spec, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxMetadataSize))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "read %s", MetadataFile)
	}
	return spec.Parse(data)
}

// walk calls fn for every tar entry until fn returns false or an error.
func walk(p string, fn func(*tar.Header, io.Reader) (bool, error)) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFormat, err, "%s: not a package archive", p)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeFormat, err, "%s: corrupt archive", p)
		}
		more, err := fn(hdr, tr)
		if err != nil || !more {
			return err
		}
	}
}
