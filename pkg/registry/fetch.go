package registry

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/stackpkg/pkg/archive"
	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/observability"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// Fetch places the archive of s in destDir and returns its path. Local
// sources are copied unless they already live in destDir. Remote archives
// already present in destDir are reused. Failures carry ErrCodeFetch.
func (r *Registry) Fetch(ctx context.Context, s *spec.Spec, src spec.Source, destDir string) (string, error) {
	start := time.Now()
	p, err := r.fetch(ctx, s, src, destDir)
	observability.Install().OnFetch(ctx, s.FullName(), src.String(), time.Since(start), err)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFetch, err, "fetch %s from %s", s.FullName(), src.Origin)
	}
	r.logger.Debug("fetched", "package", s.FullName(), "path", p)
	return p, nil
}

func (r *Registry) fetch(ctx context.Context, s *spec.Spec, src spec.Source, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, archive.FileName(s))

	if src.IsLocal() {
		if samePath(src.Origin, dest) {
			return dest, nil
		}
		return dest, copyFile(src.Origin, dest)
	}

	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	endpoint := fmt.Sprintf("%s/packages/%s", src.Origin, url.PathEscape(archive.FileName(s)))
	part := dest + ".part"
	err := r.client.Download(ctx, endpoint, func() (io.WriteCloser, error) {
		return os.Create(part)
	})
	if err != nil {
		_ = os.Remove(part)
		return "", err
	}
	return dest, os.Rename(part, dest)
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	part := to + ".part"
	out, err := os.Create(part)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(part)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(part, to)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
