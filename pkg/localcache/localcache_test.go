package localcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/stackpkg/pkg/archive"
	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/spec"
	"github.com/matzehuels/stackpkg/pkg/version"
)

func publish(t *testing.T, dir, name, v string) {
	t.Helper()
	s := &spec.Spec{Name: name, Version: version.MustParse(v), Platform: spec.PlatformAny}
	if _, err := archive.Create(dir, s, nil); err != nil {
		t.Fatal(err)
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	publish(t, dir, "b", "1.0.0")
	publish(t, dir, "b", "1.1.0")
	publish(t, dir, "b-extra", "2.0")
	publish(t, dir, "c", "1.0")

	cands, errs := New(dir, nil).Find(context.Background(), "b")
	if len(errs) != 0 {
		t.Fatalf("Find() errors: %v", errs)
	}
	if len(cands) != 2 {
		t.Fatalf("Find() = %v, want the two b archives", cands)
	}
	for _, c := range cands {
		if c.Spec.Name != "b" || !c.Source.IsLocal() {
			t.Errorf("unexpected candidate %v", c)
		}
		if filepath.Dir(c.Source.Origin) != dir {
			t.Errorf("origin = %s", c.Source.Origin)
		}
	}
}

func TestFindSkipsCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	publish(t, dir, "b", "1.0.0")
	if err := os.WriteFile(filepath.Join(dir, "b-9.9.pkg"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	cands, errs := New(dir, nil).Find(context.Background(), "b")
	if len(cands) != 1 || cands[0].Spec.FullName() != "b-1.0.0" {
		t.Errorf("Find() = %v", cands)
	}
	if len(errs) != 1 || !errors.Is(errs[0], errors.ErrCodeFormat) {
		t.Errorf("errors = %v, want one FORMAT error", errs)
	}
}

func TestAll(t *testing.T) {
	dir := t.TempDir()
	publish(t, dir, "a", "1.0")
	publish(t, dir, "b", "1.0")
	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cands, errs := New(dir, nil).All(context.Background())
	if len(errs) != 0 || len(cands) != 2 {
		t.Errorf("All() = %v, %v", cands, errs)
	}

	none, errs := New(filepath.Join(dir, "missing"), nil).All(context.Background())
	if len(none) != 0 || len(errs) != 0 {
		t.Errorf("missing dir: %v, %v", none, errs)
	}
}
