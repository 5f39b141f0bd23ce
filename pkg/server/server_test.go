package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/stackpkg/pkg/archive"
	"github.com/matzehuels/stackpkg/pkg/localcache"
	"github.com/matzehuels/stackpkg/pkg/registry"
	"github.com/matzehuels/stackpkg/pkg/requirement"
	"github.com/matzehuels/stackpkg/pkg/spec"
	"github.com/matzehuels/stackpkg/pkg/version"
)

func mk(name, v string, deps ...spec.Dependency) *spec.Spec {
	return &spec.Spec{Name: name, Version: version.MustParse(v), Platform: spec.PlatformAny, Runtime: deps}
}

func newTestServer(t *testing.T, specs ...*spec.Spec) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	for _, s := range specs {
		if _, err := archive.Create(dir, s, map[string][]byte{"README": []byte(s.FullName())}); err != nil {
			t.Fatal(err)
		}
	}
	srv := httptest.NewServer(New(localcache.New(dir, nil), nil).Handler())
	t.Cleanup(srv.Close)
	return srv, dir
}

func TestRoutes(t *testing.T) {
	srv, _ := newTestServer(t, mk("a", "1.0"))

	tests := []struct {
		path string
		want int
	}{
		{"/healthz", http.StatusOK},
		{"/api/v1/versions/a.json", http.StatusOK},
		{"/api/v1/versions/missing.json", http.StatusNotFound},
		{"/api/v1/versions/a", http.StatusNotFound},
		{"/packages/a-1.0.pkg", http.StatusOK},
		{"/packages/a-2.0.pkg", http.StatusNotFound},
		{"/packages/metadata.toml", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
	}
}

func TestServesRegistryClient(t *testing.T) {
	srv, _ := newTestServer(t,
		mk("a", "1.0", spec.MustDependency("b", ">= 1.0")),
		mk("a", "1.1"),
		mk("b", "1.0"),
	)
	reg := registry.New(registry.Options{Sources: []string{srv.URL}, Attempts: 1, RetryDelay: time.Millisecond})
	ctx := context.Background()

	cands, errs := reg.Search(ctx, registry.Query{Name: "a", Requirement: requirement.Default(), All: true})
	if len(errs) > 0 {
		t.Fatalf("Search() errors = %v", errs)
	}
	if len(cands) != 2 {
		t.Fatalf("Search() = %d candidates, want 2", len(cands))
	}

	var a10 *spec.Spec
	for _, c := range cands {
		if c.Spec.FullName() == "a-1.0" {
			a10 = c.Spec
		}
	}
	if a10 == nil || len(a10.Runtime) != 1 || a10.Runtime[0].Name != "b" {
		t.Fatalf("a-1.0 dependencies not served: %+v", a10)
	}

	dest := t.TempDir()
	p, err := reg.Fetch(ctx, a10, spec.Remote(srv.URL), dest)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if filepath.Dir(p) != dest {
		t.Errorf("Fetch() path = %s, want inside %s", p, dest)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatal(err)
	}
	got, err := archive.ReadSpec(p)
	if err != nil || got.FullName() != "a-1.0" {
		t.Errorf("fetched archive = %v, %v", got, err)
	}
}
