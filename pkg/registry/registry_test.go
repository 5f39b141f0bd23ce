package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/stackpkg/pkg/archive"
	"github.com/matzehuels/stackpkg/pkg/cache"
	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/requirement"
	"github.com/matzehuels/stackpkg/pkg/spec"
	"github.com/matzehuels/stackpkg/pkg/version"
)

func mk(name, v string) *spec.Spec {
	return &spec.Spec{Name: name, Version: version.MustParse(v), Platform: spec.PlatformAny}
}

// testServer serves listings for the given specs and archives from dir.
func testServer(t *testing.T, hits *int32, dir string, specs ...*spec.Spec) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/versions/", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		name := filepath.Base(r.URL.Path)
		name = name[:len(name)-len(".json")]
		var out []WireSpec
		for _, s := range specs {
			if s.Name == name {
				out = append(out, FromSpec(s))
			}
		}
		if out == nil {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/packages/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(dir, filepath.Base(r.URL.Path)))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testRegistry(sources ...string) *Registry {
	return New(Options{Sources: sources, Attempts: 1, RetryDelay: time.Millisecond})
}

func TestSearch(t *testing.T) {
	srv := testServer(t, nil, "", mk("b", "1.0.0"), mk("b", "1.1.0"), mk("b", "2.0.0.rc1"), mk("c", "1.0"))
	r := testRegistry(srv.URL)
	ctx := context.Background()

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"latest only", Query{Name: "b", Requirement: requirement.MustParse(">= 1.0")}, []string{"b-1.1.0"}},
		{"all versions", Query{Name: "b", Requirement: requirement.MustParse("~> 1.0"), All: true}, []string{"b-1.0.0", "b-1.1.0"}},
		{"prerelease option", Query{Name: "b", Requirement: requirement.Default(), Prerelease: true}, []string{"b-2.0.0.rc1"}},
		{"prerelease requirement", Query{Name: "b", Requirement: requirement.MustParse("= 2.0.0.rc1"), All: true}, []string{"b-2.0.0.rc1"}},
		{"unknown package", Query{Name: "zzz", Requirement: requirement.Default()}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := r.Search(ctx, tt.q)
			if len(errs) != 0 {
				t.Fatalf("Search() errors: %v", errs)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Search() = %v, want %v", got, tt.want)
			}
			for i, c := range got {
				if c.Spec.FullName() != tt.want[i] {
					t.Errorf("[%d] = %s, want %s", i, c.Spec.FullName(), tt.want[i])
				}
				if c.Source.IsLocal() || c.Source.Origin != srv.URL {
					t.Errorf("[%d] source = %v", i, c.Source)
				}
			}
		})
	}
}

func TestSearchMultipleSources(t *testing.T) {
	good := testServer(t, nil, "", mk("b", "1.0.0"))
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	r := testRegistry(down.URL, good.URL)
	got, errs := r.Search(context.Background(), Query{Name: "b", Requirement: requirement.Default()})
	if len(got) != 1 || got[0].Source.Origin != good.URL {
		t.Errorf("Search() = %v, want b-1.0.0 from the working source", got)
	}
	if len(errs) != 1 || !errors.Is(errs[0], errors.ErrCodeTransport) {
		t.Errorf("errors = %v, want one TRANSPORT error", errs)
	}
}

func TestVersionsCached(t *testing.T) {
	var hits int32
	srv := testServer(t, &hits, "", mk("b", "1.0.0"))
	backend, _ := cache.NewFileCache(t.TempDir())
	ctx := context.Background()

	r := New(Options{Sources: []string{srv.URL}, Cache: backend})
	for range 2 {
		specs, err := r.Versions(ctx, srv.URL, "b")
		if err != nil || len(specs) != 1 {
			t.Fatalf("Versions() = %v, %v", specs, err)
		}
	}
	if hits != 1 {
		t.Errorf("registry hit %d times, want 1", hits)
	}

	fresh := New(Options{Sources: []string{srv.URL}, Cache: backend, Refresh: true})
	if _, err := fresh.Versions(ctx, srv.URL, "b"); err != nil {
		t.Fatal(err)
	}
	if hits != 2 {
		t.Errorf("refresh should bypass the cache, hits = %d", hits)
	}
}

func TestFilterPlatform(t *testing.T) {
	linux := mk("n", "1.0")
	linux.Platform = "linux-amd64"
	darwin := mk("n", "1.0")
	darwin.Platform = "darwin-arm64"
	generic := mk("n", "0.9")

	got := Filter([]*spec.Spec{linux, darwin, generic}, Query{Name: "n", Requirement: requirement.Default(), Platform: "linux-amd64"})
	if len(got) != 2 || got[0] != linux || got[1] != generic {
		t.Errorf("Filter() = %v, want newest per matching platform", got)
	}
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	pub := t.TempDir()
	s := mk("tool", "1.0")
	if _, err := archive.Create(pub, s, map[string][]byte{"bin/tool": []byte("#!/bin/sh\n")}); err != nil {
		t.Fatal(err)
	}
	srv := testServer(t, nil, pub, s)
	r := testRegistry(srv.URL)

	dest := t.TempDir()
	p, err := r.Fetch(ctx, s, spec.Remote(srv.URL), dest)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got, err := archive.ReadSpec(p); err != nil || got.FullName() != "tool-1.0" {
		t.Errorf("fetched archive = %v, %v", got, err)
	}

	local := t.TempDir()
	lp, err := r.Fetch(ctx, s, spec.Local(filepath.Join(pub, "tool-1.0.pkg")), local)
	if err != nil {
		t.Fatalf("local Fetch() error: %v", err)
	}
	if _, err := os.Stat(lp); err != nil {
		t.Errorf("local archive not copied: %v", err)
	}

	missing := mk("gone", "1.0")
	if _, err := r.Fetch(ctx, missing, spec.Remote(srv.URL), t.TempDir()); !errors.Is(err, errors.ErrCodeFetch) {
		t.Errorf("Fetch() of missing archive error = %v, want FETCH", err)
	}
}

func TestWireSpecInvalid(t *testing.T) {
	bad := []WireSpec{
		{Name: "", Version: "1.0"},
		{Name: "a", Version: "x"},
		{Name: "a", Version: "1", Dependencies: WireDependencies{Runtime: []WireDependency{{Name: "b", Requirements: []string{"=> 1"}}}}},
	}
	for _, w := range bad {
		if _, err := w.Spec(); !errors.Is(err, errors.ErrCodeFormat) {
			t.Errorf("Spec(%+v) error = %v, want FORMAT", w, err)
		}
	}
}
