package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinter(t *testing.T) {
	tests := []struct {
		name  string
		print func(p *printer)
		want  []string
	}{
		{"success", func(p *printer) { p.success("installed %d", 3) }, []string{iconSuccess, "installed 3"}},
		{"failure", func(p *printer) { p.failure("broken") }, []string{iconError, "broken"}},
		{"warning", func(p *printer) { p.warning("offline") }, []string{iconWarning, "offline"}},
		{"info", func(p *printer) { p.info("nothing to do") }, []string{iconInfo, "nothing to do"}},
		{"detail", func(p *printer) { p.detail("%s", "a-1.0") }, []string{"  ", "a-1.0"}},
		{"file", func(p *printer) { p.file("plan.dot") }, []string{iconArrow, "plan.dot"}},
		{"stats", func(p *printer) { p.stats(4, 3) }, []string{"4 packages", "3 dependencies"}},
		{"next step", func(p *printer) { p.nextStep("Install with", "stackpkg install a") }, []string{"Install with:", "stackpkg install a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&printer{w: &buf})
			got := buf.String()
			if !strings.HasSuffix(got, "\n") {
				t.Errorf("output %q not newline terminated", got)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output %q missing %q", got, w)
				}
			}
		})
	}
}

func TestPrinterStatsWithoutEdges(t *testing.T) {
	var buf bytes.Buffer
	(&printer{w: &buf}).stats(1, 0)
	if strings.Contains(buf.String(), "dependencies") {
		t.Errorf("stats(1, 0) = %q, want no dependency count", buf.String())
	}
}

func TestPrinterKeyValueAlignment(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf}
	p.keyValue("a", "1.0", 5)
	p.keyValue("abcde", "2.0", 5)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if i, j := strings.Index(lines[0], "1.0"), strings.Index(lines[1], "2.0"); i != j {
		t.Errorf("values not aligned: %q and %q", lines[0], lines[1])
	}
}

func TestPrinterNewline(t *testing.T) {
	var buf bytes.Buffer
	(&printer{w: &buf}).newline()
	if buf.String() != "\n" {
		t.Errorf("newline() = %q", buf.String())
	}
}
