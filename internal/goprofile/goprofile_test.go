package goprofile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/unbound-force/covtree/internal/model"
)

const sampleProfile = `mode: set
example.com/pkg/a.go:3.13,5.2 2 1
example.com/pkg/a.go:7.13,9.2 1 0
example.com/pkg/b.go:3.13,3.40 1 1
`

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cover.out")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse(t *testing.T) {
	files, err := Parse(writeProfile(t, sampleProfile))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}

	byPath := make(map[string]model.FileCoverage, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}

	a, ok := byPath["example.com/pkg/a.go"]
	if !ok {
		t.Fatal("a.go missing from result")
	}
	// Lines 3-5 covered, 7-9 not.
	if a.Summary.LinesCovered != 3 || a.Summary.LinesTotal != 6 {
		t.Errorf("a.go lines = %d/%d, want 3/6",
			a.Summary.LinesCovered, a.Summary.LinesTotal)
	}
	if a.Summary.RegionsCovered != 1 || a.Summary.RegionsTotal != 2 {
		t.Errorf("a.go regions = %d/%d, want 1/2",
			a.Summary.RegionsCovered, a.Summary.RegionsTotal)
	}
	if got := a.LineVerdicts[4].Status; got != model.Covered {
		t.Errorf("a.go line 4 = %s, want covered", got)
	}
	if got := a.LineVerdicts[8].Status; got != model.NotCovered {
		t.Errorf("a.go line 8 = %s, want not_covered", got)
	}

	// Profiles carry no function records.
	if a.Summary.FunctionsTotal != 0 {
		t.Errorf("a.go functions total = %d, want 0", a.Summary.FunctionsTotal)
	}
}

func TestParse_OverlappingBlocksKeepMinMax(t *testing.T) {
	profile := `mode: count
example.com/pkg/c.go:3.1,6.2 3 5
example.com/pkg/c.go:5.1,6.2 1 0
`
	files, err := Parse(writeProfile(t, profile))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	v := files[0].LineVerdicts[5]
	if v.MinCount != 0 || v.MaxCount != 5 {
		t.Errorf("line 5 counts = %d..%d, want 0..5", v.MinCount, v.MaxCount)
	}
	if v.Status != model.Covered {
		t.Errorf("line 5 status = %s, want covered", v.Status)
	}
	if v.FineStatus() != model.Mixed {
		t.Errorf("line 5 fine status = %s, want mixed", v.FineStatus())
	}
}

func TestParse_MissingFile(t *testing.T) {
	if _, err := Parse(filepath.Join(t.TempDir(), "absent.out")); err == nil {
		t.Fatal("expected error for missing profile")
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse(writeProfile(t, "not a profile\n")); err == nil {
		t.Fatal("expected error for malformed profile")
	}
}
