package aggregate

import (
	"strings"
	"testing"

	"github.com/unbound-force/covtree/internal/export"
	"github.com/unbound-force/covtree/internal/model"
)

func region(startLine, endLine int, count uint64, fileID, kind int) export.Region {
	return export.Region{
		LineStart: startLine, ColStart: 1,
		LineEnd: endLine, ColEnd: 40,
		Count: count, FileID: fileID, Kind: kind,
	}
}

func TestAttribute_RegionsKeyedByFileID(t *testing.T) {
	funcs := []export.FunctionRecord{
		{
			Name:  "inline_helper",
			Count: 3,
			Regions: []export.Region{
				region(1, 2, 3, 0, int(model.KindCode)),
				region(8, 9, 3, 1, int(model.KindCode)),
			},
			Filenames: []string{"a.c", "a.h"},
		},
	}
	known := map[string]bool{"a.c": true, "a.h": true}

	attr, diags := Attribute(funcs, known, Options{})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if len(attr.Regions["a.c"]) != 1 || len(attr.Regions["a.h"]) != 1 {
		t.Fatalf("regions split = %d/%d, want 1/1",
			len(attr.Regions["a.c"]), len(attr.Regions["a.h"]))
	}
	if attr.Regions["a.h"][0].StartLine != 8 {
		t.Errorf("a.h region start = %d, want 8", attr.Regions["a.h"][0].StartLine)
	}

	// The function is summarized under both files it touches, with
	// per-file region counts.
	for _, file := range []string{"a.c", "a.h"} {
		fns := attr.Functions[file]
		if len(fns) != 1 {
			t.Fatalf("%s: %d function summaries, want 1", file, len(fns))
		}
		if fns[0].RegionCount != 1 || fns[0].CoveredRegionCount != 1 {
			t.Errorf("%s: region counts = %d/%d, want 1/1",
				file, fns[0].CoveredRegionCount, fns[0].RegionCount)
		}
	}
}

func TestAttribute_UnknownFileDropsFunction(t *testing.T) {
	funcs := []export.FunctionRecord{
		{
			Name:      "ghost",
			Count:     1,
			Regions:   []export.Region{region(1, 1, 1, 0, int(model.KindCode))},
			Filenames: []string{"missing.c"},
		},
	}

	attr, diags := Attribute(funcs, map[string]bool{"a.c": true}, Options{})
	if len(attr.Functions) != 0 || len(attr.Regions) != 0 {
		t.Error("dropped function must not contribute regions or summaries")
	}
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	if diags[0].Code != model.DiagMissingFile {
		t.Errorf("code = %s, want %s", diags[0].Code, model.DiagMissingFile)
	}
	if !strings.Contains(diags[0].Detail, "ghost") {
		t.Errorf("detail should name the function: %s", diags[0].Detail)
	}
}

func TestAttribute_Demangler(t *testing.T) {
	funcs := []export.FunctionRecord{
		{Name: "_Z3foov", Count: 1, Filenames: []string{"a.c"}},
	}

	attr, _ := Attribute(funcs, map[string]bool{"a.c": true}, Options{
		Demangler: func(s string) string { return "demangled:" + s },
	})
	if got := attr.Functions["a.c"][0].Name; got != "demangled:_Z3foov" {
		t.Errorf("name = %q, want demangled form", got)
	}
}

func TestBuildFile_Summary(t *testing.T) {
	rec := export.FileRecord{
		Filename: "a.c",
		Segments: []export.Segment{
			{Line: 1, Col: 1, Count: 5, HasCount: true, IsRegionEntry: true},
			{Line: 3, Col: 1, Count: 0, HasCount: true, IsRegionEntry: true},
			{Line: 5, Col: 1, Count: 0, HasCount: true, IsGapRegion: true},
		},
		Branches: []export.Branch{
			{LineStart: 3, ColStart: 5, LineEnd: 3, ColEnd: 9, Count: 4, FalseCount: 0},
		},
	}
	regions := []model.Region{
		{StartLine: 1, StartCol: 1, EndLine: 4, EndCol: 40, Count: 5, Kind: model.KindCode},
		{StartLine: 3, StartCol: 1, EndLine: 4, EndCol: 40, Count: 0, Kind: model.KindCode},
	}
	funcs := []model.FunctionSummary{
		{Name: "main", Filename: "a.c", ExecutionCount: 5, RegionCount: 2, CoveredRegionCount: 1},
		{Name: "unused", Filename: "a.c", ExecutionCount: 0, RegionCount: 0, CoveredRegionCount: 0},
	}

	fc, diags := BuildFile(rec, regions, funcs)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	want := model.Summary{
		LinesCovered: 2, LinesTotal: 4,
		RegionsCovered: 1, RegionsTotal: 2,
		FunctionsCovered: 1, FunctionsTotal: 2,
		BranchesCovered: 1, BranchesTotal: 2,
	}
	if fc.Summary != want {
		t.Errorf("summary = %+v, want %+v", fc.Summary, want)
	}

	if fc.Summary.LinesCovered > fc.Summary.LinesTotal {
		t.Error("lines covered exceeds total")
	}
}

func TestBuildFile_SegmentOrderRecovered(t *testing.T) {
	rec := export.FileRecord{
		Filename: "broken.c",
		Segments: []export.Segment{
			{Line: 5, Col: 1, Count: 1, HasCount: true},
			{Line: 1, Col: 1, Count: 1, HasCount: true},
		},
	}
	regions := []model.Region{
		{StartLine: 1, StartCol: 1, EndLine: 2, EndCol: 5, Count: 1, Kind: model.KindCode},
	}

	fc, diags := BuildFile(rec, regions, nil)
	if len(diags) != 1 || diags[0].Code != model.DiagSegmentOrder {
		t.Fatalf("diagnostics = %v, want one segment_order", diags)
	}

	// The file stays in the report, fully zeroed, so rollups remain
	// consistent with the processed file count.
	if fc.Path != "broken.c" {
		t.Errorf("path = %q, want broken.c", fc.Path)
	}
	if fc.Summary != (model.Summary{}) {
		t.Errorf("summary = %+v, want zeroed", fc.Summary)
	}
	for line, v := range fc.LineVerdicts {
		if v.Status != model.NotInstrumented {
			t.Errorf("line %d: status = %s, want not_instrumented", line, v.Status)
		}
	}
}

func TestBuildFile_SummaryMismatchDiagnostic(t *testing.T) {
	rec := export.FileRecord{
		Filename: "a.c",
		Segments: []export.Segment{
			{Line: 1, Col: 1, Count: 5, HasCount: true, IsRegionEntry: true},
			{Line: 2, Col: 1, Count: 0, HasCount: false},
		},
		Summary: export.SummaryBlock{
			// Claims 9/9 lines; recomputation says 1/1.
			Lines: export.Counts{Count: 9, Covered: 9, Percent: 100},
		},
	}

	fc, diags := BuildFile(rec, nil, nil)
	if len(diags) != 1 || diags[0].Code != model.DiagSummaryMismatch {
		t.Fatalf("diagnostics = %v, want one summary_mismatch", diags)
	}
	// Recomputed totals are authoritative.
	if fc.Summary.LinesTotal != 1 || fc.Summary.LinesCovered != 1 {
		t.Errorf("lines = %d/%d, want 1/1",
			fc.Summary.LinesCovered, fc.Summary.LinesTotal)
	}
}

func TestBuildFile_NoFunctionsIsNotAnError(t *testing.T) {
	rec := export.FileRecord{
		Filename: "lonely.c",
		Segments: []export.Segment{
			{Line: 1, Col: 1, Count: 1, HasCount: true, IsRegionEntry: true},
			{Line: 2, Col: 1, Count: 0, HasCount: false},
		},
	}

	fc, diags := BuildFile(rec, nil, nil)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if fc.Summary.FunctionsTotal != 0 || fc.Summary.FunctionsCovered != 0 {
		t.Errorf("functions = %d/%d, want 0/0",
			fc.Summary.FunctionsCovered, fc.Summary.FunctionsTotal)
	}
}
