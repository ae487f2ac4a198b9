// Package aggregate combines resolved per-line verdicts with
// function-level records into complete per-file coverage summaries.
// All totals are recomputed here; the payload's own precomputed
// numbers are used for cross-validation only.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/unbound-force/covtree/internal/export"
	"github.com/unbound-force/covtree/internal/model"
	"github.com/unbound-force/covtree/internal/resolve"
)

// MissingFileError reports a function record referencing a filename
// absent from the files list. Recovered: the function is dropped
// with a diagnostic.
type MissingFileError struct {
	Function string
	Filename string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("function %q references unknown file %q",
		e.Function, e.Filename)
}

// Options configures aggregation.
type Options struct {
	// Demangler rewrites raw function symbols for display (e.g. a
	// Rust or C++ demangler). Nil means identity.
	Demangler func(string) string
}

// Attribution is the per-file view of the payload's function
// records: regions and function summaries keyed by filename.
type Attribution struct {
	Regions   map[string][]model.Region
	Functions map[string][]model.FunctionSummary
}

// Attribute distributes function records across the files they
// reference. known is the set of filenames present in the payload's
// files list; a function naming an unknown file is dropped whole,
// recorded as a MissingFileError diagnostic.
//
// Expansion attribution: a region's span always lives in the file
// named by its FileID — for expansions that span is the call site.
// Bodies expanded from another file carry that file's own ID and so
// attribute there, never to the reporting file's positions.
func Attribute(funcs []export.FunctionRecord, known map[string]bool, opts Options) (Attribution, []model.Diagnostic) {
	demangle := opts.Demangler
	if demangle == nil {
		demangle = func(s string) string { return s }
	}

	attr := Attribution{
		Regions:   make(map[string][]model.Region),
		Functions: make(map[string][]model.FunctionSummary),
	}
	var diags []model.Diagnostic

	for _, fn := range funcs {
		if bad, ok := unknownFile(fn, known); ok {
			err := &MissingFileError{Function: fn.Name, Filename: bad}
			diags = append(diags, model.Diagnostic{
				Code:   model.DiagMissingFile,
				Path:   bad,
				Detail: err.Error(),
			})
			continue
		}

		// Per-file region tallies for this function.
		regionCount := make(map[string]int)
		coveredCount := make(map[string]int)

		for _, r := range fn.Regions {
			if r.FileID < 0 || r.FileID >= len(fn.Filenames) {
				diags = append(diags, model.Diagnostic{
					Code:   model.DiagMissingFile,
					Detail: fmt.Sprintf("function %q: region file index %d out of range", fn.Name, r.FileID),
				})
				continue
			}
			file := fn.Filenames[r.FileID]
			region := model.Region{
				StartLine: r.LineStart,
				StartCol:  r.ColStart,
				EndLine:   r.LineEnd,
				EndCol:    r.ColEnd,
				Count:     r.Count,
				Kind:      model.RegionKind(r.Kind),
			}
			attr.Regions[file] = append(attr.Regions[file], region)

			if region.Kind == model.KindCode {
				regionCount[file]++
				if region.Count > 0 {
					coveredCount[file]++
				}
			}
		}

		for _, file := range fn.Filenames {
			attr.Functions[file] = append(attr.Functions[file], model.FunctionSummary{
				Name:               demangle(fn.Name),
				Filename:           file,
				ExecutionCount:     fn.Count,
				RegionCount:        regionCount[file],
				CoveredRegionCount: coveredCount[file],
			})
		}
	}

	for file := range attr.Regions {
		sortRegions(attr.Regions[file])
	}
	for file := range attr.Functions {
		fns := attr.Functions[file]
		sort.Slice(fns, func(i, j int) bool { return fns[i].Name < fns[j].Name })
	}

	return attr, diags
}

// BuildFile resolves one file's segments and produces its complete
// coverage record. A broken segment stream is recovered by keeping
// the file present but not-instrumented, so directory rollups stay
// consistent with the processed file count.
func BuildFile(rec export.FileRecord, regions []model.Region, funcs []model.FunctionSummary) (model.FileCoverage, []model.Diagnostic) {
	var diags []model.Diagnostic

	verdicts, err := resolve.Lines(rec.Filename, rec.Segments, regions)
	if err != nil {
		diags = append(diags, model.Diagnostic{
			Code:   model.DiagSegmentOrder,
			Path:   rec.Filename,
			Detail: err.Error(),
		})
		// Keep the file, lose its counts: known lines come from
		// region spans only.
		verdicts, _ = resolve.Lines(rec.Filename, nil, regions)
		return model.FileCoverage{
			Path:         rec.Filename,
			LineVerdicts: verdicts,
			Regions:      regions,
			Functions:    funcs,
		}, diags
	}

	fc := model.FileCoverage{
		Path:         rec.Filename,
		LineVerdicts: verdicts,
		Regions:      regions,
		Functions:    funcs,
		Summary:      summarize(verdicts, regions, funcs, rec.Branches),
	}

	if d, ok := crossValidate(rec, fc.Summary); !ok {
		diags = append(diags, d)
	}

	return fc, diags
}

// summarize recomputes the file summary from resolved data.
func summarize(verdicts map[int]model.LineVerdict, regions []model.Region, funcs []model.FunctionSummary, branches []export.Branch) model.Summary {
	var s model.Summary

	for _, v := range verdicts {
		if v.Status == model.NotInstrumented {
			continue
		}
		s.LinesTotal++
		if v.Status == model.Covered {
			s.LinesCovered++
		}
	}

	// Region coverage counts code regions only: gap regions are
	// synthetic and expansions are already folded into line tallies.
	for _, r := range regions {
		if r.Kind != model.KindCode {
			continue
		}
		s.RegionsTotal++
		if r.Count > 0 {
			s.RegionsCovered++
		}
	}

	for _, fn := range funcs {
		s.FunctionsTotal++
		if fn.ExecutionCount > 0 {
			s.FunctionsCovered++
		}
	}

	// Each branch carries two outcomes (taken / not taken).
	for _, b := range branches {
		s.BranchesTotal += 2
		if b.Count > 0 {
			s.BranchesCovered++
		}
		if b.FalseCount > 0 {
			s.BranchesCovered++
		}
	}

	return s
}

// crossValidate compares the recomputed summary against the
// payload's precomputed block. Recomputed totals are authoritative;
// a mismatch only produces a diagnostic.
func crossValidate(rec export.FileRecord, got model.Summary) (model.Diagnostic, bool) {
	want := rec.Summary
	type check struct {
		name                   string
		wantCovered, wantTotal uint64
		gotCovered, gotTotal   uint64
	}
	checks := []check{
		{"lines", want.Lines.Covered, want.Lines.Count, got.LinesCovered, got.LinesTotal},
		{"regions", want.Regions.Covered, want.Regions.Count, got.RegionsCovered, got.RegionsTotal},
		{"functions", want.Functions.Covered, want.Functions.Count, got.FunctionsCovered, got.FunctionsTotal},
	}
	for _, c := range checks {
		// A zeroed block means the exporter did not precompute this
		// ratio; nothing to check against.
		if c.wantTotal == 0 && c.wantCovered == 0 {
			continue
		}
		if c.wantCovered != c.gotCovered || c.wantTotal != c.gotTotal {
			return model.Diagnostic{
				Code: model.DiagSummaryMismatch,
				Path: rec.Filename,
				Detail: fmt.Sprintf("%s: payload claims %d/%d, recomputed %d/%d",
					c.name, c.wantCovered, c.wantTotal, c.gotCovered, c.gotTotal),
			}, false
		}
	}
	return model.Diagnostic{}, true
}

// unknownFile returns the first filename the function references
// that is not in the known set.
func unknownFile(fn export.FunctionRecord, known map[string]bool) (string, bool) {
	for _, f := range fn.Filenames {
		if !known[f] {
			return f, true
		}
	}
	return "", false
}

func sortRegions(regions []model.Region) {
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].StartLine != regions[j].StartLine {
			return regions[i].StartLine < regions[j].StartLine
		}
		return regions[i].StartCol < regions[j].StartCol
	})
}
