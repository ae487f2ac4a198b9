// Package model defines the resolved coverage data model shared by
// the loader, resolver, aggregator, and tree builder: line verdicts,
// regions, per-file summaries, and diagnostics.
package model

import "fmt"

// LineStatus is the coverage verdict for a single source line.
type LineStatus string

// Line status constants.
const (
	// Covered means at least one non-gap instrumented state on the
	// line executed.
	Covered LineStatus = "covered"

	// NotCovered means every non-gap instrumented state on the line
	// has an execution count of zero.
	NotCovered LineStatus = "not_covered"

	// NotInstrumented means no segment or region carries count data
	// for the line. Distinct from NotCovered: the line holds no
	// executable code as far as the instrumentation knows.
	NotInstrumented LineStatus = "not_instrumented"

	// Mixed is a region-level refinement: the line executed, but at
	// least one region on it did not. Line verdicts themselves report
	// Covered in that case; Mixed is surfaced via
	// LineVerdict.FineStatus for renderers that want the split.
	Mixed LineStatus = "mixed"
)

// LineVerdict is the resolved coverage verdict for one source line.
type LineVerdict struct {
	// Status is the line-level verdict. Never Mixed: any execution
	// counts as line-covered.
	Status LineStatus `json:"status"`

	// MaxCount is the largest execution count observed on the line.
	MaxCount uint64 `json:"max_count"`

	// MinCount is the smallest execution count observed on the line.
	// A line can be touched by several regions (e.g. two statements),
	// so MinCount < MaxCount is possible.
	MinCount uint64 `json:"min_count"`
}

// FineStatus returns the region-level verdict for the line: Mixed
// when the line executed but some region on it did not, otherwise
// the line status unchanged.
func (v LineVerdict) FineStatus() LineStatus {
	if v.Status == Covered && v.MinCount == 0 && v.MaxCount > 0 {
		return Mixed
	}
	return v.Status
}

// RegionKind classifies a sub-line coverage region.
type RegionKind int

// Region kinds, matching the export format's numeric encoding.
const (
	KindCode      RegionKind = 0
	KindExpansion RegionKind = 1
	KindSkipped   RegionKind = 2
	KindGap       RegionKind = 3
)

// String returns the human-readable kind name.
func (k RegionKind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindExpansion:
		return "expansion"
	case KindSkipped:
		return "skipped"
	case KindGap:
		return "gap"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Region is a sub-line source span carrying its own execution count.
// Expansion regions describe macro/inline call sites; their count is
// attributed to this span, never to the expanded body's own file.
type Region struct {
	StartLine int        `json:"start_line"`
	StartCol  int        `json:"start_col"`
	EndLine   int        `json:"end_line"`
	EndCol    int        `json:"end_col"`
	Count     uint64     `json:"count"`
	Kind      RegionKind `json:"kind"`
}

// TouchesLine reports whether the region span includes any column of
// the given line.
func (r Region) TouchesLine(line int) bool {
	return r.StartLine <= line && line <= r.EndLine
}

// FunctionSummary is the per-function coverage record for one file.
type FunctionSummary struct {
	// Name is the function symbol, passed through the configured
	// demangler.
	Name string `json:"name"`

	// Filename is the file the function is reported under.
	Filename string `json:"filename"`

	// ExecutionCount is the function entry count.
	ExecutionCount uint64 `json:"execution_count"`

	// RegionCount is the number of code regions the function
	// contributes to this file.
	RegionCount int `json:"region_count"`

	// CoveredRegionCount is the number of those regions that executed.
	CoveredRegionCount int `json:"covered_region_count"`
}

// Summary holds the independent coverage ratios for one file or one
// directory rollup. Line, region, function, and branch coverage are
// never conflated.
type Summary struct {
	LinesCovered     uint64 `json:"lines_covered"`
	LinesTotal       uint64 `json:"lines_total"`
	RegionsCovered   uint64 `json:"regions_covered"`
	RegionsTotal     uint64 `json:"regions_total"`
	FunctionsCovered uint64 `json:"functions_covered"`
	FunctionsTotal   uint64 `json:"functions_total"`
	BranchesCovered  uint64 `json:"branches_covered"`
	BranchesTotal    uint64 `json:"branches_total"`
}

// Add accumulates another summary element-wise. Directory rollups
// are exact integer sums of their children.
func (s *Summary) Add(other Summary) {
	s.LinesCovered += other.LinesCovered
	s.LinesTotal += other.LinesTotal
	s.RegionsCovered += other.RegionsCovered
	s.RegionsTotal += other.RegionsTotal
	s.FunctionsCovered += other.FunctionsCovered
	s.FunctionsTotal += other.FunctionsTotal
	s.BranchesCovered += other.BranchesCovered
	s.BranchesTotal += other.BranchesTotal
}

// LinePercent returns line coverage as a percentage, or 0 when the
// file has no instrumented lines.
func (s Summary) LinePercent() float64 {
	if s.LinesTotal == 0 {
		return 0
	}
	return 100.0 * float64(s.LinesCovered) / float64(s.LinesTotal)
}

// FileCoverage is the fully resolved coverage record for one file.
// Produced once per run and read-only afterward.
type FileCoverage struct {
	// Path is the file path as reported by the export payload.
	Path string `json:"path"`

	// LineVerdicts maps line number to resolved verdict. Lines the
	// instrumentation never touched have no entry or carry
	// NotInstrumented; they never count toward LinesTotal.
	LineVerdicts map[int]LineVerdict `json:"line_verdicts"`

	// Regions is the ordered (by start position) region list for the
	// file, retained for renderers that show sub-line detail.
	Regions []Region `json:"regions"`

	// Functions lists the per-function summaries attributed to this
	// file.
	Functions []FunctionSummary `json:"functions"`

	// Summary holds the recomputed coverage totals. The payload's own
	// precomputed totals are cross-checked against these but never
	// trusted as the source of truth.
	Summary Summary `json:"summary"`
}

// DiagnosticCode identifies a recovered (non-fatal) error category.
type DiagnosticCode string

// Diagnostic codes for recovered errors. Fatal errors (schema,
// version) abort the run and never appear here.
const (
	// DiagSegmentOrder: a file's segment stream was unsorted or
	// self-contradictory; the file was kept as not-instrumented.
	DiagSegmentOrder DiagnosticCode = "segment_order"

	// DiagMissingFile: a function record referenced a filename absent
	// from the files list; the function was dropped.
	DiagMissingFile DiagnosticCode = "missing_file"

	// DiagExternalPath: a file path could not be related to the
	// source root and was bucketed under the synthetic external root.
	DiagExternalPath DiagnosticCode = "external_path"

	// DiagSummaryMismatch: the payload's precomputed per-file totals
	// disagree with the recomputed ones; the recomputed totals win.
	DiagSummaryMismatch DiagnosticCode = "summary_mismatch"

	// DiagPathFiltered: a file was excluded by the configured path
	// filter prefix.
	DiagPathFiltered DiagnosticCode = "path_filtered"
)

// Diagnostic records one recovered error. All recovered errors are
// collected and returned alongside the tree, never silently
// swallowed.
type Diagnostic struct {
	Code   DiagnosticCode `json:"code"`
	Path   string         `json:"path,omitempty"`
	Detail string         `json:"detail"`
}

// String renders the diagnostic for log output.
func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", d.Code, d.Path, d.Detail)
}
