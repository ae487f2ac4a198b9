// Package export deserializes llvm-cov style JSON coverage export
// payloads into typed records. It validates structural shape against
// an embedded JSON Schema and gates on the export format version;
// it does not interpret segments.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// ExportType is the top-level "type" discriminator the payload must
// carry.
const ExportType = "llvm.coverage.json.export"

// SupportedMajor is the export schema major version this engine
// understands.
const SupportedMajor = "v2"

// SchemaError reports a malformed payload: a required top-level field
// is absent or of the wrong shape. Fatal; no report is produced.
type SchemaError struct {
	// Path locates the offending field (JSON pointer-ish).
	Path string

	// Detail describes what was wrong at Path.
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export schema: %s", e.Detail)
	}
	return fmt.Sprintf("export schema: %s: %s", e.Path, e.Detail)
}

// VersionError reports an export-format version this engine does not
// understand. Fatal.
type VersionError struct {
	Version string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported export version %q (want major %s)",
		e.Version, strings.TrimPrefix(SupportedMajor, "v"))
}

// Payload is one complete coverage export document.
type Payload struct {
	// Type is the export discriminator ("llvm.coverage.json.export").
	Type string `json:"type"`

	// Version is the semantic version of the export schema.
	Version string `json:"version"`

	// Data holds the export groups. Exports from a single run carry
	// one group; merged exports may carry several.
	Data []Mapping `json:"data"`
}

// Mapping is one export group: files, functions, and the group's own
// precomputed totals (cross-validation only, never the source of
// truth).
type Mapping struct {
	Files     []FileRecord     `json:"files"`
	Functions []FunctionRecord `json:"functions"`
	Totals    SummaryBlock     `json:"totals"`
}

// FileRecord is the raw per-file entry: an ordered segment stream
// plus branch and expansion records and the payload's precomputed
// summary for the file.
type FileRecord struct {
	Filename   string       `json:"filename"`
	Segments   []Segment    `json:"segments"`
	Branches   []Branch     `json:"branches"`
	Expansions []Expansion  `json:"expansions"`
	Summary    SummaryBlock `json:"summary"`
}

// Segment is a coverage state-change marker, encoded on the wire as
// the 6-tuple [line, col, count, hasCount, isRegionEntry,
// isGapRegion]. The segment's state is in force from its position up
// to (but not including) the next segment's position.
type Segment struct {
	Line          int
	Col           int
	Count         uint64
	HasCount      bool
	IsRegionEntry bool
	IsGapRegion   bool
}

// UnmarshalJSON decodes the 6-tuple wire form.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 6 {
		return fmt.Errorf("segment: want 6 elements, got %d", len(raw))
	}
	if err := unmarshalAll(raw[:3], &s.Line, &s.Col, &s.Count); err != nil {
		return fmt.Errorf("segment: %w", err)
	}
	if err := unmarshalAll(raw[3:], &s.HasCount, &s.IsRegionEntry, &s.IsGapRegion); err != nil {
		return fmt.Errorf("segment: %w", err)
	}
	return nil
}

// Region is a function-attributed source span, encoded as the
// 8-tuple [lineStart, colStart, lineEnd, colEnd, count, fileID,
// expandedFileID, kind]. FileID and ExpandedFileID index into the
// owning function's Filenames list.
type Region struct {
	LineStart      int
	ColStart       int
	LineEnd        int
	ColEnd         int
	Count          uint64
	FileID         int
	ExpandedFileID int
	Kind           int
}

// UnmarshalJSON decodes the 8-tuple wire form.
func (r *Region) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 8 {
		return fmt.Errorf("region: want 8 elements, got %d", len(raw))
	}
	if err := unmarshalAll(raw,
		&r.LineStart, &r.ColStart, &r.LineEnd, &r.ColEnd,
		&r.Count, &r.FileID, &r.ExpandedFileID, &r.Kind); err != nil {
		return fmt.Errorf("region: %w", err)
	}
	return nil
}

// Branch is a branch outcome record, encoded as the 9-tuple
// [lineStart, colStart, lineEnd, colEnd, count, falseCount, fileID,
// expandedFileID, kind]. Count and FalseCount are the taken /
// not-taken execution counts.
type Branch struct {
	LineStart      int
	ColStart       int
	LineEnd        int
	ColEnd         int
	Count          uint64
	FalseCount     uint64
	FileID         int
	ExpandedFileID int
	Kind           int
}

// UnmarshalJSON decodes the 9-tuple wire form.
func (b *Branch) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 9 {
		return fmt.Errorf("branch: want 9 elements, got %d", len(raw))
	}
	if err := unmarshalAll(raw,
		&b.LineStart, &b.ColStart, &b.LineEnd, &b.ColEnd,
		&b.Count, &b.FalseCount, &b.FileID, &b.ExpandedFileID, &b.Kind); err != nil {
		return fmt.Errorf("branch: %w", err)
	}
	return nil
}

// Expansion is the per-file expansion record. Only the filename list
// is needed for attribution; the paired region data rides along on
// the owning function's region list.
type Expansion struct {
	Filenames []string `json:"filenames"`
}

// FunctionRecord is one instrumented function: entry count, the
// regions it contributes, and the files those regions live in.
type FunctionRecord struct {
	Name      string   `json:"name"`
	Count     uint64   `json:"count"`
	Regions   []Region `json:"regions"`
	Filenames []string `json:"filenames"`
}

// Counts is one precomputed ratio block from the payload.
type Counts struct {
	Count      uint64  `json:"count"`
	Covered    uint64  `json:"covered"`
	NotCovered *uint64 `json:"notcovered,omitempty"`
	Percent    float64 `json:"percent"`
}

// SummaryBlock is the payload's precomputed totals for one file or
// one export group. Used for cross-validation only; the resolver
// recomputes all totals independently.
type SummaryBlock struct {
	Lines          Counts `json:"lines"`
	Functions      Counts `json:"functions"`
	Instantiations Counts `json:"instantiations"`
	Regions        Counts `json:"regions"`
	Branches       Counts `json:"branches"`
}

// Load parses and validates a raw export payload. It returns a
// *SchemaError for structural problems and a *VersionError for
// unsupported export versions; segments are not interpreted here.
func Load(data []byte) (*Payload, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, &SchemaError{Detail: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if err := compiledSchema().Validate(inst); err != nil {
		return nil, schemaErrorFrom(err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		// The schema pass accepts anything object-shaped that the
		// typed decode might still reject (e.g. counts too large for
		// uint64). Keep the field context from encoding/json.
		return nil, &SchemaError{Detail: err.Error()}
	}

	if p.Type != ExportType {
		return nil, &SchemaError{Path: "/type",
			Detail: fmt.Sprintf("want %q, got %q", ExportType, p.Type)}
	}

	if !semver.IsValid("v"+p.Version) || semver.Major("v"+p.Version) != SupportedMajor {
		return nil, &VersionError{Version: p.Version}
	}

	return &p, nil
}

// schemaErrorFrom converts a jsonschema validation failure into a
// SchemaError carrying the offending instance path.
func schemaErrorFrom(err error) *SchemaError {
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		// Walk to the deepest cause for the most specific location.
		deepest := ve
		for len(deepest.Causes) > 0 {
			deepest = deepest.Causes[0]
		}
		return &SchemaError{
			Path:   "/" + strings.Join(deepest.InstanceLocation, "/"),
			Detail: deepest.Error(),
		}
	}
	return &SchemaError{Detail: err.Error()}
}

// unmarshalAll decodes each raw element into the corresponding
// destination pointer.
func unmarshalAll(raw []json.RawMessage, dests ...interface{}) error {
	if len(raw) != len(dests) {
		return fmt.Errorf("want %d elements, got %d", len(dests), len(raw))
	}
	for i, r := range raw {
		if err := json.Unmarshal(r, dests[i]); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}
