// Package resolve converts one file's ordered coverage segment
// stream into per-line verdicts.
//
// The segment stream is a run-length-encoded state machine over
// source positions: each segment's state (count, gap-ness) is in
// force from its own (line, column) up to, but not including, the
// next segment's position. Resolution is a single forward pass with
// current-state tracking; it never recurses into region nesting.
package resolve

import (
	"fmt"

	"github.com/unbound-force/covtree/internal/export"
	"github.com/unbound-force/covtree/internal/model"
)

// SegmentOrderError reports an unsorted or self-contradictory
// segment stream. Fatal for the file only: the engine recovers by
// marking the whole file not-instrumented and continues.
type SegmentOrderError struct {
	// Filename is the file whose stream is broken.
	Filename string

	// Index is the position of the out-of-order segment.
	Index int
}

func (e *SegmentOrderError) Error() string {
	return fmt.Sprintf("%s: segment %d out of (line, column) order",
		e.Filename, e.Index)
}

// Lines resolves a file's segment stream and attributed regions into
// a per-line verdict map. Regions must already be attributed to this
// file (see aggregate); expansion regions in the list are same-file
// or cross-file call sites and contribute their count at the
// call-site line. The result is deterministic and the inputs are not
// mutated, so files can be resolved in parallel.
func Lines(filename string, segs []export.Segment, regions []model.Region) (map[int]model.LineVerdict, error) {
	if len(segs) == 0 {
		return linesFromSpans(regions), nil
	}

	ordered, err := normalize(filename, segs)
	if err != nil {
		return nil, err
	}

	verdicts := make(map[int]model.LineVerdict)
	first := ordered[0].Line
	last := ordered[len(ordered)-1].Line

	// idx points at the first segment with Line >= current line.
	idx := 0
	for line := first; line <= last; line++ {
		for idx < len(ordered) && ordered[idx].Line < line {
			idx++
		}

		states := applicableStates(ordered, idx, line)
		verdicts[line] = verdictFor(line, states, regions)
	}

	return verdicts, nil
}

// applicableStates collects the segment states whose effective range
// includes at least one column of the given line: the wrapped state
// entering the line (if it reaches past column 1) plus every segment
// starting on the line. idx is the index of the first segment with
// Line >= line.
func applicableStates(ordered []export.Segment, idx, line int) []export.Segment {
	var states []export.Segment

	if idx > 0 && ordered[idx-1].Line < line {
		// The wrapped state covers nothing on this line only when
		// the next segment supersedes it at the very first column.
		covers := idx >= len(ordered) ||
			ordered[idx].Line > line || ordered[idx].Col > 1
		if covers {
			states = append(states, ordered[idx-1])
		}
	}

	for j := idx; j < len(ordered) && ordered[j].Line == line; j++ {
		states = append(states, ordered[j])
	}
	return states
}

// verdictFor derives one line's verdict from its applicable segment
// states and the file's region list.
func verdictFor(line int, states []export.Segment, regions []model.Region) model.LineVerdict {
	var counts []uint64

	for _, s := range states {
		// Gap regions are synthetic (closing braces and the like):
		// they never downgrade a covered line and never count as
		// uncovered on their own, so they contribute nothing here.
		if !s.HasCount || s.IsGapRegion {
			continue
		}
		counts = append(counts, s.Count)
	}

	// Same-file expansions fold into the tally at the call-site line.
	for _, r := range regions {
		if r.Kind == model.KindExpansion && r.StartLine == line {
			counts = append(counts, r.Count)
		}
	}

	if len(counts) == 0 {
		// No real instrumented state: only a touching code region can
		// still make the line count.
		for _, r := range regions {
			if r.Kind == model.KindCode && r.TouchesLine(line) {
				counts = append(counts, r.Count)
			}
		}
	}

	if len(counts) == 0 {
		// Gap-only lines land here too: excluded from both tallies.
		return model.LineVerdict{Status: model.NotInstrumented}
	}

	min, max := counts[0], counts[0]
	for _, c := range counts[1:] {
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}

	status := model.NotCovered
	if max > 0 {
		// Any execution counts as line-covered; a zero-count region
		// alongside it is reported as Mixed at the region level only.
		status = model.Covered
	}
	return model.LineVerdict{Status: status, MinCount: min, MaxCount: max}
}

// normalize verifies (line, column) ascending order and collapses
// segments sharing a position to the last one in document order
// (last-write-wins, since segments are a total order by construction).
func normalize(filename string, segs []export.Segment) ([]export.Segment, error) {
	out := make([]export.Segment, 0, len(segs))
	for i, s := range segs {
		if len(out) == 0 {
			out = append(out, s)
			continue
		}
		prev := out[len(out)-1]
		switch {
		case s.Line > prev.Line || (s.Line == prev.Line && s.Col > prev.Col):
			out = append(out, s)
		case s.Line == prev.Line && s.Col == prev.Col:
			out[len(out)-1] = s
		default:
			return nil, &SegmentOrderError{Filename: filename, Index: i}
		}
	}
	return out, nil
}

// linesFromSpans marks every line any region span touches as
// not-instrumented. Used when a file carries no segments at all: the
// engine has no count data, so the only known lines come from spans.
func linesFromSpans(regions []model.Region) map[int]model.LineVerdict {
	verdicts := make(map[int]model.LineVerdict)
	for _, r := range regions {
		for line := r.StartLine; line <= r.EndLine; line++ {
			verdicts[line] = model.LineVerdict{Status: model.NotInstrumented}
		}
	}
	return verdicts
}
