// Package goprofile imports native Go coverage profiles (go test
// -coverprofile) into the same resolved file model the segment
// engine produces, so Go coverage flows through the identical tree,
// rollup, and report path.
package goprofile

import (
	"fmt"

	"golang.org/x/tools/cover"

	"github.com/unbound-force/covtree/internal/model"
)

// Parse reads a Go coverage profile and converts each file's blocks
// into line verdicts and code regions. Go profiles carry no function
// records, so FunctionsTotal stays zero for every file.
func Parse(profilePath string) ([]model.FileCoverage, error) {
	profiles, err := cover.ParseProfiles(profilePath)
	if err != nil {
		return nil, fmt.Errorf("parsing cover profile: %w", err)
	}

	files := make([]model.FileCoverage, 0, len(profiles))
	for _, p := range profiles {
		files = append(files, fromProfile(p))
	}
	return files, nil
}

// fromProfile converts one profile. A profile block is a region that
// already knows its execution count, so no segment walk is needed;
// lines covered by several blocks keep min/max counts like the
// segment resolver does.
func fromProfile(p *cover.Profile) model.FileCoverage {
	verdicts := make(map[int]model.LineVerdict)
	regions := make([]model.Region, 0, len(p.Blocks))
	var s model.Summary

	for _, b := range p.Blocks {
		count := uint64(b.Count)
		regions = append(regions, model.Region{
			StartLine: b.StartLine,
			StartCol:  b.StartCol,
			EndLine:   b.EndLine,
			EndCol:    b.EndCol,
			Count:     count,
			Kind:      model.KindCode,
		})

		s.RegionsTotal++
		if count > 0 {
			s.RegionsCovered++
		}

		for line := b.StartLine; line <= b.EndLine; line++ {
			v, seen := verdicts[line]
			if !seen {
				v = model.LineVerdict{MinCount: count, MaxCount: count}
			} else {
				if count < v.MinCount {
					v.MinCount = count
				}
				if count > v.MaxCount {
					v.MaxCount = count
				}
			}
			v.Status = model.NotCovered
			if v.MaxCount > 0 {
				v.Status = model.Covered
			}
			verdicts[line] = v
		}
	}

	for _, v := range verdicts {
		s.LinesTotal++
		if v.Status == model.Covered {
			s.LinesCovered++
		}
	}

	return model.FileCoverage{
		Path:         p.FileName,
		LineVerdicts: verdicts,
		Regions:      regions,
		Summary:      s,
	}
}
