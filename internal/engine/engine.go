// Package engine runs the full coverage pipeline: it fans per-file
// segment resolution out across a worker pool, fans the results back
// in, and hands the complete set to the tree builder. The whole
// engine is a pure function from (payload, config) to (tree,
// diagnostics); there is no shared mutable state.
package engine

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/unbound-force/covtree/internal/aggregate"
	"github.com/unbound-force/covtree/internal/config"
	"github.com/unbound-force/covtree/internal/covtree"
	"github.com/unbound-force/covtree/internal/export"
	"github.com/unbound-force/covtree/internal/model"
)

// Report is the resolved output model handed to renderers: the
// directory tree, the report-root totals, and every recovered error.
type Report struct {
	// Root is the directory tree. Child ordering is deterministic
	// regardless of worker scheduling; the tree builder reimposes it.
	Root *covtree.Node `json:"root"`

	// Totals is the report-root summary (sum of all files).
	Totals model.Summary `json:"totals"`

	// Diagnostics lists recovered errors in file order. Fatal errors
	// abort Build instead.
	Diagnostics []model.Diagnostic `json:"diagnostics,omitempty"`
}

// Options configures a Build beyond the core config.
type Options struct {
	// Demangler rewrites function symbols for display. Nil keeps raw
	// names.
	Demangler func(string) string
}

// Build resolves every file in the payload and assembles the report
// tree. Structural errors were already rejected by export.Load;
// everything that can go wrong per file is recovered into
// diagnostics so one malformed file never loses the rest.
func Build(payload *export.Payload, cfg config.Config, opts Options) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var (
		files []model.FileCoverage
		diags []model.Diagnostic
	)

	for _, mapping := range payload.Data {
		groupFiles, groupDiags := buildGroup(mapping, cfg, opts)
		files = append(files, groupFiles...)
		diags = append(diags, groupDiags...)
	}

	root, treeDiags := covtree.Build(files, cfg.SourceRoot)
	diags = append(diags, treeDiags...)

	return &Report{
		Root:        root,
		Totals:      root.Summary,
		Diagnostics: diags,
	}, nil
}

// FromFiles assembles a report from already-resolved file records
// (e.g. the Go cover profile importer). Same tree and rollup path as
// Build.
func FromFiles(files []model.FileCoverage, cfg config.Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	root, diags := covtree.Build(files, cfg.SourceRoot)
	return &Report{
		Root:        root,
		Totals:      root.Summary,
		Diagnostics: diags,
	}, nil
}

// fileResult carries one worker's output back to its input slot, so
// fan-in order matches file order no matter how workers interleave.
type fileResult struct {
	fc    model.FileCoverage
	diags []model.Diagnostic
	skip  bool
}

// buildGroup resolves one export group.
func buildGroup(mapping export.Mapping, cfg config.Config, opts Options) ([]model.FileCoverage, []model.Diagnostic) {
	known := make(map[string]bool, len(mapping.Files))
	for _, f := range mapping.Files {
		known[f.Filename] = true
	}

	attr, diags := aggregate.Attribute(mapping.Functions, known, aggregate.Options{
		Demangler: opts.Demangler,
	})

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]fileResult, len(mapping.Files))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, rec := range mapping.Files {
		g.Go(func() error {
			if cfg.PathFilter != "" && !strings.HasPrefix(rec.Filename, cfg.PathFilter) {
				results[i] = fileResult{
					skip: true,
					diags: []model.Diagnostic{{
						Code:   model.DiagPathFiltered,
						Path:   rec.Filename,
						Detail: fmt.Sprintf("outside path filter %q", cfg.PathFilter),
					}},
				}
				return nil
			}
			fc, fileDiags := aggregate.BuildFile(rec, attr.Regions[rec.Filename], attr.Functions[rec.Filename])
			results[i] = fileResult{fc: fc, diags: fileDiags}
			return nil
		})
	}
	// Workers never return errors: per-file failures are diagnostics.
	_ = g.Wait()

	files := make([]model.FileCoverage, 0, len(results))
	for _, r := range results {
		diags = append(diags, r.diags...)
		if !r.skip {
			files = append(files, r.fc)
		}
	}
	return files, diags
}
