package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unbound-force/covtree/internal/config"
	"github.com/unbound-force/covtree/internal/engine"
	"github.com/unbound-force/covtree/internal/model"
	"github.com/unbound-force/covtree/internal/tier"
)

func treeReport(t *testing.T) *engine.Report {
	t.Helper()
	files := []model.FileCoverage{
		{Path: "/src/a/x.c", Summary: model.Summary{LinesCovered: 3, LinesTotal: 4}},
		{Path: "/src/y.c", Summary: model.Summary{LinesCovered: 0, LinesTotal: 2}},
	}
	cfg := config.Default()
	cfg.SourceRoot = "/src"
	rpt, err := engine.FromFiles(files, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return rpt
}

func TestRenderTreeContent(t *testing.T) {
	out := renderTreeContent(treeReport(t), tier.Default)

	for _, want := range []string{"2 file(s)", "x.c", "y.c", "a/", "50.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("content missing %q", want)
		}
	}
	if strings.Contains(out, "diagnostic") {
		t.Error("clean report should not render a diagnostics block")
	}
}

func TestRenderTreeContent_Diagnostics(t *testing.T) {
	rpt := treeReport(t)
	rpt.Diagnostics = []model.Diagnostic{{
		Code:   model.DiagSegmentOrder,
		Path:   "/src/y.c",
		Detail: "segment 3 out of order",
	}}

	out := renderTreeContent(rpt, tier.Default)
	if !strings.Contains(out, "1 diagnostic(s):") {
		t.Error("missing diagnostics block")
	}
	if !strings.Contains(out, "segment 3 out of order") {
		t.Error("missing diagnostic detail")
	}
}

func TestPercent(t *testing.T) {
	if got := percent(0, 0); got != "-" {
		t.Errorf("percent(0,0) = %q, want -", got)
	}
	if got := percent(1, 2); got != "50.0%" {
		t.Errorf("percent(1,2) = %q", got)
	}
}

func TestTreeModel_QuitKey(t *testing.T) {
	m := newTreeModel(treeReport(t), tier.Default)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should produce a command")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("q produced %T, want tea.QuitMsg", msg)
	}
}

func TestTreeModel_SizesViewport(t *testing.T) {
	m := newTreeModel(treeReport(t), tier.Default)
	if m.ready {
		t.Fatal("model should not be ready before the first size message")
	}

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	tm := updated.(treeModel)
	if !tm.ready {
		t.Fatal("model should be ready after a size message")
	}
	if !strings.Contains(tm.View(), "x.c") {
		t.Error("view missing tree content")
	}
}
