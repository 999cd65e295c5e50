// Package reporting renders the processed dataset and its build summary.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"ufc-data-lab/internal/domain"
)

// BuildSummary describes one dataset build.
type BuildSummary struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string

	// Inputs and outputs
	FightsPath   string
	RankingsPath string
	OutputPath   string
	OutputSHA256 string

	// Row counts
	FightsLoaded   int
	FightsKept     int
	RankingsLoaded int
	RankingsKept   int
	RowsWritten    int

	// Feature settings
	LookbackWindow int
	Stats          []string

	// Date range of kept fights, zero when empty
	FirstFight time.Time
	LastFight  time.Time

	// Warning counts (sorted by stage, kind)
	Warnings []domain.WarningCount

	// Split sizes, nil when the split is disabled
	Split *SplitSummary
}

// SplitSummary lists the train/test file sizes.
type SplitSummary struct {
	TrainPath string
	TestPath  string
	TrainRows int
	TestRows  int
	Seed      int64
}

// RenderSummaryMarkdown renders a build summary as Markdown.
func RenderSummaryMarkdown(s *BuildSummary) string {
	var sb strings.Builder

	sb.WriteString("# Dataset Build Summary\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", s.GeneratedAt.UTC().Format(time.RFC3339)))
	if s.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", s.RunID))
	}

	// Files
	sb.WriteString("## Files\n\n")
	sb.WriteString("| File | Path |\n")
	sb.WriteString("|------|------|\n")
	sb.WriteString(fmt.Sprintf("| Fights | %s |\n", s.FightsPath))
	sb.WriteString(fmt.Sprintf("| Rankings | %s |\n", s.RankingsPath))
	sb.WriteString(fmt.Sprintf("| Output | %s |\n", s.OutputPath))
	if s.OutputSHA256 != "" {
		sb.WriteString(fmt.Sprintf("| Output SHA-256 | `%s` |\n", s.OutputSHA256))
	}
	sb.WriteString("\n")

	// Rows
	sb.WriteString("## Rows\n\n")
	sb.WriteString("| Table | Loaded | Kept | Dropped |\n")
	sb.WriteString("|-------|--------|------|---------|\n")
	sb.WriteString(fmt.Sprintf("| fights | %d | %d | %d |\n", s.FightsLoaded, s.FightsKept, s.FightsLoaded-s.FightsKept))
	sb.WriteString(fmt.Sprintf("| rankings | %d | %d | %d |\n", s.RankingsLoaded, s.RankingsKept, s.RankingsLoaded-s.RankingsKept))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Rows written: %d\n\n", s.RowsWritten))
	if !s.FirstFight.IsZero() {
		sb.WriteString(fmt.Sprintf("Fight dates: %s to %s\n\n",
			s.FirstFight.Format(domain.DateLayout), s.LastFight.Format(domain.DateLayout)))
	}

	// Features
	sb.WriteString("## Features\n\n")
	sb.WriteString(fmt.Sprintf("Lookback window: %d\n\n", s.LookbackWindow))
	for _, stat := range s.Stats {
		sb.WriteString(fmt.Sprintf("- %s\n", stat))
	}
	if len(s.Stats) > 0 {
		sb.WriteString("\n")
	}

	// Warnings
	sb.WriteString("## Warnings\n\n")
	if len(s.Warnings) == 0 {
		sb.WriteString("No warnings.\n\n")
	} else {
		sb.WriteString("| Table | Kind | Count | Row Dropped |\n")
		sb.WriteString("|-------|------|-------|-------------|\n")
		for _, w := range s.Warnings {
			dropped := "no"
			if w.Kind.Drops() {
				dropped = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n", w.Stage, w.Kind, w.Count, dropped))
		}
		sb.WriteString("\n")
	}

	// Split
	if s.Split != nil {
		sb.WriteString("## Train/Test Split\n\n")
		sb.WriteString(fmt.Sprintf("Seed: %d\n\n", s.Split.Seed))
		sb.WriteString("| Part | Rows | Path |\n")
		sb.WriteString("|------|------|------|\n")
		sb.WriteString(fmt.Sprintf("| train | %d | %s |\n", s.Split.TrainRows, s.Split.TrainPath))
		sb.WriteString(fmt.Sprintf("| test | %d | %s |\n", s.Split.TestRows, s.Split.TestPath))
		sb.WriteString("\n")
	}

	return sb.String()
}
