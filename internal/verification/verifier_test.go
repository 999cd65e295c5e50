package verification

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"ufc-data-lab/internal/config"
	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/pipeline"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.RawDataDir = filepath.Join("..", "pipeline", "testdata")
	cfg.ProcessedDataDir = t.TempDir()
	cfg.FightsFile = "fights.csv"
	cfg.RankingsFile = "rankings.csv"
	cfg.RelevantStats = []string{"strikes_landed"}
	cfg.LookbackWindow = 2
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return cfg
}

func testFactory(cfg *config.Config) *pipeline.DatasetBuilder {
	logger, _ := test.NewNullLogger()
	return pipeline.NewDatasetBuilder(cfg, logger)
}

func buildRecords(t *testing.T, cfg *config.Config) *pipeline.DatasetBuilder {
	t.Helper()
	b := testFactory(cfg)
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("build: %v", err)
	}
	return b
}

func ptrFloat64(v float64) *float64 {
	return &v
}

func TestVerifyRecords_BuilderOutputMatches(t *testing.T) {
	cfg := testConfig(t)
	b := buildRecords(t, cfg)

	report := VerifyRecords(b.Records(), b.Rankings(), cfg.RelevantStats, cfg.LookbackWindow)

	if report.TotalRecords != 5 {
		t.Errorf("expected 5 records, got %d", report.TotalRecords)
	}
	if !report.OK() {
		for _, r := range report.Results {
			for _, d := range r.Divergences {
				t.Errorf("row %d %s: expected %v, got %v", r.Row, d.Field, d.Expected, d.Actual)
			}
		}
	}
	if report.MatchedRecords != 5 {
		t.Errorf("expected 5 matched records, got %d", report.MatchedRecords)
	}
}

func TestVerifyRecords_DetectsTamperedRolling(t *testing.T) {
	cfg := testConfig(t)
	b := buildRecords(t, cfg)
	records := b.Records()

	// Row 3 is C vs B; B's rolling mean is 6.5.
	records[3].RollingB[0] = ptrFloat64(6.5 + 1e-6)

	report := VerifyRecords(records, b.Rankings(), cfg.RelevantStats, cfg.LookbackWindow)

	if report.DivergentRecords != 1 {
		t.Fatalf("expected 1 divergent record, got %d", report.DivergentRecords)
	}
	result := report.Results[3]
	if result.Match {
		t.Fatal("expected row 3 to diverge")
	}
	if len(result.Divergences) != 1 {
		t.Fatalf("expected 1 divergence, got %d", len(result.Divergences))
	}
	d := result.Divergences[0]
	if d.Field != "fighter_b_rolling_strikes_landed" {
		t.Errorf("expected fighter_b_rolling_strikes_landed, got %s", d.Field)
	}
	if d.Expected != 6.5 {
		t.Errorf("expected recomputed 6.5, got %v", d.Expected)
	}
}

func TestVerifyRecords_WithinTolerance(t *testing.T) {
	cfg := testConfig(t)
	b := buildRecords(t, cfg)
	records := b.Records()

	records[3].RollingB[0] = ptrFloat64(6.5 + 1e-12)

	report := VerifyRecords(records, b.Rankings(), cfg.RelevantStats, cfg.LookbackWindow)
	if !report.OK() {
		t.Errorf("expected no divergences within tolerance, got %d", report.DivergentRecords)
	}
}

func TestVerifyRecords_DetectsTamperedRank(t *testing.T) {
	cfg := testConfig(t)
	b := buildRecords(t, cfg)
	records := b.Records()

	records[0].RankA = nil

	report := VerifyRecords(records, b.Rankings(), cfg.RelevantStats, cfg.LookbackWindow)
	result := report.Results[0]
	if result.Match {
		t.Fatal("expected row 0 to diverge")
	}
	d := result.Divergences[0]
	if d.Field != "fighter_a_rank" || d.Expected != "5" || d.Actual != nil {
		t.Errorf("unexpected divergence: %+v", d)
	}
}

func TestVerifyRecords_NullVsValue(t *testing.T) {
	cfg := testConfig(t)
	b := buildRecords(t, cfg)
	records := b.Records()

	// A's first fight has no history.
	records[0].RollingA[0] = ptrFloat64(0)

	report := VerifyRecords(records, b.Rankings(), cfg.RelevantStats, cfg.LookbackWindow)
	result := report.Results[0]
	if result.Match {
		t.Fatal("expected row 0 to diverge")
	}
	if result.Divergences[0].Expected != nil {
		t.Errorf("expected nil recomputed value, got %v", result.Divergences[0].Expected)
	}
}

func TestVerifyRecords_CrucialFields(t *testing.T) {
	date := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []*domain.ProcessedRecord{{
		Fight: &domain.FightRecord{
			FightID:     "id1",
			Date:        date,
			FighterA:    "A",
			FighterB:    "A",
			WeightClass: domain.WeightClass("lightweight"),
			StatsA:      []*float64{nil},
			StatsB:      []*float64{nil},
		},
		RollingA: []*float64{nil},
		RollingB: []*float64{nil},
	}}

	report := VerifyRecords(records, nil, []string{"strikes_landed"}, 3)

	fields := make(map[string]bool)
	for _, d := range report.Results[0].Divergences {
		fields[d.Field] = true
	}
	if !fields[domain.ColumnFighterB] {
		t.Error("expected self-match divergence on fighter_b_id")
	}
	if !fields[domain.ColumnWinner] {
		t.Error("expected empty winner divergence")
	}
}

func TestVerifyRecords_Order(t *testing.T) {
	cfg := testConfig(t)
	b := buildRecords(t, cfg)
	records := b.Records()

	swapped := append([]*domain.ProcessedRecord(nil), records...)
	swapped[0], swapped[4] = swapped[4], swapped[0]

	report := VerifyRecords(swapped, b.Rankings(), cfg.RelevantStats, cfg.LookbackWindow)
	found := false
	for _, d := range report.Results[1].Divergences {
		if d.Field == domain.ColumnDate {
			found = true
		}
	}
	if !found {
		t.Error("expected an ordering divergence on row 1")
	}
}

func TestVerifyIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	buildRecords(t, cfg)
	processedDir := cfg.ProcessedDataDir

	result, err := VerifyIdempotent(ctx, cfg, testFactory, cfg.OutputPath())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !result.Match {
		t.Errorf("expected hashes to match: %s vs %s", result.ExistingSHA256, result.RebuiltSHA256)
	}
	if len(result.Records) != 5 {
		t.Errorf("expected 5 rebuilt records, got %d", len(result.Records))
	}
	if cfg.ProcessedDataDir != processedDir {
		t.Errorf("config was modified: %s", cfg.ProcessedDataDir)
	}

	report := VerifyRecords(result.Records, result.Rankings, cfg.RelevantStats, cfg.LookbackWindow)
	if !report.OK() {
		t.Errorf("expected rebuilt records to verify, got %d divergent", report.DivergentRecords)
	}
}

func TestVerifyIdempotent_DetectsModifiedFile(t *testing.T) {
	cfg := testConfig(t)
	buildRecords(t, cfg)

	f, err := os.OpenFile(cfg.OutputPath(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	if _, err := f.WriteString("2099-01-01,X,Y,lightweight,draw,1,1,UFC 99,,,,\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = f.Close()

	result, err := VerifyIdempotent(context.Background(), cfg, testFactory, cfg.OutputPath())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Match {
		t.Error("expected hash mismatch for modified file")
	}
}

func TestVerifyIdempotent_MissingOutput(t *testing.T) {
	cfg := testConfig(t)

	if _, err := VerifyIdempotent(context.Background(), cfg, testFactory, cfg.OutputPath()); err == nil {
		t.Error("expected error for missing output")
	}
}

func TestFloatPtrEquals(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *float64
		expected bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs value", nil, ptrFloat64(1), false},
		{"exact", ptrFloat64(1.5), ptrFloat64(1.5), true},
		{"within tolerance", ptrFloat64(1.5), ptrFloat64(1.5 + 1e-10), true},
		{"outside tolerance", ptrFloat64(1.5), ptrFloat64(1.5 + 1e-8), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := floatPtrEquals(tt.a, tt.b); got != tt.expected {
				t.Errorf("floatPtrEquals = %v, expected %v", got, tt.expected)
			}
		})
	}
}
