package pipeline

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/reporting"
)

// ErrUnknownTarget is returned when the target column is not in the header.
var ErrUnknownTarget = errors.New("target column not in fights header")

// SplitTrainTest deterministically assigns round(n*testSize) records to the
// test part using a PCG source seeded with seed. Both parts keep the input
// order.
func SplitTrainTest(records []*domain.ProcessedRecord, testSize float64, seed int64) (train, test []*domain.ProcessedRecord) {
	n := len(records)
	nTest := int(math.Round(float64(n) * testSize))
	if nTest > n {
		nTest = n
	}
	if nTest < 0 {
		nTest = 0
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	perm := rng.Perm(n)
	inTest := make([]bool, n)
	for _, i := range perm[:nTest] {
		inTest[i] = true
	}

	train = make([]*domain.ProcessedRecord, 0, n-nTest)
	test = make([]*domain.ProcessedRecord, 0, nTest)
	for i, rec := range records {
		if inTest[i] {
			test = append(test, rec)
		} else {
			train = append(train, rec)
		}
	}
	return train, test
}

// FilterDecisive keeps records whose target cell is fighter_a or fighter_b.
func FilterDecisive(records []*domain.ProcessedRecord, columns []string, target string) ([]*domain.ProcessedRecord, error) {
	col := -1
	for i, c := range columns {
		if c == target {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}

	out := make([]*domain.ProcessedRecord, 0, len(records))
	for _, rec := range records {
		if col < len(rec.Fight.Values) && domain.Winner(rec.Fight.Values[col]).IsDecisive() {
			out = append(out, rec)
		}
	}
	return out, nil
}

// SplitPaths returns <output>_train.csv and <output>_test.csv beside output.
func SplitPaths(output string) (train, test string) {
	base := strings.TrimSuffix(output, filepath.Ext(output))
	return base + "_train.csv", base + "_test.csv"
}

// SaveSplit writes the train and test files for the processed records next
// to output, with the same columns as the main file.
func (b *DatasetBuilder) SaveSplit(output string) (*reporting.SplitSummary, error) {
	if b.stage < stageFeatures {
		return nil, fmt.Errorf("%w: split requires rolling features", ErrStageOrder)
	}

	records := b.records
	if b.cfg.SplitDecisiveOnly {
		filtered, err := FilterDecisive(records, b.fights.Columns, b.cfg.TargetVariable)
		if err != nil {
			return nil, err
		}
		records = filtered
	}

	train, test := SplitTrainTest(records, b.cfg.TestSize, b.cfg.RandomState)
	trainPath, testPath := SplitPaths(output)

	for _, part := range []struct {
		path    string
		records []*domain.ProcessedRecord
	}{
		{trainPath, train},
		{testPath, test},
	} {
		data, err := reporting.RenderProcessedCSV(b.fights.Columns, b.cfg.RelevantStats, part.records, b.cfg.MissingValue)
		if err != nil {
			return nil, fmt.Errorf("render split csv: %w", err)
		}
		if err := reporting.WriteFileAtomic(part.path, data); err != nil {
			return nil, err
		}
	}

	b.log.WithFields(logrus.Fields{
		"train_rows":    len(train),
		"test_rows":     len(test),
		"seed":          b.cfg.RandomState,
		"decisive_only": b.cfg.SplitDecisiveOnly,
	}).Info("saved train/test split")

	return &reporting.SplitSummary{
		TrainPath: trainPath,
		TestPath:  testPath,
		TrainRows: len(train),
		TestRows:  len(test),
		Seed:      b.cfg.RandomState,
	}, nil
}
