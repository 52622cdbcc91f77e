package annotator

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/nopper/wikibench"
	"github.com/nopper/wikibench/internal/dataset"
	"github.com/nopper/wikibench/mention"
)

// flaky fails on the listed instance ids.
type flaky struct {
	stub
	fail map[int]bool
}

func (f flaky) Annotate(_ context.Context, in *mention.Instance) ([]*mention.Mention, error) {
	if f.fail[in.ID] {
		return nil, errors.New("service unavailable")
	}
	return []*mention.Mention{mention.New("Rome", 0, 4, "Rome", 25458)}, nil
}

func newOraclePool(t *testing.T, size int) *Pool {
	t.Helper()

	pool, err := NewPool(size, func() (Annotator, error) {
		return New("oracle", nil, zaptest.NewLogger(t))
	})
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	ds := goldDataset()
	r := NewRunner(zaptest.NewLogger(t))

	stats, err := r.Run(context.Background(), wikibench.TaskAnnotate, newOraclePool(t, 3), ds, dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats != (Stats{Processed: 4}) {
		t.Errorf("Stats = %+v", stats)
	}

	results, err := dataset.LoadResults(dir)
	if err != nil {
		t.Fatalf("LoadResults() error = %v", err)
	}
	if len(results) != 4 || len(results[3].Mentions) != 2 {
		t.Fatalf("results = %v", results)
	}

	m, err := wikibench.New(wikibench.AnnotateStrong).Evaluate(ds.Instances, results)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if m.F1() != 1 {
		t.Errorf("oracle F1 = %f, want 1", m.F1())
	}

	stats, err = r.Run(context.Background(), wikibench.TaskAnnotate, newOraclePool(t, 1), ds, dir)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if stats != (Stats{Cached: 4}) {
		t.Errorf("second Stats = %+v", stats)
	}
}

func TestRunner_FailuresLeaveInstancesPending(t *testing.T) {
	dir := t.TempDir()
	ds := goldDataset()

	pool, err := NewPool(1, func() (Annotator, error) {
		return flaky{fail: map[int]bool{1: true, 3: true}}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = pool.Close() }()

	stats, err := NewRunner(zaptest.NewLogger(t)).Run(context.Background(), wikibench.TaskAnnotate, pool, ds, dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats != (Stats{Processed: 2, Failed: 2}) {
		t.Errorf("Stats = %+v", stats)
	}
	if dataset.HasBeenProcessed(dir, 1) || !dataset.HasBeenProcessed(dir, 2) {
		t.Error("failed instance cached or successful instance missing")
	}
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	_, err := NewRunner(nil).Run(ctx, wikibench.TaskSpot, newOraclePool(t, 2), goldDataset(), dir)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if dataset.HasResults(dir) {
		t.Error("cancelled run wrote results")
	}
}
