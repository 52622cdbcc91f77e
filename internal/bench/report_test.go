package bench

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nopper/wikibench"
	"github.com/nopper/wikibench/internal/config"
	"github.com/nopper/wikibench/internal/dataset"
	"github.com/nopper/wikibench/mention"
)

func goldDataset() *mention.Dataset {
	var instances []*mention.Instance
	for id := range 4 {
		instances = append(instances, &mention.Instance{
			ID:   id,
			Text: "Rome and Paris",
			Mentions: []*mention.Mention{
				mention.New("Rome", 0, 4, "Rome", 25458),
				mention.New("Paris", 9, 14, "Paris", 22989),
			},
		})
	}
	return &mention.Dataset{Name: "capitals", Instances: instances}
}

// setup writes a gold dataset and the results of two annotators: "perfect"
// finds everything, "partial" finds Rome with high confidence and a wrong
// Paris with low confidence. Instance 3 has no "partial" results.
func setup(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()

	goldDir := filepath.Join(root, "capitals")
	if err := dataset.SaveTSV(goldDataset(), goldDir); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(root, "out")
	for _, in := range goldDataset().Instances {
		if err := dataset.SaveMentions(filepath.Join(out, "capitals", "perfect"), in.ID, in.Mentions); err != nil {
			t.Fatal(err)
		}
		if in.ID == 3 {
			continue
		}

		rome := mention.New("Rome", 0, 4, "Rome", 25458)
		rome.Confidence = 0.9
		paris := mention.New("Paris", 9, 14, "Paris_Hilton", 1)
		paris.Confidence = 0.2
		if err := dataset.SaveMentions(filepath.Join(out, "capitals", "partial"), in.ID, []*mention.Mention{rome, paris}); err != nil {
			t.Fatal(err)
		}
	}

	return &config.Config{
		Annotators: []config.Annotator{
			{Name: "replay", Alias: "perfect"},
			{Name: "replay", Alias: "partial"},
			{Name: "replay", Alias: "absent"},
		},
		Datasets:    []config.Dataset{{Name: "capitals", File: goldDir}},
		Experiments: []config.Experiment{{Name: "annotate", File: out}},
	}
}

func TestReporter_Report(t *testing.T) {
	cfg := setup(t)

	r, err := NewReporter(config.DefaultReportOptions(), nil, zaptest.NewLogger(t), 2)
	if err != nil {
		t.Fatalf("NewReporter() error = %v", err)
	}

	tables, err := r.Report(cfg)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(tables) != 1 || len(tables[0].Rows) != 3 {
		t.Fatalf("Report() = %+v", tables)
	}

	tbl := tables[0]
	if tbl.Policy.Name != "annotate-weak" || tbl.Thresholded {
		t.Errorf("table = %s thresholded=%v", tbl.Policy, tbl.Thresholded)
	}

	tests := []struct {
		annotator string
		want      wikibench.Counts
	}{
		{"perfect", wikibench.Counts{TP: 8}},
		{"partial", wikibench.Counts{TP: 3, FP: 3, FN: 5}},
		{"absent", wikibench.Counts{FN: 8}},
	}
	for i, tt := range tests {
		row := tbl.Rows[i]
		if row.Annotator != tt.annotator || row.Dataset != "capitals" {
			t.Errorf("row %d = %s/%s", i, row.Dataset, row.Annotator)
		}
		if row.Metrics.Counts != tt.want {
			t.Errorf("%s counts = %+v, want %+v", tt.annotator, row.Metrics.Counts, tt.want)
		}
		if row.Metrics.Len() != 4 {
			t.Errorf("%s scored %d documents, want 4", tt.annotator, row.Metrics.Len())
		}
	}
}

func TestReporter_Thresholds(t *testing.T) {
	tests := []struct {
		name          string
		threshold     float64
		wantThreshold float64
		want          wikibench.Counts
	}{
		// Paris is wrong at 0.2, so the best cut lies just under Rome's 0.9.
		{"best", 0, 115.0 / 128, wikibench.Counts{TP: 3, FN: 5}},
		{"fixed", 0.1, 0.1, wikibench.Counts{TP: 3, FP: 3, FN: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := setup(t)
			cfg.Annotators = cfg.Annotators[1:2]

			opts := config.DefaultReportOptions()
			opts.Best = "confidence"
			opts.Threshold = tt.threshold
			opts.Optimize = "f1"

			r, err := NewReporter(opts, nil, zaptest.NewLogger(t), 4)
			if err != nil {
				t.Fatalf("NewReporter() error = %v", err)
			}
			tables, err := r.Report(cfg)
			if err != nil {
				t.Fatalf("Report() error = %v", err)
			}

			row := tables[0].Rows[0]
			if !tables[0].Thresholded || row.Attr != "confidence" {
				t.Errorf("row = %+v", row)
			}
			if row.Threshold != tt.wantThreshold {
				t.Errorf("Threshold = %f, want %f", row.Threshold, tt.wantThreshold)
			}
			if row.Metrics.Counts != tt.want {
				t.Errorf("counts = %+v, want %+v", row.Metrics.Counts, tt.want)
			}
		})
	}
}

func TestReporter_RecapAndDetailed(t *testing.T) {
	cfg := setup(t)
	cfg.Annotators = cfg.Annotators[1:2]

	opts := config.DefaultReportOptions()
	opts.Recap = true
	opts.Detailed = true
	opts.Strong = true
	opts.Slice = "1:3"

	var out bytes.Buffer
	r, err := NewReporter(opts, &out, zaptest.NewLogger(t), 1)
	if err != nil {
		t.Fatalf("NewReporter() error = %v", err)
	}
	tables, err := r.Report(cfg)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	if got := tables[0].Rows[0].Metrics.Len(); got != 2 {
		t.Errorf("scored %d documents, want 2", got)
	}

	text := out.String()
	if strings.Count(text, "\tSUM\t") != 2 {
		t.Errorf("want 2 SUM lines:\n%s", text)
	}
	if !strings.Contains(text, "1\terror\t9\t14\t1\tParis_Hilton!=Paris") {
		t.Errorf("missing error record:\n%s", text)
	}
	if strings.Count(text, "TOT:") != 2 {
		t.Errorf("want 2 recap lines:\n%s", text)
	}
}

func TestNewReporter_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.ReportOptions)
		wantErr error
	}{
		{"unknown best", func(o *config.ReportOptions) { o.Best = "popularity" }, mention.ErrUnknownScore},
		{"unknown statistic", func(o *config.ReportOptions) { o.Optimize = "accuracy" }, wikibench.ErrUnknownStatistic},
		{"unknown format", func(o *config.ReportOptions) { o.TableFormat = "latex" }, ErrUnknownFormat},
		{"bad slice", func(o *config.ReportOptions) { o.Slice = "x" }, config.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := config.DefaultReportOptions()
			tt.mutate(&opts)
			if _, err := NewReporter(opts, nil, nil, 0); !errors.Is(err, tt.wantErr) {
				t.Errorf("NewReporter() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewReporter_DropsThresholdWithoutBest(t *testing.T) {
	opts := config.DefaultReportOptions()
	opts.Threshold = 0.5

	r, err := NewReporter(opts, nil, zaptest.NewLogger(t), 0)
	if err != nil {
		t.Fatalf("NewReporter() error = %v", err)
	}
	if r.opts.Threshold != 0 || r.opts.Thresholding() {
		t.Errorf("opts = %+v", r.opts)
	}
}

func TestReporter_Score_OrphanedResults(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r, err := NewReporter(config.DefaultReportOptions(), nil, zap.New(core), 1)
	if err != nil {
		t.Fatalf("NewReporter() error = %v", err)
	}

	gold := goldDataset()
	predicted := []*mention.Instance{
		gold.Instances[0],
		{ID: 40, Mentions: []*mention.Mention{mention.New("Rome", 0, 4, "Rome", 25458)}},
		{ID: 41},
	}

	_, m, err := r.Score(wikibench.TaskAnnotate, gold, predicted)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if want := (wikibench.Counts{TP: 2, FN: 6}); m.Counts != want {
		t.Errorf("Counts = %+v, want %+v", m.Counts, want)
	}

	warns := logs.FilterMessage("results without a gold instance are ignored").All()
	if len(warns) != 1 {
		t.Fatalf("got %d orphan warnings, want 1", len(warns))
	}
	if got := warns[0].ContextMap()["orphaned"]; got != int64(2) {
		t.Errorf("orphaned = %v, want 2", got)
	}
}
