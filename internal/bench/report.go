// Package bench scores cached annotator output against gold datasets and
// renders the comparison tables.
package bench

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/nopper/wikibench"
	"github.com/nopper/wikibench/internal/config"
	"github.com/nopper/wikibench/internal/dataset"
	"github.com/nopper/wikibench/mention"
)

// Row is the score of one annotator on one dataset.
type Row struct {
	Dataset   string
	Annotator string
	// Attr and Threshold are set when predictions were thresholded.
	Attr      string
	Threshold float64
	Metrics   *wikibench.Metrics
}

// Table holds the rows of one experiment.
type Table struct {
	Experiment  string
	Policy      wikibench.Policy
	Thresholded bool
	Rows        []Row
}

// Reporter scores annotator results. Per-document recaps and detailed
// reports, when enabled, are written to its output as documents are scored.
type Reporter struct {
	opts    config.ReportOptions
	score   mention.Score
	stat    wikibench.Statistic
	start   int
	end     int
	out     io.Writer
	logger  *zap.Logger
	workers int

	writeErr error
}

// NewReporter validates opts and creates a Reporter. A threshold given
// without a score attribute is dropped with a warning.
func NewReporter(opts config.ReportOptions, out io.Writer, logger *zap.Logger, workers int) (*Reporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.Normalize() {
		logger.Warn("threshold given without best attribute, ignoring it")
	}

	r := &Reporter{opts: opts, out: out, logger: logger, workers: workers}

	var err error
	if opts.Thresholding() {
		if r.score, err = mention.ParseScore(opts.Best); err != nil {
			return nil, fmt.Errorf("best attribute: %w", err)
		}
	}
	if r.stat, err = wikibench.ParseStatistic(opts.Optimize); err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	if _, err = ParseFormat(opts.TableFormat); err != nil {
		return nil, err
	}
	if r.start, r.end, err = config.ParseSlice(opts.Slice); err != nil {
		return nil, err
	}

	return r, nil
}

// Report scores every annotator of cfg on every dataset, for each
// experiment. Results are read from <experiment file>/<dataset>/<alias>.
func (r *Reporter) Report(cfg *config.Config) ([]Table, error) {
	golds := make(map[string]*mention.Dataset, len(cfg.Datasets))
	for _, d := range cfg.Datasets {
		ds, err := dataset.Open(d.File)
		if err != nil {
			return nil, err
		}
		golds[d.Name] = ds
		r.logger.Info("dataset loaded", zap.String("dataset", d.Name), zap.Int("instances", ds.Len()))
	}

	tables := make([]Table, 0, len(cfg.Experiments))
	for _, exp := range cfg.Experiments {
		task, err := exp.Task()
		if err != nil {
			return nil, err
		}

		t := Table{
			Experiment:  exp.Name,
			Policy:      task.Policy(r.opts.Strong),
			Thresholded: r.opts.Thresholding(),
		}
		r.logger.Info("scoring experiment", zap.String("experiment", exp.Name), zap.Stringer("policy", t.Policy))

		for _, d := range cfg.Datasets {
			for _, a := range cfg.Annotators {
				dir := filepath.Join(exp.File, d.Name, a.Alias)
				if !dataset.HasResults(dir) {
					r.logger.Warn("no annotations, scoring an empty result set", zap.String("directory", dir))
				}

				results, err := dataset.LoadResults(dir)
				if err != nil {
					return nil, fmt.Errorf("loading results of %s on %s: %w", a.Alias, d.Name, err)
				}

				threshold, m, err := r.Score(task, golds[d.Name], results)
				if err != nil {
					return nil, fmt.Errorf("scoring %s on %s: %w", a.Alias, d.Name, err)
				}

				row := Row{Dataset: d.Name, Annotator: a.Alias, Metrics: m}
				if t.Thresholded {
					row.Attr, row.Threshold = r.opts.Best, threshold
				}
				t.Rows = append(t.Rows, row)

				r.logger.Debug("scored", zap.String("dataset", d.Name), zap.String("annotator", a.Alias),
					zap.String("metrics", m.Summary()))
			}
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Score evaluates predicted against the gold instances of ds for task,
// applying the configured slice and threshold. It returns the threshold
// used, which is 0 when predictions are not thresholded.
func (r *Reporter) Score(task wikibench.Task, ds *mention.Dataset, predicted []*mention.Instance) (float64, *wikibench.Metrics, error) {
	gold := ds.Slice(r.start, r.end).Instances
	aligned := r.align(gold, predicted)

	opts := []wikibench.Option{
		wikibench.WithLogger(r.logger),
		wikibench.WithObserver(r.observe),
	}
	if r.workers > 0 {
		opts = append(opts, wikibench.WithWorkers(r.workers))
	}
	e := wikibench.New(task.Policy(r.opts.Strong), opts...)

	var threshold float64
	if r.opts.Thresholding() {
		if r.opts.Threshold > 0 {
			threshold = r.opts.Threshold
			aligned = wikibench.FilterByScore(aligned, r.score, threshold)
		} else {
			var err error
			threshold, aligned, err = e.FindBestThreshold(gold, aligned, r.score, r.stat)
			if err != nil {
				return 0, nil, err
			}
		}
	}

	r.writeErr = nil
	m, err := e.Evaluate(gold, aligned)
	if err != nil {
		return 0, nil, err
	}
	if r.writeErr != nil {
		return 0, nil, fmt.Errorf("writing document report: %w", r.writeErr)
	}
	return threshold, m, nil
}

// align orders predicted like gold, matching instances by id. Gold
// instances without a prediction get a nil entry, which scores all their
// mentions as missed.
func (r *Reporter) align(gold, predicted []*mention.Instance) []*mention.Instance {
	byID := make(map[int]*mention.Instance, len(predicted))
	for _, in := range predicted {
		byID[in.ID] = in
	}

	aligned := make([]*mention.Instance, len(gold))
	missing := 0
	for i, g := range gold {
		aligned[i] = byID[g.ID]
		if aligned[i] == nil {
			missing++
		}
	}
	if missing > 0 {
		r.logger.Debug("instances without results", zap.Int("missing", missing), zap.Int("total", len(gold)))
	}

	known := make(map[int]bool, len(gold))
	for _, g := range gold {
		known[g.ID] = true
	}
	if orphaned := lo.CountBy(predicted, func(in *mention.Instance) bool { return !known[in.ID] }); orphaned > 0 {
		r.logger.Warn("results without a gold instance are ignored", zap.Int("orphaned", orphaned))
	}
	return aligned
}

func (r *Reporter) observe(ir wikibench.InstanceResult) {
	if r.out == nil || r.writeErr != nil {
		return
	}

	if r.opts.Detailed {
		r.writeErr = ir.Result.WriteReport(r.out, strconv.Itoa(ir.ID))
	}
	if r.opts.Recap && r.writeErr == nil {
		_, r.writeErr = fmt.Fprintf(r.out, "%20d\t%s\n", ir.ID, ir.Result.Summary())
	}
}
