package wikibench

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nopper/wikibench/mention"
)

func TestThresholds(t *testing.T) {
	grid := Thresholds()

	if len(grid) != 129 {
		t.Fatalf("len(Thresholds()) = %d, want 129", len(grid))
	}
	if grid[0] != 0 || grid[128] != 1 {
		t.Errorf("grid bounds = [%f, %f], want [0, 1]", grid[0], grid[128])
	}
	for i := 1; i < len(grid); i++ {
		if grid[i] <= grid[i-1] {
			t.Fatalf("grid not ascending at %d: %f <= %f", i, grid[i], grid[i-1])
		}
	}
}

func TestFilterByScore(t *testing.T) {
	low := mention.New("a", 0, 1, "A", 1)
	low.Confidence = 0.2
	low.Coherence = 0.9
	high := mention.New("b", 2, 3, "B", 2)
	high.Confidence = 0.8
	high.Coherence = 0.1

	in := []*mention.Instance{{ID: 1, Text: "a b", Mentions: []*mention.Mention{low, high}}, nil}

	tests := []struct {
		name      string
		score     mention.Score
		threshold float64
		want      []*mention.Mention
	}{
		{"confidence keeps high", mention.Confidence, 0.5, []*mention.Mention{high}},
		{"coherence keeps low", mention.Coherence, 0.5, []*mention.Mention{low}},
		{"threshold is inclusive", mention.Confidence, 0.2, []*mention.Mention{low, high}},
		{"nothing passes", mention.Confidence, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FilterByScore(in, tt.score, tt.threshold)
			if len(out) != 2 || out[1] != nil {
				t.Fatalf("FilterByScore() = %v", out)
			}
			got := out[0].Mentions
			if len(got) != len(tt.want) {
				t.Fatalf("got %d mentions, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("mention %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}

	if len(in[0].Mentions) != 2 {
		t.Error("FilterByScore modified its input")
	}
}

// sweepFixture returns one document with four gold mentions, four correct
// predictions at confidence 0.6 and four stray predictions at 0.3.
func sweepFixture() (gold, predicted []*mention.Instance) {
	var g, p []*mention.Mention
	for i := range 4 {
		start := i * 10
		title := fmt.Sprintf("E%d", i)
		g = append(g, mention.New(title, start, start+2, title, i+1))

		ok := mention.New(title, start, start+2, title, i+1)
		ok.Confidence = 0.6
		p = append(p, ok)

		stray := mention.New("x", 100+start, 102+start, "Stray", 99)
		stray.Confidence = 0.3
		p = append(p, stray)
	}

	gold = []*mention.Instance{{ID: 1, Mentions: g}}
	predicted = []*mention.Instance{{ID: 1, Mentions: p}}
	return gold, predicted
}

func TestEvaluator_FindBestThreshold(t *testing.T) {
	gold, predicted := sweepFixture()

	for _, stat := range []Statistic{StatF1, StatMacroF1} {
		t.Run(string(stat), func(t *testing.T) {
			e := New(AnnotateStrong, WithWorkers(3))

			best, filtered, err := e.FindBestThreshold(gold, predicted, mention.Confidence, stat)
			if err != nil {
				t.Fatalf("FindBestThreshold() error = %v", err)
			}

			// F1 is 1 on (0.3, 0.6]; the highest grid point there is 76/128.
			if want := 76.0 / 128; best != want {
				t.Errorf("best = %f, want %f", best, want)
			}
			if got := len(filtered[0].Mentions); got != 4 {
				t.Errorf("filtered mentions = %d, want 4", got)
			}
		})
	}
}

func TestEvaluator_Sweep(t *testing.T) {
	gold, predicted := sweepFixture()
	e := New(AnnotateStrong, WithWorkers(3))

	points, err := e.Sweep(gold, predicted, mention.Confidence, StatF1)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if len(points) != 129 {
		t.Fatalf("len(points) = %d, want 129", len(points))
	}

	tests := []struct {
		index int
		want  float64
	}{
		{0, 2.0 / 3},
		{38, 2.0 / 3},
		{39, 1},
		{76, 1},
		{77, 0},
		{128, 0},
	}
	for _, tt := range tests {
		p := points[tt.index]
		if p.Threshold != float64(tt.index)/128 {
			t.Errorf("points[%d].Threshold = %f", tt.index, p.Threshold)
		}
		if !approxEqual(p.Value, tt.want, 1e-9) {
			t.Errorf("points[%d].Value = %f, want %f", tt.index, p.Value, tt.want)
		}
	}

	// Sweeping must not leak filtered state into the caller's mentions.
	for _, m := range predicted[0].Mentions {
		if m.MismatchTitle != "" {
			t.Errorf("mention %v has MismatchTitle %q after sweep", m, m.MismatchTitle)
		}
	}
}

func TestBestPoint_TiesPickHighestThreshold(t *testing.T) {
	gold := []*mention.Instance{{ID: 1, Mentions: []*mention.Mention{
		mention.New("a", 0, 1, "A", 1),
	}}}
	predicted := []*mention.Instance{{ID: 1}}

	e := New(SpotWeak)
	best, _, err := e.FindBestThreshold(gold, predicted, mention.Confidence, StatF1)
	if err != nil {
		t.Fatalf("FindBestThreshold() error = %v", err)
	}
	if best != 1 {
		t.Errorf("best = %f, want 1", best)
	}

	if got := BestPoint(nil); got.Threshold != 0 || got.Value != 0 {
		t.Errorf("BestPoint(nil) = %+v", got)
	}
}

func TestEvaluator_SweepUnknownStatistic(t *testing.T) {
	gold, predicted := sweepFixture()

	_, err := New(SpotWeak).Sweep(gold, predicted, mention.Confidence, "accuracy")
	if !errors.Is(err, ErrUnknownStatistic) {
		t.Errorf("Sweep() error = %v, want ErrUnknownStatistic", err)
	}
}
