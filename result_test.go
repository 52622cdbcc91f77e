package wikibench

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nopper/wikibench/mention"
)

// recoveryDocument has one gold mention found at its exact span and two
// repeated mentions of the same entity that the annotator missed.
func recoveryDocument(t *testing.T) *Result {
	t.Helper()

	gold := []*mention.Mention{
		mention.New("Obama", 0, 5, "Barack_Obama", 534366),
		mention.New("Obama", 40, 45, "Barack_Obama", 534366),
		mention.New("the president", 60, 73, "Barack_Obama", 534366),
		mention.New("Kenya", 80, 85, "Kenya", 17082),
	}
	predicted := []*mention.Mention{
		mention.New("Obama", 0, 5, "Barack_Obama", 534366),
		mention.New("Nairobi", 90, 97, "Nairobi", 21959),
	}

	r, err := Compare(gold, predicted, AnnotateStrong)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	return r
}

func TestResult_Recoverable(t *testing.T) {
	r := recoveryDocument(t)

	if got := r.Recoverable(false); got != 2 {
		t.Errorf("Recoverable(false) = %d, want 2", got)
	}
	if got := r.Recoverable(true); got != 1 {
		t.Errorf("Recoverable(true) = %d, want 1", got)
	}
}

func TestResult_Records(t *testing.T) {
	r := recoveryDocument(t)

	var labels []string
	for _, rec := range r.Records() {
		labels = append(labels, rec.Label)
	}

	want := []string{LabelOK, LabelEasyRecover, LabelHardRecover, LabelMissing, LabelExcess}
	if strings.Join(labels, ",") != strings.Join(want, ",") {
		t.Errorf("labels = %v, want %v", labels, want)
	}
}

func TestResult_WriteReport(t *testing.T) {
	g := mention.New("Paris", 0, 5, "Paris_(France)", 101)
	p := mention.New("Paris", 0, 5, "Paris_(Texas)", 202)
	p.Confidence = 0.5

	r, err := Compare([]*mention.Mention{g}, []*mention.Mention{p}, AnnotateStrong)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	var buf bytes.Buffer
	if err := r.WriteReport(&buf, "7"); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}

	wantLines := []string{
		"7\terror\t0\t5\t202\tParis_(Texas)!=Paris_(France)\tParis\t0.500\t1.000",
		"7\tmissing\t0\t5\t101\tParis_(France)\tParis\t1.000\t1.000",
		"7\tSUM\t0\t1\t1\t0.000\t0.000\t0.000",
	}
	for i, want := range wantLines {
		if lines[i] != want {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}

func TestResult_CoherenceAverages(t *testing.T) {
	a := mention.New("a", 0, 1, "A", 1)
	a.Coherence = 0.2
	b := mention.New("b", 5, 6, "B", 2)
	b.Coherence = 0.6

	r, err := Compare(nil, []*mention.Mention{a, b}, SpotWeak)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if got := r.ExcessAvg(); !approxEqual(got, 0.4, 1e-9) {
		t.Errorf("ExcessAvg() = %f, want 0.4", got)
	}
	if got := r.CorrectAvg(); got != 0 {
		t.Errorf("CorrectAvg() = %f, want 0", got)
	}
	if !strings.Contains(r.Summary(), "FP:   2") {
		t.Errorf("Summary() = %q", r.Summary())
	}
}
