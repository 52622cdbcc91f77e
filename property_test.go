package wikibench

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/nopper/wikibench/mention"
)

func mentionGen() *rapid.Generator[*mention.Mention] {
	return rapid.Custom(func(t *rapid.T) *mention.Mention {
		start := rapid.IntRange(0, 40).Draw(t, "start")
		length := rapid.IntRange(1, 8).Draw(t, "length")
		id := rapid.IntRange(1, 4).Draw(t, "id")
		m := mention.New(fmt.Sprintf("s%d", id), start, start+length, fmt.Sprintf("T%d", id), id)
		m.Confidence = rapid.Float64Range(0, 1).Draw(t, "confidence")
		return m
	})
}

func mentionsGen(label string) func(t *rapid.T) []*mention.Mention {
	return func(t *rapid.T) []*mention.Mention {
		return rapid.SliceOfN(mentionGen(), 0, 12).Draw(t, label)
	}
}

func policyGen() *rapid.Generator[Policy] {
	return rapid.SampledFrom(Policies())
}

func TestCompare_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gold := mentionsGen("gold")(t)
		predicted := mentionsGen("predicted")(t)
		p := policyGen().Draw(t, "policy")

		r, err := Compare(gold, predicted, p)
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}

		c := r.Counts()
		if c.TP+c.FN != len(gold) {
			t.Fatalf("TP+FN = %d, want %d", c.TP+c.FN, len(gold))
		}
		if c.FP != len(r.Error)+len(r.Excess) {
			t.Fatalf("FP = %d, buckets hold %d", c.FP, len(r.Error)+len(r.Excess))
		}

		inError := make(map[*mention.Mention]bool)
		for _, m := range r.Error {
			inError[m] = true
			if m.MismatchTitle == "" {
				t.Fatalf("error mention %v has no MismatchTitle", m)
			}
		}
		for _, m := range r.Excess {
			if inError[m] {
				t.Fatalf("mention %v is both error and excess", m)
			}
		}

		for _, v := range []float64{c.Precision(), c.Recall(), c.F1(), r.Precision(), r.Recall(), r.F1()} {
			if v < 0 || v > 1 {
				t.Fatalf("score %f out of [0, 1]", v)
			}
		}
		if pr, rc := c.Precision(), c.Recall(); pr+rc > 0 {
			if want := 2 * pr * rc / (pr + rc); !approxEqual(c.F1(), want, 1e-12) {
				t.Fatalf("F1 = %f, want %f", c.F1(), want)
			}
		}
	})
}

func TestCompare_WeakRecallAtLeastStrong(t *testing.T) {
	pairs := [][2]Policy{
		{SpotWeak, SpotStrong},
		{AnnotateWeak, AnnotateStrong},
		{DisambiguateWeak, DisambiguateStrong},
	}

	rapid.Check(t, func(t *rapid.T) {
		gold := mentionsGen("gold")(t)
		predicted := mentionsGen("predicted")(t)
		pair := rapid.SampledFrom(pairs).Draw(t, "pair")

		weak, err := Compare(gold, predicted, pair[0])
		if err != nil {
			t.Fatalf("Compare(weak) error = %v", err)
		}
		strong, err := Compare(gold, predicted, pair[1])
		if err != nil {
			t.Fatalf("Compare(strong) error = %v", err)
		}

		if weak.Counts().Recall() < strong.Counts().Recall() {
			t.Fatalf("weak recall %f < strong recall %f",
				weak.Counts().Recall(), strong.Counts().Recall())
		}
	})
}

func TestCompare_OrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gold := mentionsGen("gold")(t)
		predicted := mentionsGen("predicted")(t)
		p := policyGen().Draw(t, "policy")

		a, err := Compare(gold, predicted, p)
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		b, err := Compare(
			rapid.Permutation(gold).Draw(t, "shuffled gold"),
			rapid.Permutation(predicted).Draw(t, "shuffled predicted"),
			p,
		)
		if err != nil {
			t.Fatalf("Compare(shuffled) error = %v", err)
		}

		if a.Counts() != b.Counts() {
			t.Fatalf("counts %+v != %+v", a.Counts(), b.Counts())
		}
		for _, pair := range [][2][]*mention.Mention{
			{a.Correct, b.Correct},
			{a.Error, b.Error},
			{a.Missing, b.Missing},
			{a.Excess, b.Excess},
		} {
			if !samePointers(pair[0], pair[1]) {
				t.Fatalf("buckets differ: %v != %v", pair[0], pair[1])
			}
		}
	})
}

func TestMetrics_SingleDocumentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := Counts{
			TP: rapid.IntRange(0, 50).Draw(t, "tp"),
			FP: rapid.IntRange(0, 50).Draw(t, "fp"),
			FN: rapid.IntRange(0, 50).Draw(t, "fn"),
		}
		m := NewMetrics()
		m.Push(c)

		if !approxEqual(m.MacroPrecision(), m.Precision(), 1e-12) ||
			!approxEqual(m.MacroRecall(), m.Recall(), 1e-12) ||
			!approxEqual(m.MacroF1(), m.F1(), 1e-12) {
			t.Fatalf("macro and micro differ for %+v: %s", c, m.Summary())
		}
	})
}

func samePointers(a, b []*mention.Mention) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[*mention.Mention]int, len(a))
	for _, m := range a {
		set[m]++
	}
	for _, m := range b {
		set[m]--
	}
	for _, n := range set {
		if n != 0 {
			return false
		}
	}
	return true
}
