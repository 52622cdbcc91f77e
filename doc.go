// Package wikibench scores entity annotators against gold-standard datasets.
//
// # Quick Start
//
//	ev := wikibench.New(wikibench.AnnotateWeak)
//	metrics, err := ev.Evaluate(gold.Instances, predicted)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(metrics.Summary())
//
// # Matching
//
// Compare reconciles the gold and predicted mentions of one document under a
// Policy: spans match strongly (identical offsets) or weakly (any overlap),
// and a Validator decides whether the matched mentions name the same entity.
// Predictions land in at most one of correct, error (right span, wrong
// entity) and excess; gold mentions that were not found are missing. Found
// gold mentions go in no bucket, nor do disambiguation predictions that
// overlap no gold mention.
//
// # Aggregation
//
// Metrics pools the per-document counts. Precision, Recall and F1 are micro
// averages over the pooled counts; the Macro variants average the
// per-document values, counting empty documents as zero.
//
// # Thresholds
//
// FindBestThreshold sweeps a confidence cutoff over {i/128 : i = 0..128}
// and keeps the cutoff maximizing a Statistic. Among equal values the
// highest threshold wins.
package wikibench
