package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nopper/wikibench/internal/dataset"
)

func newConvertCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "convert SRC DST",
		Short: "Convert a dataset between the TSV, binary (.bin) and XML (.xml) layouts",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			ds, err := dataset.Open(args[0])
			if err != nil {
				return err
			}
			if err := dataset.Write(ds, args[1]); err != nil {
				return err
			}

			g.logger.Info("dataset converted",
				zap.String("dataset", ds.Name),
				zap.Int("instances", ds.Len()),
				zap.Stringer("from", dataset.FormatOf(args[0])),
				zap.Stringer("to", dataset.FormatOf(args[1])),
			)
			return nil
		},
	}
}
