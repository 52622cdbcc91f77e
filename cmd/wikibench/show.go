package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nopper/wikibench/internal/dataset"
)

func newShowCmd(_ *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show DATASET INDEX",
		Short: "Print one instance with its mentions inlined",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.Open(args[0])
			if err != nil {
				return err
			}

			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index %q: %w", args[1], err)
			}
			if index < 0 || index >= ds.Len() {
				return fmt.Errorf("index %d out of range, %s", index, ds)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", ds, ds.Instances[index].PrettyPrint())
			return err
		},
	}
}
