package main

import (
	"github.com/spf13/cobra"

	records "github.com/goliatone/go-records"
)

func newQueryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query",
		Short: "Print the matching records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := flags.model(cmd)
			if err != nil {
				return err
			}
			instances, err := model.All(cmd.Context())
			if err != nil {
				return err
			}
			out := make([]records.Record, 0, len(instances))
			for _, instance := range instances {
				out = append(out, instance.Record())
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newCountCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of matching records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := flags.model(cmd)
			if err != nil {
				return err
			}
			count, err := model.Count(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]int{"count": count})
		},
	}
}

func newPluckCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pluck KEY",
		Short: "Print one attribute of every matching record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := flags.model(cmd)
			if err != nil {
				return err
			}
			values, err := model.Pluck(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), values)
		},
	}
}

func newFieldsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "Print the attribute paths of the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := flags.model(cmd)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), model.Fields())
		},
	}
}
