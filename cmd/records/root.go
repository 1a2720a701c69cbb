package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	records "github.com/goliatone/go-records"
	"github.com/goliatone/go-records/pkg/memory"
)

type rootFlags struct {
	fixtures  string
	table     string
	filter    string
	orders    []string
	limit     int
	skip      int
	keys      []string
	evaluator string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "records",
		Short:         "Query record fixtures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	persistent := root.PersistentFlags()
	persistent.StringVar(&flags.fixtures, "fixtures", "", "YAML file mapping table names to records")
	persistent.StringVar(&flags.table, "table", "", "table to query")
	persistent.StringVar(&flags.filter, "filter", "", "filter as JSON, e.g. '{\"$gt\":{\"age\":30}}'")
	persistent.StringArrayVar(&flags.orders, "order", nil, "sort key as key[:asc|desc], repeatable")
	persistent.IntVar(&flags.limit, "limit", 0, "maximum number of records")
	persistent.IntVar(&flags.skip, "skip", 0, "number of matching records to skip")
	persistent.StringSliceVar(&flags.keys, "keys", nil, "attribute keys, derived from the fixtures when empty")
	persistent.StringVar(&flags.evaluator, "evaluator", "expr", "engine for $expr filters: expr or cel")
	persistent.BoolVar(&flags.verbose, "verbose", false, "log operations to stderr")
	_ = root.MarkPersistentFlagRequired("fixtures")
	_ = root.MarkPersistentFlagRequired("table")

	root.AddCommand(
		newQueryCmd(flags),
		newCountCmd(flags),
		newPluckCmd(flags),
		newFieldsCmd(flags),
	)
	return root
}

// model loads the fixtures and applies the scope flags.
func (f *rootFlags) model(cmd *cobra.Command) (*records.Model, error) {
	storage, err := memory.LoadStorageFile(f.fixtures)
	if err != nil {
		return nil, err
	}
	rows, ok := storage[f.table]
	if !ok {
		return nil, fmt.Errorf("table %q not found in %s", f.table, f.fixtures)
	}

	var connectorOpts []memory.Option
	switch strings.ToLower(f.evaluator) {
	case "", "expr":
	case "cel":
		connectorOpts = append(connectorOpts, memory.WithEvaluator(records.NewCELEvaluator()))
	default:
		return nil, fmt.Errorf("unknown evaluator %q", f.evaluator)
	}

	var opts []records.Option
	if f.verbose {
		handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, records.WithLogger(records.NewSlogLogger(slog.New(handler))))
	}

	model, err := records.New(records.Config{
		TableName: f.table,
		Init:      func() records.Record { return seedFrom(rows) },
		Keys:      f.keys,
		Connector: memory.NewConnector(storage, connectorOpts...),
	}, opts...)
	if err != nil {
		return nil, err
	}

	if f.filter != "" {
		filter, err := records.ParseFilterJSON([]byte(f.filter))
		if err != nil {
			return nil, err
		}
		model = model.FilterBy(filter)
	}
	for _, raw := range f.orders {
		order, err := parseOrder(raw)
		if err != nil {
			return nil, err
		}
		model = model.OrderBy(order)
	}
	if cmd.Flags().Changed("limit") {
		model = model.LimitBy(f.limit)
	}
	if cmd.Flags().Changed("skip") {
		model = model.SkipBy(f.skip)
	}
	return model, model.Err()
}

// seedFrom collects every key used by rows, each seeded with nil.
func seedFrom(rows []records.Record) records.Record {
	seed := records.Record{}
	for _, row := range rows {
		for key := range row {
			seed[key] = nil
		}
	}
	return seed
}

func parseOrder(raw string) (records.Order, error) {
	key, dir, _ := strings.Cut(raw, ":")
	key = strings.TrimSpace(key)
	if key == "" {
		return records.Order{}, fmt.Errorf("order %q has no key", raw)
	}
	direction, ok := records.ParseDirection(dir)
	if !ok {
		return records.Order{}, fmt.Errorf("order %q: unknown direction %q", raw, dir)
	}
	return records.Order{Key: key, Direction: direction}, nil
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
