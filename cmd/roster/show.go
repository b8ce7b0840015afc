package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"seals/api/internal/client"
	"seals/api/internal/config"
	"seals/api/internal/roster"
)

type showOptions struct {
	source   string
	position string
	number   string
	path     string
	search   string
	sort     string
	desc     bool
	timeout  int
	apiURL   string
	external string
}

func newShowCmd(cfg config.Config) *cobra.Command {
	opts := showOptions{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the roster from one source",
		Long: `Show loads the roster from the local list, the database API or the
external REST service and prints it after search and sort are applied.

Examples:
  roster show --source database --position Pitcher
  roster show --source external --path /roster --sort number --desc
  roster show --search catcher`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.source, "source", string(roster.SourceLocal), "Source to show (local, database, external)")
	flags.StringVar(&opts.position, "position", "", "Database source: filter by position")
	flags.StringVar(&opts.number, "number", "", "Database source: filter by number")
	flags.StringVar(&opts.path, "path", "", "External source: path to fetch")
	flags.StringVar(&opts.search, "search", "", "Case-insensitive search over name, position and number")
	flags.StringVar(&opts.sort, "sort", "", "Sort by name, position or number")
	flags.BoolVar(&opts.desc, "desc", false, "Sort descending")
	flags.IntVar(&opts.timeout, "timeout-ms", int(cfg.ExternalTimeout.Milliseconds()), "Request timeout in milliseconds")
	flags.StringVar(&opts.apiURL, "api-url", cfg.RosterAPIURL, "Base URL of the roster API")
	flags.StringVar(&opts.external, "external-url", cfg.ExternalAPIURL, "Base URL of the external service")
	cmd.MarkFlagsMutuallyExclusive("position", "number")
	return cmd
}

func runShow(cmd *cobra.Command, opts showOptions) error {
	source, ok := roster.ParseSource(opts.source)
	if !ok {
		return fmt.Errorf("unknown source %q", opts.source)
	}
	sortKey := roster.ParseField(opts.sort)
	if opts.sort != "" && sortKey == roster.FieldNone {
		return fmt.Errorf("unknown sort field %q", opts.sort)
	}
	if opts.desc && sortKey == roster.FieldNone {
		return errors.New("--desc requires --sort")
	}
	if (opts.position != "" || opts.number != "") && source != roster.SourceDatabase {
		return fmt.Errorf("--position and --number require --source %s", roster.SourceDatabase)
	}
	if opts.path != "" && source != roster.SourceExternal {
		return fmt.Errorf("--path requires --source %s", roster.SourceExternal)
	}

	timeout := client.DefaultTimeout
	if opts.timeout > 0 {
		timeout = time.Duration(opts.timeout) * time.Millisecond
	}
	view := roster.NewView(roster.ViewConfig{
		Seed:     roster.DefaultSeed(),
		Database: client.NewRosterAPI(opts.apiURL, timeout, nil),
		External: client.NewExternal(opts.external, timeout, nil),
		Options:  []roster.LoaderOption{roster.WithLogf(nil)},
	})

	ctx := cmd.Context()
	var state roster.LoadState
	switch {
	case source == roster.SourceLocal:
		state = view.LoadLocal(ctx)
	case source == roster.SourceExternal:
		state = view.FetchExternal(ctx, opts.path)
	case opts.position != "":
		state = view.FilterByPosition(ctx, opts.position)
	case opts.number != "":
		state = view.FilterByNumber(ctx, opts.number)
	default:
		state = view.Init(ctx)
	}
	if state.Phase == roster.PhaseFailed {
		return fmt.Errorf("%s source failed (%s): %s", source, state.Failure.Kind, state.Failure.Reason)
	}

	view.Select(source)
	view.SetSearch(opts.search)
	if sortKey != roster.FieldNone {
		view.ToggleSort(sortKey)
		if opts.desc {
			view.ToggleSort(sortKey)
		}
	}

	return printTable(cmd.OutOrStdout(), view.Displayed())
}

func printTable(out io.Writer, entries []roster.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No players found")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPOSITION\tNUMBER")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Position, e.Number)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n%d players\n", len(entries))
	return err
}
