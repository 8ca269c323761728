package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/cli/pagination"
	"github.com/opengovern/frontend/internal/hooks"
)

// querySorter orders saved queries for --sort.
//
//nolint:gochecknoglobals // Read-only lookup table.
var querySorter = pagination.NewSorter(map[string]pagination.Compare[api.SmartQuery]{
	"id":    pagination.By(func(q api.SmartQuery) string { return q.ID }),
	"title": pagination.By(func(q api.SmartQuery) string { return q.Title }),
})

// ErrQueryNotFound is returned by "query run --saved" for an unknown query ID.
var ErrQueryNotFound = errors.New("saved query not found")

// NewQueryListCmd creates the "query list" command.
func NewQueryListCmd() *cobra.Command {
	var (
		title      string
		connectors []string
		page       pagination.PaginationParams
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved queries",
		Example: `  # All saved queries
  ogdash query list

  # AWS queries mentioning "bucket", by title
  ogdash query list --title bucket --connector AWS --sort title`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQueryList(cmd, api.ListQueriesRequest{TitleFilter: title, Connectors: connectors}, page)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "only queries whose title contains this text")
	cmd.Flags().StringSliceVar(&connectors, "connector", nil, "only queries for these connectors")
	page.Bind(cmd)

	return cmd
}

func runQueryList(cmd *cobra.Command, req api.ListQueriesRequest, page pagination.PaginationParams) error {
	ctx := cmd.Context()
	if err := validateSort(page, querySorter); err != nil {
		return err
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	queries, err := await(ctx, hooks.ListQueries(env.deps, req))
	if err != nil {
		return fmt.Errorf("listing queries: %w", err)
	}

	queries, err = sortAndPage(page, querySorter, queries, false)
	if err != nil {
		return err
	}

	return render(cmd, queries, queries, func(w *tabwriter.Writer, _ *message.Printer) error {
		writeHeader(w, "ID", "Title", "Connectors", "Tags")
		for _, q := range queries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				q.ID,
				orDash(q.Title),
				orDash(strings.Join(q.Connectors, ",")),
				orDash(strings.Join(q.Tags, ",")),
			)
		}
		return nil
	})
}

// queryRunParams holds the flags of "query run".
type queryRunParams struct {
	saved  bool
	engine string
	page   pagination.PaginationParams
}

// NewQueryRunCmd creates the "query run" command.
func NewQueryRunCmd() *cobra.Command {
	var params queryRunParams

	cmd := &cobra.Command{
		Use:   "run <query>",
		Short: "Run an ad-hoc or saved query",
		Long: `Run a SQL query against the workspace inventory and print the result.

With --saved the argument is the ID of a saved query. --page and --page-size
select the result page and --sort column[:asc|desc] is applied by the server.`,
		Example: `  # Ad-hoc query
  ogdash query run "select name, region from aws_ec2_instance"

  # Saved query, first 20 rows ordered by name
  ogdash query run --saved aws_public_buckets --page 1 --page-size 20 --sort name`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryRun(cmd, args[0], params)
		},
	}

	cmd.Flags().BoolVar(&params.saved, "saved", false, "treat the argument as a saved query ID")
	cmd.Flags().StringVar(&params.engine, "engine", api.EngineSQL, "query engine")
	params.page.Bind(cmd)

	return cmd
}

func runQueryRun(cmd *cobra.Command, arg string, params queryRunParams) error {
	ctx := cmd.Context()
	if err := params.page.Validate(); err != nil {
		return err
	}
	field, order, err := pagination.ParseSort(params.page.Sort)
	if err != nil {
		return err
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	query := arg
	if params.saved {
		if query, err = savedQuery(cmd, env, arg); err != nil {
			return err
		}
	}

	req := api.RunQueryRequest{Engine: params.engine, Query: query}
	req.Page.No, req.Page.Size = params.page.ServerPage()
	if field != "" {
		req.Sorts = []api.SortField{{Field: field, Direction: order}}
	}

	resp, err := await(ctx, hooks.RunQuery(env.deps, req))
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	rows := resp.Result
	if !params.page.IsPageBased() {
		rows = pagination.Apply(params.page, rows)
		resp.Result = rows
	}

	return render(cmd, resp, queryRecords(resp.Headers, rows), func(w *tabwriter.Writer, _ *message.Printer) error {
		writeHeader(w, resp.Headers...)
		for _, row := range rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = formatCell(v)
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		return nil
	})
}

// savedQuery returns the SQL text of the saved query with the given ID.
func savedQuery(cmd *cobra.Command, env *apiEnv, id string) (string, error) {
	queries, err := await(cmd.Context(), hooks.ListQueries(env.deps, api.ListQueriesRequest{}))
	if err != nil {
		return "", fmt.Errorf("listing queries: %w", err)
	}
	for _, q := range queries {
		if q.ID == id {
			return q.Query, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrQueryNotFound, id)
}

// queryRecords pairs each row with the column headers for NDJSON output.
func queryRecords(headers []string, rows [][]any) []map[string]any {
	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]any, len(headers))
		for i, h := range headers {
			if i < len(row) {
				record[h] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

// formatCell renders one query result value for table output.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return noValue
	case string:
		return orDash(strings.ReplaceAll(val, "\t", " "))
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}
