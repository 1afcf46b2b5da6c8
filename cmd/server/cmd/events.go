package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

type eventsOptions struct {
	server string
	when   string
	limit  int
	format string
}

type eventSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Venue  string `json:"venue"`
	Charge string `json:"charge"`
	IsOpen bool   `json:"is_open"`
}

type eventList struct {
	Items []eventSummary `json:"items"`
}

func newEventsCommand() *cobra.Command {
	opts := &eventsOptions{}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events from a running server",
		Long: `Query the public events API and print the results.

Examples:
  # Upcoming events
  ratiba events --when future

  # Raw JSON from another server
  ratiba events --server https://events.example.org --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			body, err := fetchEvents(ctx, http.DefaultClient, opts)
			if err != nil {
				return err
			}
			return printEvents(cmd.OutOrStdout(), body, opts.format)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:8080", "server base URL")
	cmd.Flags().StringVar(&opts.when, "when", "all", "which events to list (all, past, future)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "maximum number of events")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format (table, json)")
	return cmd
}

func fetchEvents(ctx context.Context, client *http.Client, opts *eventsOptions) ([]byte, error) {
	query := url.Values{}
	query.Set("when", opts.when)
	query.Set("limit", strconv.Itoa(opts.limit))
	target := strings.TrimRight(opts.server, "/") + "/api/v1/events?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func printEvents(out io.Writer, body []byte, format string) error {
	if format == "json" {
		var raw any
		if err := json.Unmarshal(body, &raw); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
		pretty, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(pretty))
		return err
	}

	var list eventList
	if err := json.Unmarshal(body, &list); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if len(list.Items) == 0 {
		_, err := fmt.Fprintln(out, "No events found.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tTITLE\tVENUE\tCHARGE\tOPEN")
	for _, e := range list.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Time, e.Title, e.Venue, e.Charge, yesNo(e.IsOpen))
	}
	return tw.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
