package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"chapter-map/internal/config"
	"chapter-map/internal/directory"
	"chapter-map/internal/member"
	"chapter-map/internal/source"
	"chapter-map/internal/viewport"
)

type checkOptions struct {
	url     string
	file    string
	regions string
	timeout time.Duration
	asJSON  bool
	strict  bool
}

// report：一次检查的结果
type report struct {
	Source      string             `json:"source"`
	Rows        int                `json:"rows"`
	Members     int                `json:"members"`
	Rejected    []member.Rejection `json:"rejected"`
	Tags        []string           `json:"tags"`
	Countries   []string           `json:"countries"`
	NoRegion    []string           `json:"countriesWithoutRegion"`
	Relocated   int                `json:"relocated"`
	WithoutMail int                `json:"withoutEmail"`
}

func newCheckCmd() *cobra.Command {
	cfg := config.FromEnv()
	opts := checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fetch and parse the sheet, then report rejected rows",
		Long: `Fetches the published CSV (or reads --file), runs the same decoder and
row parser as the server, and prints member counts, rejected rows with
reasons, the tag and country indexes, and countries that have no entry
in the region table (those fall back to the world view).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.url, "url", cfg.SourceURL, "published CSV URL")
	cmd.Flags().StringVar(&opts.file, "file", "", "read CSV from a local file instead of --url")
	cmd.Flags().StringVar(&opts.regions, "regions", cfg.RegionsFile, "YAML region overrides")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", cfg.SourceTimeout, "fetch timeout")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when any row is rejected")
	return cmd
}

func runCheck(ctx context.Context, out io.Writer, opts checkOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	payload, src, err := readPayload(ctx, opts)
	if err != nil {
		return err
	}
	regions, err := viewport.LoadRegions(opts.regions)
	if err != nil {
		return fmt.Errorf("regions: %w", err)
	}
	rows, err := member.DecodeCSV(bytes.NewReader(payload))
	if err != nil {
		return err
	}
	rep := buildReport(src, rows, regions)

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		printReport(out, rep)
	}
	if opts.strict && len(rep.Rejected) > 0 {
		return fmt.Errorf("%d rows rejected", len(rep.Rejected))
	}
	return nil
}

func readPayload(ctx context.Context, opts checkOptions) ([]byte, string, error) {
	if opts.file != "" {
		b, err := os.ReadFile(opts.file)
		return b, opts.file, err
	}
	b, err := source.NewClient(opts.url, opts.timeout).Fetch(ctx)
	return b, opts.url, err
}

func buildReport(src string, rows []member.Row, regions *viewport.Table) report {
	batch := member.ParseRows(rows)
	snap := directory.NewSnapshot(batch, src, time.Now())
	rep := report{
		Source:    src,
		Rows:      len(rows),
		Members:   len(snap.Members),
		Rejected:  snap.Rejected,
		Tags:      snap.Tags[1:],
		Countries: snap.Countries,
		NoRegion:  []string{},
	}
	if rep.Rejected == nil {
		rep.Rejected = []member.Rejection{}
	}
	for _, c := range snap.Countries {
		if _, ok := regions.Lookup(c); !ok {
			rep.NoRegion = append(rep.NoRegion, c)
		}
	}
	for _, m := range snap.Members {
		if m.Relocated() {
			rep.Relocated++
		}
		if m.Email == "" {
			rep.WithoutMail++
		}
	}
	return rep
}

func printReport(out io.Writer, rep report) {
	fmt.Fprintf(out, "source:    %s\n", rep.Source)
	fmt.Fprintf(out, "rows:      %d\n", rep.Rows)
	fmt.Fprintf(out, "members:   %d (relocated %d, without email %d)\n", rep.Members, rep.Relocated, rep.WithoutMail)
	fmt.Fprintf(out, "rejected:  %d\n", len(rep.Rejected))
	if len(rep.Rejected) > 0 {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  LINE\tID\tREASON")
		for _, r := range rep.Rejected {
			fmt.Fprintf(tw, "  %d\t%s\t%s\n", r.Line, r.ID, r.Reason)
		}
		_ = tw.Flush()
	}
	fmt.Fprintf(out, "tags:      %s\n", strings.Join(rep.Tags, ", "))
	fmt.Fprintf(out, "countries: %s\n", strings.Join(rep.Countries, ", "))
	if len(rep.NoRegion) > 0 {
		fmt.Fprintf(out, "no region: %s (world view)\n", strings.Join(rep.NoRegion, ", "))
	}
}
