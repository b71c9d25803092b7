package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/ingest"
	"github.com/galtpos/oasara-sub004/internal/notify"
)

var (
	ingestFile      string
	ingestDirectory bool
	ingestCountries []string
	ingestHTML      string
	ingestCountry   string
	ingestOut       string
	ingestDryRun    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Seed facilities from a file or the accreditation directory",
	Args:  cobra.MaximumNArgs(1),
	Long: `Reads facility records from one source and inserts them in batches:

  [--file] seed.{json,yaml,csv,xlsx} a seed file
  --directory                        the accreditation directory, country by country
  --html page.html --country NAME    a saved directory page`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if len(args) == 1 && ingestFile == "" {
			ingestFile = args[0]
		}
		if !ingestDryRun {
			if err := cfg.Validate("ingest"); err != nil {
				return err
			}
		}

		var (
			records []ingest.Record
			scraped *ingest.DirectoryResult
			err     error
		)
		switch {
		case ingestFile != "":
			records, err = ingest.ReadSeed(ctx, ingestFile)
			if err != nil {
				return err
			}
		case ingestDirectory:
			countries := ingestCountries
			if len(countries) == 0 {
				countries = ingest.TargetCountries
			}
			dir := ingest.NewDirectory(webFetcher(), cfg.Ingest.DirectoryURL, cfg.Ingest.Delay)
			res, err := dir.Scrape(ctx, countries)
			if err != nil {
				return err
			}
			scraped, records = &res, res.Records
		case ingestHTML != "":
			if ingestCountry == "" {
				return eris.New("--country is required with --html")
			}
			body, err := os.ReadFile(ingestHTML)
			if err != nil {
				return eris.Wrap(err, "read directory page")
			}
			records, err = ingest.ParseDirectory(body, ingestCountry)
			if err != nil {
				return err
			}
		default:
			return eris.New("one of --file, --directory or --html is required")
		}
		zap.L().Info("ingest records loaded", zap.Int("records", len(records)))

		out := cmd.OutOrStdout()
		if scraped != nil {
			printDirectory(cmd, *scraped)
		}
		if ingestOut != "" {
			if err := writeRecords(ingestOut, records); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %d records to %s\n", len(records), ingestOut)
		}
		if ingestDryRun {
			return nil
		}

		env, err := initEnv(ctx, "ingest")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate")
		}

		sum, err := ingest.Import(ctx, env.Store, records, cfg.Ingest.BatchSize)
		printSummary(out, "Ingest",
			line("records", sum.Total),
			good("imported", sum.Imported),
			bad("failed", sum.Failed),
			line("batches", sum.Batches),
		)
		fmt.Fprintf(out, "  %-16s %.1f%%\n", "success rate:", sum.SuccessRate())

		env.Notifier.Notify(ctx, notify.Message{
			Subject: "ingest complete",
			Fields: map[string]any{
				"records":  sum.Total,
				"imported": sum.Imported,
				"failed":   sum.Failed,
			},
		})
		return err
	},
}

func printDirectory(cmd *cobra.Command, res ingest.DirectoryResult) {
	out := cmd.OutOrStdout()
	printSummary(out, "Directory",
		good("facilities", len(res.Records)),
		bad("failed countries", len(res.Errors)),
	)
	for _, e := range res.Errors {
		failColor.Fprintf(out, "    %s: %s\n", e.Country, e.Error)
	}
	if top := res.TopCountries(10); len(top) > 0 {
		titleColor.Fprintln(out, "Top countries")
		for _, c := range top {
			fmt.Fprintf(out, "  %-30s %5d\n", c.Country, c.Count)
		}
	}
}

func writeRecords(path string, records []ingest.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode records")
	}
	return eris.Wrap(os.WriteFile(path, data, 0o644), "write records")
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "seed file (.json, .yaml, .csv or .xlsx)")
	ingestCmd.Flags().BoolVar(&ingestDirectory, "directory", false, "scrape the accreditation directory")
	ingestCmd.Flags().StringSliceVar(&ingestCountries, "countries", nil, "directory countries (default: all target countries)")
	ingestCmd.Flags().StringVar(&ingestHTML, "html", "", "parse a saved directory page")
	ingestCmd.Flags().StringVar(&ingestCountry, "country", "", "country of the saved directory page")
	ingestCmd.Flags().StringVar(&ingestOut, "out", "", "also write the loaded records to this JSON file")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "load records without touching the store")
	ingestCmd.MarkFlagsMutuallyExclusive("file", "directory", "html")
	rootCmd.AddCommand(ingestCmd)
}
