package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/dedup"
	"github.com/galtpos/oasara-sub004/internal/store"
)

var (
	reportNormalized bool
	reportFuzzy      int
	reportCountry    string
	reportXLSX       string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report duplicate names and directory coverage",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "report")
		if err != nil {
			return err
		}
		defer env.Close()

		facilities, err := env.Store.ListFacilities(ctx, store.FacilityFilter{Country: reportCountry})
		if err != nil {
			return err
		}

		r := dedup.Build(facilities, dedup.Options{Normalized: reportNormalized, Fuzzy: reportFuzzy})
		dedup.Render(cmd.OutOrStdout(), r)

		if reportXLSX != "" {
			if err := dedup.WriteXLSX(reportXLSX, r); err != nil {
				return err
			}
			zap.L().Info("report workbook written", zap.String("path", reportXLSX))
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show enrichment coverage counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "status")
		if err != nil {
			return err
		}
		defer env.Close()

		s, err := env.Store.Stats(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printSummary(out, "Facilities", line("total", s.Facilities))
		for _, f := range []struct {
			label string
			n     int
		}{
			{"website", s.WithWebsite},
			{"phone", s.WithPhone},
			{"email", s.WithEmail},
			{"place id", s.WithPlaceID},
		} {
			labelColor.Fprintf(out, "  %-16s ", f.label+":")
			fmt.Fprintf(out, "%d (%.1f%%)\n", f.n, dedup.Percent(f.n, s.Facilities))
		}
		printSummary(out, "Extracted",
			line("doctors", s.Doctors),
			line("prices", s.Prices),
			line("testimonials", s.Testimonials),
		)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "migrate")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.Migrate(ctx); err != nil {
			return err
		}
		okColor.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportNormalized, "normalized", false, "group names after case, accent and punctuation folding")
	reportCmd.Flags().IntVar(&reportFuzzy, "fuzzy", 0, "also group normalized names within this edit distance")
	reportCmd.Flags().StringVar(&reportCountry, "country", "", "only facilities in this country")
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "also write the report to this workbook")
	rootCmd.AddCommand(reportCmd, statusCmd, migrateCmd)
}
