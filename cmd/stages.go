package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/galtpos/oasara-sub004/internal/extract"
	"github.com/galtpos/oasara-sub004/internal/pipeline"
	"github.com/galtpos/oasara-sub004/internal/resolve"
)

var extractLimit int

// nameFilter returns the optional positional facility-name filter.
func nameFilter(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [name-filter]",
	Short: "Backfill website, phone and location from place lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "resolve")
		if err != nil {
			return err
		}
		defer env.Close()

		client, release := placesClient()
		defer release()

		stage := pipeline.NewResolveStage(env.Store, resolve.New(client, cfg.Resolve.MinConfidence), cfg.Resolve.Delay, env.Alerter)
		sum, err := stage.Run(ctx, nameFilter(args))
		printSummary(cmd.OutOrStdout(), "Resolve",
			line("processed", sum.Processed),
			good("updated", sum.Updated),
			line("skipped", sum.Skipped),
			warn("not found", sum.NotFound),
			warn("low confidence", sum.LowConfidence),
			bad("failed", sum.Failed),
			good("with website", sum.WithWebsite),
			good("with phone", sum.WithPhone),
			good("with both", sum.WithBoth),
			warn("no info", sum.NoInfo),
		)
		return err
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract [name-filter]",
	Short: "Scrape doctors, prices and testimonials from facility websites",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "extract")
		if err != nil {
			return err
		}
		defer env.Close()

		stage := pipeline.NewExtractStage(env.Store, webFetcher(), cfg.Extract.Delay, env.Alerter)
		sum, err := stage.Run(ctx, nameFilter(args), extractLimit)
		printSummary(cmd.OutOrStdout(), "Extract",
			line("processed", sum.Processed),
			good("success", sum.Success),
			warn("partial", sum.Partial),
			bad("failed", sum.Failed),
			bad("save failed", sum.SaveFailed),
			line("doctors", sum.Doctors),
			line("prices", sum.Prices),
			line("testimonials", sum.Testimonials),
		)
		return err
	},
}

var emailsCmd = &cobra.Command{
	Use:   "emails [name-filter]",
	Short: "Discover contact emails on facility websites",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "emails")
		if err != nil {
			return err
		}
		defer env.Close()

		finder := extract.NewEmailFinder(webFetcher(), cfg.Emails.PageDelay, cfg.Emails.MaxPages)
		sum, err := pipeline.NewEmailStage(env.Store, finder, cfg.Emails.Delay, env.Alerter).Run(ctx, nameFilter(args))
		printSummary(cmd.OutOrStdout(), "Emails",
			line("processed", sum.Processed),
			good("found", sum.Found),
			warn("not found", sum.NotFound),
			bad("failed", sum.Failed),
		)
		return err
	},
}

var specialtiesCmd = &cobra.Command{
	Use:   "specialties [name-filter]",
	Short: "Infer specialties and popular procedures",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "specialties")
		if err != nil {
			return err
		}
		defer env.Close()

		sum, err := pipeline.NewSpecialtyStage(env.Store, env.Alerter).Run(ctx, nameFilter(args))
		printSummary(cmd.OutOrStdout(), "Specialties",
			line("processed", sum.Processed),
			good("updated", sum.Updated),
			line("unchanged", sum.Unchanged),
			bad("failed", sum.Failed),
		)
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{resolveCmd, extractCmd, emailsCmd, specialtiesCmd} {
		c.Args = cobra.MaximumNArgs(1)
		rootCmd.AddCommand(c)
	}
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "maximum facilities to process (0 = all)")
}
