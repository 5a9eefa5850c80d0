package cli

import (
	"codeberg.org/mutker/devicectl/internal/errors"
	"codeberg.org/mutker/devicectl/internal/metrics"
	"codeberg.org/mutker/devicectl/internal/render"
	"github.com/spf13/cobra"
)

const defaultHistoryLimit = 20

func newHistoryCmd(a *app) *cobra.Command {
	var (
		format string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show samples recorded by watch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			errFactory := errors.New()

			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			if limit <= 0 {
				return errFactory.WithData(errors.ErrInvalidArgument, "limit must be positive")
			}

			cfg := metricsConfig(a.cfg)
			cfg.Enabled = true
			cfg.BatchSize = 1

			repo, err := metrics.NewRepository(cfg, a.log)
			if err != nil {
				return err
			}
			defer repo.Close()

			samples, err := repo.Recent(limit)
			if err != nil {
				return err
			}

			return render.Write(cmd.OutOrStdout(), f, render.NewHistory(samples))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatText), "Output format: text, json, toml")
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Number of samples to show")

	return cmd
}
