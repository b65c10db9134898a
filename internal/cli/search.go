package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spirelore/spirebot/internal/app"
	"github.com/spirelore/spirebot/internal/config"
	"github.com/spirelore/spirebot/internal/resolve"
)

// newSearchCommand resolves a query offline against the configured content
// document, without connecting to any chat platform.
func newSearchCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Resolve a query against the content document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			runtime, err := app.New(cfg, version, logger)
			if err != nil {
				return err
			}

			outcome := runtime.Resolver().Resolve(strings.Join(args, " "))
			switch outcome.Kind {
			case resolve.OutcomeCommand:
				result := outcome.Handler(outcome.Arg)
				cmd.Printf("%s\n\n%s\n", result.Title, result.Body)
			case resolve.OutcomeMatch:
				record := outcome.Record
				cmd.Printf("%s (%s, %s)\n", record.Name, record.Kind, record.Character.Name)
				if record.Description != "" {
					cmd.Println(record.Description)
				}
				if outcome.Score > 0 {
					cmd.Printf("closest match for %q (score %.3f)\n", outcome.Query, outcome.Score)
				}
			default:
				cmd.Printf("no results for %q\n", outcome.Query)
			}
			return nil
		},
	}
}
