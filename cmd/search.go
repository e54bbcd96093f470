package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/internal/geocoding"
	"github.com/vzahanych/weather-lookup/internal/lookup"
	"github.com/vzahanych/weather-lookup/internal/render"
)

var searchCmd = &cobra.Command{
	Use:   "search <city>",
	Short: "Look up the weather for a city once",
	Long:  `Resolve the city, print the current conditions followed by one line per forecast day, and exit.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetConfig()
		city := strings.Join(args, " ")

		err := search(cmd.Context(), newPipeline(cfg), render.New(cfg.Lookup.Language), city, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			// Already rendered for the user.
			cmd.SilenceErrors = true
		}
		return err
	},
}

type searcher interface {
	Search(ctx context.Context, city string, progress lookup.ProgressFunc) (*lookup.Report, error)
}

// search runs one lookup, streaming progress to errOut and the report to out.
func search(ctx context.Context, s searcher, r *render.Renderer, city string, out, errOut io.Writer) error {
	report, err := s.Search(ctx, city, func(stage lookup.Stage, loc *geocoding.Location) {
		name := ""
		if loc != nil {
			name = loc.DisplayName
		}
		fmt.Fprintln(errOut, r.Progress(stage, name))
	})
	if err != nil {
		fmt.Fprintln(errOut, r.Error(err))
		return err
	}

	return r.Write(out, report)
}
