package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/internal/render"
	"github.com/vzahanych/weather-lookup/internal/session"
	"go.uber.org/zap"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Search repeatedly, one city per line",
	Long: `Read city names from stdin, one per line. A new line supersedes the search
still in progress. Type "exit" or send EOF to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetConfig()
		sess := session.New(newPipeline(cfg), log.Logger, cfg.Lookup.QueueSize)

		return interactive(cmd.Context(), sess, render.New(cfg.Lookup.Language),
			cmd.InOrStdin(), cmd.OutOrStdout(), log.Logger)
	},
}

const prompt = "> "

// interactive feeds lines from in to sess and prints the events of the
// latest search to out. On EOF it waits for the last search to finish;
// cancelling ctx returns at once.
func interactive(ctx context.Context, sess *session.Session, r *render.Renderer, in io.Reader, out io.Writer, logger *zap.Logger) error {
	if err := sess.Start(ctx); err != nil {
		return err
	}

	finalGen := make(chan uint64, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		printEvents(sess, r, out, finalGen)
	}()

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Stop(stopCtx); err != nil {
			logger.Warn("Session stop failed", zap.Error(err))
		}
		<-done
	}()

	fmt.Fprint(out, prompt)

	lines, scanErr := readLines(ctx, in)

	var last uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return err
				}
				finalGen <- last
				return waitDone(ctx, done)
			}

			switch strings.TrimSpace(line) {
			case "exit", "quit":
				finalGen <- 0
				return waitDone(ctx, done)
			}

			gen, err := sess.Submit(line)
			if err != nil {
				return err
			}
			last = gen
		}
	}
}

// readLines scans in on its own goroutine so a blocked read never holds up
// cancellation. lines is closed at EOF, after which scanErr yields the
// scanner error. A read still blocked when ctx ends is abandoned.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	return lines, scanErr
}

// printEvents renders events until the search with the generation sent on
// finalGen has produced its result.
func printEvents(sess *session.Session, r *render.Renderer, out io.Writer, finalGen <-chan uint64) {
	var (
		completed uint64
		target    uint64
		waiting   bool
	)
	events := sess.Results()

	for {
		if waiting && completed >= target {
			return
		}

		select {
		case gen := <-finalGen:
			target, waiting = gen, true
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !sess.IsCurrent(ev) {
				continue
			}

			switch ev.Kind {
			case session.EventProgress:
				name := ""
				if ev.Location != nil {
					name = ev.Location.DisplayName
				}
				fmt.Fprintln(out, r.Progress(ev.Stage, name))
			case session.EventResult:
				completed = ev.Generation
				if ev.Err != nil {
					fmt.Fprintln(out, r.Error(ev.Err))
				} else {
					_ = r.Write(out, ev.Report)
				}
				fmt.Fprint(out, prompt)
			}
		}
	}
}

func waitDone(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
