package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"moods/internal/app"
	"moods/internal/domain"
)

// withProvider opens the journal, waits for the initial load and runs fn.
// Pending saves are flushed before it returns.
func (c *cli) withProvider(ctx context.Context, fn func(*app.MoodProvider) error) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	provider, closeProvider, err := openProvider(ctx, c.cfg, c.log, nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeProvider(context.Background()); cerr != nil && err == nil {
			err = cerr
		}
	}()

	select {
	case <-provider.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}
	return fn(provider)
}

func newAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <emoji> <description>",
		Short: "Record a mood",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mood := domain.MoodOption{Emoji: args[0], Description: strings.Join(args[1:], " ")}
			return c.withProvider(cmd.Context(), func(p *app.MoodProvider) error {
				entry, err := p.SelectMood(cmd.Context(), mood)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s %s\n", entry.Timestamp, entry.Mood.Emoji, entry.Mood.Description)
				return nil
			})
		},
	}
}

func newListCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded moods in journal order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withProvider(cmd.Context(), func(p *app.MoodProvider) error {
				entries := p.List()
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), domain.AppData{Moods: entries})
				}
				printEntries(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored document as JSON")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <timestamp>",
		Short: "Delete the moods recorded at a timestamp (ms)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid timestamp %q", args[0])
			}
			return c.withProvider(cmd.Context(), func(p *app.MoodProvider) error {
				n, err := p.DeleteMood(cmd.Context(), ts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", n)
				return nil
			})
		},
	}
}

func newAnalyticsCmd(c *cli) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Summarise moods overall and per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withProvider(cmd.Context(), func(p *app.MoodProvider) error {
				summary := app.NewAnalyticsService(p).Summarize(days)
				printSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "number of local days in the daily breakdown")
	return cmd
}

func newResetCmd(c *cli) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every recorded mood from storage",
		Long: `reset deletes the stored mood document. Stop any running "moods serve"
on the same storage first, or its next save writes the old list back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				return errors.New("refusing to reset without --force")
			}
			return c.reset(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm removing all moods")
	return cmd
}

func (c *cli) reset(ctx context.Context, w io.Writer) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	kv, closeStore, err := openStore(c.cfg.Storage)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", c.cfg.Storage.Driver, err)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	storage := app.NewMoodStorage(kv, c.cfg.Storage.Key, c.log, nil)
	if err := storage.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(w, "reset", storage.Key())
	return nil
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for MOODS_OWNER_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		// Needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := app.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func printEntries(w io.Writer, entries []domain.MoodEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No moods recorded.")
		return
	}
	for _, e := range entries {
		at := e.CreatedAt().Local().Format(time.DateTime)
		fmt.Fprintf(w, "%d  %s  %s %s\n", e.Timestamp, at, e.Mood.Emoji, e.Mood.Description)
	}
}

func printSummary(w io.Writer, s app.Summary) {
	fmt.Fprintf(w, "Total: %d\n", s.Total)
	for _, mc := range s.ByMood {
		fmt.Fprintf(w, "  %s %-20s %d\n", mc.Mood.Emoji, mc.Mood.Description, mc.Count)
	}
	fmt.Fprintln(w)
	for _, d := range s.Daily {
		fmt.Fprintf(w, "%s  %d\n", d.Day, d.Total)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
