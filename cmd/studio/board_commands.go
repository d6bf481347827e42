package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studio/internal/board"
	"studio/internal/logging"
	"studio/internal/models"
	"studio/internal/taskapi"
	"studio/internal/tui"
)

const tuiLogName = "studio-tui.log"

func newBoardCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Work with the content board",
	}
	cmd.AddCommand(newBoardTUICommand(ctx))
	cmd.AddCommand(newBoardShowCommand(ctx))
	cmd.AddCommand(newBoardAddCommand(ctx))
	cmd.AddCommand(newBoardMoveCommand(ctx))
	cmd.AddCommand(newBoardEditCommand(ctx))
	cmd.AddCommand(newBoardHistoryCommand(ctx))
	return cmd
}

// boardSession bundles what a one-shot board command needs.
type boardSession struct {
	client *taskapi.Client
	board  *board.Reconciler
	logger *slog.Logger
}

func (c *commandContext) openBoard(cmd *cobra.Command) (*boardSession, error) {
	logger, err := c.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	client, err := c.client(logger)
	if err != nil {
		return nil, err
	}
	return &boardSession{
		client: client,
		board:  board.New(client, c.notifier(logger), board.WithLogger(logger)),
		logger: logger,
	}, nil
}

func newBoardTUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// The terminal belongs to gocui, so logs go to a file.
			logPath := filepath.Join(filepath.Dir(cfg.Storage.Path), tuiLogName)
			if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
				return fmt.Errorf("create log directory: %w", err)
			}
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()

			logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: "text", Output: logFile})
			if err != nil {
				return err
			}
			client, err := ctx.client(logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return tui.New(client, ctx.notifier(logger), logger).Run(runCtx)
		},
	}
}

func newBoardShowCommand(ctx *commandContext) *cobra.Command {
	var search string
	var due string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dueFilter, err := models.ParseDueFilter(due)
			if err != nil {
				return err
			}
			session, err := ctx.openBoard(cmd)
			if err != nil {
				return err
			}
			if err := session.board.Load(cmd.Context()); err != nil {
				return err
			}
			view := board.FilterDue(session.board.Search(search), dueFilter, time.Now())
			printBoard(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show cards whose title, description or tags contain the term")
	cmd.Flags().StringVar(&due, "due", "", "Only show cards due today or this week (today, week)")
	return cmd
}

func printBoard(out io.Writer, b board.Board) {
	rows := make([][]string, 0, b.Len())
	counts := make([]string, 0, len(b.Columns))
	for _, column := range b.Columns {
		counts = append(counts, fmt.Sprintf("%s %d", column.Title, len(column.Cards)))
		for _, card := range column.Cards {
			rows = append(rows, []string{
				column.Title,
				strconv.FormatInt(card.ID, 10),
				card.Title,
				fmt.Sprintf("%d%%", card.Progress()),
				card.DueDate,
				card.Platform,
				strings.Join(card.Tags, ", "),
			})
		}
	}
	caption := fmt.Sprintf("%d cards (%s)", b.Len(), strings.Join(counts, ", "))
	fmt.Fprintln(out, renderTable(boardColumns, rows, caption))
}

func newBoardAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Add a card to the Idea column",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.openBoard(cmd)
			if err != nil {
				return err
			}
			card, err := session.board.AddCard(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created #%d %q in %s\n", card.ID, card.Title, card.Stage)
			return nil
		},
	}
}

func newBoardMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <stage>",
		Short: "Move a card to another stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCardID(args[0])
			if err != nil {
				return err
			}
			stage, ok := models.ParseStage(args[1])
			if !ok {
				return fmt.Errorf("unknown stage %q (expected one of: %s)", args[1], models.StageNames())
			}
			session, err := ctx.openBoard(cmd)
			if err != nil {
				return err
			}
			card, column, err := loadCard(cmd.Context(), session, id)
			if err != nil {
				return err
			}
			if err := session.board.MoveCard(cmd.Context(), id, column, stage.Key()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved #%d %q from %s to %s (%d%%)\n", id, card.Title, card.Stage, stage, stage.Progress())
			return nil
		},
	}
}

func newBoardEditCommand(ctx *commandContext) *cobra.Command {
	var (
		title       string
		description string
		stage       string
		platform    string
		due         string
		tags        string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCardID(args[0])
			if err != nil {
				return err
			}
			session, err := ctx.openBoard(cmd)
			if err != nil {
				return err
			}
			card, _, err := loadCard(cmd.Context(), session, id)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				card.Title = title
			}
			if flags.Changed("description") {
				card.Description = description
			}
			if flags.Changed("stage") {
				card.Stage = models.Stage(stage)
			}
			if flags.Changed("platform") {
				card.Platform = platform
			}
			if flags.Changed("due") {
				card.DueDate = strings.TrimSpace(due)
			}
			if flags.Changed("tags") {
				card.Tags = models.SplitTags(tags)
			}

			if err := session.board.UpdateCard(cmd.Context(), card); err != nil {
				return err
			}
			updated, _, _ := session.board.Board().Find(id)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d %q (%s, %d%%)\n", id, updated.Title, updated.Stage, updated.Progress())
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&stage, "stage", "", "New stage ("+models.StageNames()+")")
	cmd.Flags().StringVar(&platform, "platform", "", "Target platform")
	cmd.Flags().StringVar(&due, "due", "", "Target release date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma separated tags")
	return cmd
}

func newBoardHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show the change history of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCardID(args[0])
			if err != nil {
				return err
			}
			session, err := ctx.openBoard(cmd)
			if err != nil {
				return err
			}
			entries, err := session.client.ListHistory(cmd.Context(), id)
			if err != nil {
				if taskapi.IsNotFound(err) {
					return fmt.Errorf("card %d not found", id)
				}
				return err
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.CreatedAt.Local().Format("2006-01-02 15:04"),
					entry.EventType,
					entry.Details,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(historyColumns, rows, fmt.Sprintf("%d changes to #%d", len(rows), id)))
			return nil
		},
	}
}

func parseCardID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(value), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid card id %q", value)
	}
	return id, nil
}

// loadCard loads the board and locates a card with its column.
func loadCard(ctx context.Context, session *boardSession, id int64) (board.Card, string, error) {
	if err := session.board.Load(ctx); err != nil {
		return board.Card{}, "", err
	}
	card, column, ok := session.board.Board().Find(id)
	if !ok {
		return board.Card{}, "", fmt.Errorf("card %d is not on the board", id)
	}
	return card, column, nil
}
