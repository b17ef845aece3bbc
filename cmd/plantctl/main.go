// Package main содержит консольный клиент API движка прогрессии.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mmeshcher/moneywise/internal/client"
)

const usage = `usage: plantctl [flags] <command> [args]

commands:
  status                  show plant stage and progress
  log <action>            record an action (expense, chat, lesson, savings-goal,
                          savings-goal-achieved, weekly-review, budget, budget-met)
  points <n> <reason>     award arbitrary points
  streak                  run the daily streak check
  levelup                 check for a stage level-up
  reset                   delete all progression data

flags:
`

type options struct {
	Address string        `env:"MONEYWISE_ADDRESS"`
	Token   string        `env:"API_TOKEN"`
	Timeout time.Duration `env:"MONEYWISE_TIMEOUT"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "plantctl:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var envOpts options
	if err := env.Parse(&envOpts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("plantctl", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	opts := options{}
	fs.StringVar(&opts.Address, "a", "localhost:8080", "progression server address")
	fs.StringVar(&opts.Token, "t", "", "bearer token")
	fs.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "request timeout")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if envOpts.Address != "" {
		opts.Address = envOpts.Address
	}
	if envOpts.Token != "" {
		opts.Token = envOpts.Token
	}
	if envOpts.Timeout > 0 {
		opts.Timeout = envOpts.Timeout
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("command is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	return execute(ctx, client.NewClient(opts.Address, opts.Token), fs.Args(), out)
}

func execute(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "status":
		p, err := c.Profile(ctx)
		if err != nil {
			return err
		}
		printProfile(out, p)

	case "log":
		if len(rest) != 1 {
			return errors.New("usage: plantctl log <action>")
		}
		res, err := c.RecordAction(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "recorded %s, total points: %d\n", rest[0], res.TotalPoints)
		if res.LeveledUp {
			fmt.Fprintf(out, "your plant grew into a %s (%s)!\n", res.Stage, res.StageDisplayName)
		}

	case "points":
		if len(rest) < 2 {
			return errors.New("usage: plantctl points <n> <reason>")
		}
		amount, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", rest[0], err)
		}
		total, err := c.AddPoints(ctx, amount, strings.Join(rest[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "total points: %d\n", total)

	case "streak":
		res, err := c.CheckStreak(ctx)
		if err != nil {
			return err
		}
		if res.Updated {
			fmt.Fprintf(out, "streak updated: %d day(s)\n", res.CurrentStreak)
		} else {
			fmt.Fprintf(out, "streak already counted today: %d day(s)\n", res.CurrentStreak)
		}

	case "levelup":
		res, err := c.CheckLevelUp(ctx)
		if err != nil {
			return err
		}
		if res.LeveledUp {
			fmt.Fprintf(out, "level up! stage: %s (%s)\n", res.Stage, res.StageDisplayName)
		} else {
			fmt.Fprintf(out, "no level up, stage: %s (%s)\n", res.Stage, res.StageDisplayName)
		}

	case "reset":
		if err := c.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "progression reset")

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}

func printProfile(out io.Writer, p *client.Profile) {
	fmt.Fprintf(out, "stage:          %s (%s)\n", p.Stage, p.StageDisplayName)
	fmt.Fprintf(out, "total points:   %d\n", p.TotalPoints)
	if p.NextStage != "" {
		fmt.Fprintf(out, "next stage:     %s in %d points (%.0f%%)\n", p.NextStage, p.PointsToNextStage, p.ProgressToNextStage*100)
	}
	fmt.Fprintf(out, "current streak: %d\n", p.CurrentStreak)
	fmt.Fprintf(out, "wellness score: %d\n", p.WellnessScore)
	fmt.Fprintf(out, "expenses: %d  lessons: %d  chats: %d  goals: %d/%d  reviews: %d  budget days: %d\n",
		p.TotalExpensesLogged, p.FinancialLessonsRead, p.ChatInteractions,
		p.SavingsGoalsAchieved, p.SavingsGoalsSet, p.WeeklyReviewsCompleted, p.DaysWithBudgetCompliance)
	if p.RecentlyLeveledUp {
		fmt.Fprintln(out, "your plant recently grew!")
	}
	fmt.Fprintln(out, p.Motivation)
}
