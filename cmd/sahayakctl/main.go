package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/sahayak-edu/sahayak-api/internal/config"
	"github.com/sahayak-edu/sahayak-api/internal/database"
	"github.com/sahayak-edu/sahayak-api/internal/history"
	"github.com/sahayak-edu/sahayak-api/internal/kvstore"
	"github.com/sahayak-edu/sahayak-api/internal/service"
)

// Version is set at build time.
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	kv, closeStore, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	if err := newCLIApp(kv, cfg).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(kv kvstore.Store, cfg config.Config) *cli.App {
	logger := zerolog.New(io.Discard)
	histories := history.NewProvider(kv, cfg.HistoryCap, logger)
	activity := service.NewActivityService(kv, histories, cfg.ActivityLogCap, logger)
	preferences := service.NewPreferenceService(kv, logger)

	return &cli.App{
		Name:    "sahayakctl",
		Usage:   "Inspect and maintain per-user teaching data",
		Version: Version,
		Commands: []*cli.Command{
			historyCmd(histories),
			statsCmd(activity),
			activitiesCmd(activity),
			clearCmd(activity),
			languageCmd(preferences),
		},
	}
}

func historyCmd(histories history.Provider) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Dump a module's saved entries for a user",
		ArgsUsage: "[module]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "User id"},
		},
		Action: func(c *cli.Context) error {
			module := history.Module(c.Args().First())
			if !module.Valid() {
				return cli.Exit(fmt.Sprintf("unknown module %q, expected one of %v", c.Args().First(), history.Modules()), 1)
			}

			store := histories(c.String("user")).Module(module)
			return outputJSON(store.List(context.Background()))
		},
	}
}

func statsCmd(activity service.ActivityService) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Recompute a user's dashboard counters",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "User id"},
		},
		Action: func(c *cli.Context) error {
			return outputJSON(activity.Stats(context.Background(), c.String("user")))
		},
	}
}

func activitiesCmd(activity service.ActivityService) *cli.Command {
	return &cli.Command{
		Name:  "activities",
		Usage: "Show a user's recent activity log",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "User id"},
		},
		Action: func(c *cli.Context) error {
			return outputJSON(activity.Recent(context.Background(), c.String("user")))
		},
	}
}

func clearCmd(activity service.ActivityService) *cli.Command {
	return &cli.Command{
		Name:  "clear-dashboard",
		Usage: "Delete a user's cached stats and activity log",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "User id"},
		},
		Action: func(c *cli.Context) error {
			if err := activity.Clear(context.Background(), c.String("user")); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fmt.Println("dashboard data cleared")
			return nil
		},
	}
}

func languageCmd(preferences service.PreferenceService) *cli.Command {
	return &cli.Command{
		Name:      "language",
		Usage:     "Show or set a user's language preference",
		ArgsUsage: "[code]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "User id"},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			userID := c.String("user")

			if c.NArg() > 0 {
				if err := preferences.SetLanguage(ctx, userID, c.Args().First()); err != nil {
					return cli.Exit(err.Error(), 1)
				}
			}

			fmt.Println(preferences.Language(ctx, userID))
			return nil
		},
	}
}

func openStore(cfg config.Config) (kvstore.Store, func(), error) {
	if cfg.RedisURL != "" {
		client, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return kvstore.NewRedis(client), func() { client.Close() }, nil
	}

	db, err := database.ConnectSQLite(cfg.StorePath)
	if err != nil {
		return nil, nil, err
	}

	store, err := kvstore.NewSQLite(db)
	if err != nil {
		return nil, nil, err
	}

	return store, func() {}, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
