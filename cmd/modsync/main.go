package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/modsync/internal"
)

var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "modsync",
		Usage:   "Keep the mod registry, load order and deactivated mods of Baldur's Gate 3 in sync",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: internal.ConfigFileName,
				Value:       internal.ConfigFileName,
				Sources:     cli.EnvVars("MODSYNC_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			initCommand(),
			installCommand(),
			updateCommand(),
			listCommand(),
			refreshCommand(),
			reorderCommand(),
			activateCommand(),
			deactivateCommand(),
			backupsCommand(),
			historyCommand(),
			watchCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errReported) {
			slog.Error(err.Error())
		}
		os.Exit(1)
	}
}

// errReported marks an error the app logger has already shown.
var errReported = errors.New("reported")

type appAction func(ctx context.Context, app *internal.App, cmd *cli.Command) error

// withApp loads the config, opens the app for the duration of fn and
// reports fn's error through the app logger.
func withApp(fn appAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := internal.LoadConfig(cmd.String("config"))
		if err != nil {
			return err
		}
		app, err := internal.Open(internal.WithConfig(cfg), internal.WithVersion(version))
		if err != nil {
			return err
		}
		defer app.Close()

		if err := fn(ctx, app, cmd); err != nil {
			app.Logger.Error(describe(err))
			return fmt.Errorf("%w: %w", errReported, err)
		}
		return nil
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Create the working folders, an empty registry and a config template",
		ArgsUsage: "[dir]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			dir := "."
			if cmd.Args().Len() > 0 {
				dir = cmd.Args().First()
			}
			created, err := internal.Init(dir)
			for _, p := range created {
				fmt.Println("Created", p)
			}
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Println("Already initialized.")
			}
			return nil
		},
	}
}
