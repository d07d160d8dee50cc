package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/modsync/internal"
	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/engine"
	"github.com/starford/modsync/internal/modservice"
	"github.com/starford/modsync/internal/render"
)

var stdout io.Writer = os.Stdout

func printLines(lines []string) {
	for _, l := range lines {
		fmt.Fprintln(stdout, l)
	}
}

// describe turns an error into the one line shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, apperr.ErrConfigNotFound):
		return err.Error() + ". Run 'modsync init' and fill in conf.toml."
	case errors.Is(err, apperr.ErrNotInitialized):
		return err.Error() + ". Run 'modsync init' first."
	case errors.Is(err, apperr.ErrConflict):
		return err.Error() + ". Nothing was written, run the command again."
	default:
		return err.Error()
	}
}

// parseNumber reads the mod number argument of activate, deactivate and
// backups delete.
func parseNumber(cmd *cli.Command) (int, error) {
	if cmd.Args().Len() != 1 {
		return 0, fmt.Errorf("expected one mod number: %w", apperr.ErrInvalidInput)
	}
	arg := strings.TrimSpace(cmd.Args().First())
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q is not a mod number: %w", arg, apperr.ErrInvalidInput)
	}
	return n, nil
}

func installCommand() *cli.Command {
	return &cli.Command{
		Name:    "install",
		Aliases: []string{"in", "i"},
		Usage:   "Install mods (.zip) from the mods directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "update", Aliases: []string{"u"}, Usage: "Re-extract archives and overwrite pak files"},
		},
		Action: withApp(func(ctx context.Context, app *internal.App, cmd *cli.Command) error {
			return runInstall(ctx, app, cmd.Bool("update"))
		}),
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Same as install --update",
		Action: withApp(func(ctx context.Context, app *internal.App, _ *cli.Command) error {
			return runInstall(ctx, app, true)
		}),
	}
}

func runInstall(ctx context.Context, app *internal.App, update bool) error {
	app.Logger.Debug("Scanning for packages", slog.String("dir", app.Service.Layout().ModsPath()))
	report, err := app.Service.Install(ctx, update)
	if report != nil {
		printLines(render.InstallReport(report))
	}
	return err
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls", "l"},
		Usage:   "List registered mods",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "active", Usage: "Show only active mods"},
			&cli.BoolFlag{Name: "inactive", Usage: "Show only inactive mods"},
		},
		Action: withApp(func(ctx context.Context, app *internal.App, cmd *cli.Command) error {
			f, err := modservice.NewFilter(cmd.Bool("active"), cmd.Bool("inactive"))
			if err != nil {
				return err
			}
			rows, err := app.Service.List(ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, render.Mods(rows))
			return nil
		}),
	}
}

func refreshCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Pick up changes made to modsettings.lsx by the in-game mod manager",
		Action: withApp(func(ctx context.Context, app *internal.App, _ *cli.Command) error {
			res, err := app.Service.Refresh(ctx)
			if err != nil {
				return err
			}
			printLines(render.Result(res))
			return nil
		}),
	}
}

func activateCommand() *cli.Command {
	return &cli.Command{
		Name:      "activate",
		Aliases:   []string{"enable"},
		Usage:     "Activate a deactivated mod",
		ArgsUsage: "<number>",
		Action: withApp(func(ctx context.Context, app *internal.App, cmd *cli.Command) error {
			n, err := parseNumber(cmd)
			if err != nil {
				return err
			}
			res, err := app.Service.Activate(ctx, n)
			if err != nil {
				return err
			}
			printLines(render.Result(res))
			return nil
		}),
	}
}

func deactivateCommand() *cli.Command {
	return &cli.Command{
		Name:      "deactivate",
		Aliases:   []string{"disable"},
		Usage:     "Deactivate a mod so the game does not load it",
		ArgsUsage: "<number>",
		Action: withApp(func(ctx context.Context, app *internal.App, cmd *cli.Command) error {
			n, err := parseNumber(cmd)
			if err != nil {
				return err
			}
			res, err := app.Service.Deactivate(ctx, n)
			if err != nil {
				return err
			}
			printLines(render.Result(res))
			return nil
		}),
	}
}

func reorderCommand() *cli.Command {
	return &cli.Command{
		Name:  "reorder",
		Usage: "Move mods to the beginning, the end or after another mod",
		Description: "Without flags, shows the mod table and asks for a comma-separated list of\n" +
			"numbers, then for a placement: b (beginning), e (end), a N (after mod N) or c (cancel).",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "select", Aliases: []string{"s"}, Usage: `Mods to move, e.g. "2, 5"`},
			&cli.StringFlag{Name: "place", Aliases: []string{"p"}, Usage: `Placement: "b", "e", "a N" or "c"`},
		},
		Action: withApp(func(ctx context.Context, app *internal.App, cmd *cli.Command) error {
			sel, place := cmd.String("select"), cmd.String("place")
			if sel == "" && place == "" {
				return reorderInteractive(ctx, app, os.Stdin)
			}
			if sel == "" || place == "" {
				return fmt.Errorf("--select and --place go together: %w", apperr.ErrInvalidInput)
			}
			selected, err := engine.ParseSelection(sel)
			if err != nil {
				return err
			}
			placement, err := engine.ParsePlacement(place)
			if err != nil {
				return err
			}
			return runReorder(ctx, app, selected, placement)
		}),
	}
}

func reorderInteractive(ctx context.Context, app *internal.App, in io.Reader) error {
	rows, err := app.Service.List(ctx, modservice.FilterAll)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, render.Mods(rows))

	scanner := bufio.NewScanner(in)
	prompt := func(text string) string {
		fmt.Fprintln(stdout, text)
		if !scanner.Scan() {
			return ""
		}
		return scanner.Text()
	}

	selected, err := engine.ParseSelection(prompt("Select mods by typing a comma-separated list of numbers."))
	if err != nil {
		return err
	}

	byNumber := make(map[int]string, len(rows))
	for _, r := range rows {
		byNumber[r.Number] = r.Name
	}
	lines := []string{"", "You have selected:"}
	for _, n := range selected {
		if name, ok := byNumber[n]; ok {
			lines = append(lines, "-> "+name)
		}
	}
	printLines(lines)

	placement, err := engine.ParsePlacement(prompt(`
Choose one of these actions by typing the letter with any arguments:
 [b] Place at beginning
 [e] Place at end
 [a] Place after some [mod number]
 [c] Cancel`))
	if err != nil {
		return err
	}
	return runReorder(ctx, app, selected, placement)
}

func runReorder(ctx context.Context, app *internal.App, selected []int, placement engine.Placement) error {
	res, err := app.Service.Reorder(ctx, selected, placement)
	if err != nil {
		return err
	}
	printLines(render.Result(res))
	return nil
}

func backupsCommand() *cli.Command {
	return &cli.Command{
		Name:  "backups",
		Usage: "List backup fragments of deactivated mods",
		Action: withApp(func(ctx context.Context, app *internal.App, _ *cli.Command) error {
			rows, err := app.Service.Backups(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, render.Backups(rows))
			return nil
		}),
		Commands: []*cli.Command{
			{
				Name:      "delete",
				Usage:     "Delete the backup fragment of an active mod",
				ArgsUsage: "<number>",
				Action: withApp(func(ctx context.Context, app *internal.App, cmd *cli.Command) error {
					n, err := parseNumber(cmd)
					if err != nil {
						return err
					}
					row, err := app.Service.DeleteBackup(ctx, n)
					if err != nil {
						return err
					}
					fmt.Fprintf(stdout, "Deleted the backup of %s.\n", row.Name)
					return nil
				}),
			},
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent operations",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Number of entries"},
		},
		Action: withApp(func(ctx context.Context, app *internal.App, cmd *cli.Command) error {
			entries, err := app.Service.History(ctx, int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, render.History(entries))
			return nil
		}),
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Refresh whenever modsettings.lsx changes, until interrupted",
		Action: withApp(func(ctx context.Context, app *internal.App, _ *cli.Command) error {
			return app.Watch(ctx, func(res *engine.Result, err error) {
				if err != nil {
					app.Logger.Error(describe(err))
					return
				}
				if res.Outcome == engine.Applied {
					printLines(render.Result(res))
				}
			})
		}),
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the mod tools over MCP on stdio",
		Action: withApp(func(_ context.Context, app *internal.App, _ *cli.Command) error {
			return app.ServeMCP()
		}),
	}
}
