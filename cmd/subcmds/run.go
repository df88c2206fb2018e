package subcmds

import (
	"os"

	"github.com/vcnkl/browserprobe/actions"

	"github.com/urfave/cli/v2"
)

func RunCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Launch every enabled browser target and verify a test page loads",
		Flags: append(selectionFlags(),
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"r"},
				Usage:   "Save the run as a JSON report at this path",
			},
			&cli.DurationFlag{
				Name:  "session-timeout",
				Usage: "Deadline for each launch-load-verify cycle (0 = none)",
			},
		),
		Action: func(ctx *cli.Context) error {
			log := newLogger(ctx)

			cfg, err := loadConfig(ctx, log)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}
			if ctx.IsSet("session-timeout") {
				cfg.Timeouts.Session = ctx.Duration("session-timeout")
			}

			targets, err := resolveTargets(ctx, cfg)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}

			action := actions.NewProbeAction(cfg, log, os.Stdout).
				Debug(ctx.Bool("debug")).
				SaveReport(ctx.String("report"))

			results, err := action.Execute(ctx.Context, targets)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}

			if code := results.ExitCode(); code != 0 {
				return cli.Exit("", code)
			}

			return nil
		},
	}
}
