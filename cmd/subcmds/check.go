package subcmds

import (
	"os"

	"github.com/vcnkl/browserprobe/actions"

	"github.com/urfave/cli/v2"
)

func CheckCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Check drivers and browsers are installed without launching anything",
		Flags: selectionFlags(),
		Action: func(ctx *cli.Context) error {
			log := newLogger(ctx)

			cfg, err := loadConfig(ctx, log)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}

			targets, err := resolveTargets(ctx, cfg)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}

			results, err := actions.NewCheckAction(cfg, log, os.Stdout).Execute(ctx.Context, targets)
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
