package subcmds

import (
	"context"
	"os"

	"github.com/vcnkl/browserprobe/actions"
	"github.com/vcnkl/browserprobe/config"

	"github.com/urfave/cli/v2"
)

func WatchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Rerun the probes whenever the config or env file changes",
		Flags: selectionFlags(),
		Action: func(ctx *cli.Context) error {
			log := newLogger(ctx)

			cfg, err := loadConfig(ctx, log)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}

			files := []string{config.DefaultFileName}
			if cfg.Path() != "" {
				files[0] = cfg.Path()
			}
			if envFile := ctx.String("env-file"); envFile != "" {
				files = append(files, envFile)
			}

			suite := func(runCtx context.Context) error {
				cfg, err := loadConfig(ctx, log)
				if err != nil {
					return err
				}

				targets, err := resolveTargets(ctx, cfg)
				if err != nil {
					return err
				}

				_, err = actions.NewProbeAction(cfg, log, os.Stdout).
					Debug(ctx.Bool("debug")).
					Execute(runCtx, targets)
				return err
			}

			if err = actions.NewWatchAction(files, suite, log).Execute(ctx.Context); err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}

			return nil
		},
	}
}
