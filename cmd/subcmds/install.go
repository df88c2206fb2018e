package subcmds

import (
	"github.com/vcnkl/browserprobe/actions"
	"github.com/vcnkl/browserprobe/browser"

	"github.com/urfave/cli/v2"
)

func InstallCmd() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Install the Playwright driver and browsers for the playwright target",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "browser",
				Aliases: []string{"b"},
				Value:   cli.NewStringSlice("chromium", "firefox"),
				Usage:   "Browsers to install",
			},
		},
		Action: func(ctx *cli.Context) error {
			log := newLogger(ctx)

			install := func(browsers []string) error {
				return browser.InstallPlaywright(browsers, log.Writer(), log.Writer())
			}

			if err := actions.NewInstallAction(install, log).Execute(ctx.Context, ctx.StringSlice("browser")); err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}

			return nil
		},
	}
}
