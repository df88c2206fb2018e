package cmd

import (
	"github.com/vcnkl/browserprobe/cmd/subcmds"

	"github.com/urfave/cli/v2"
)

func NewApp() *cli.App {
	return &cli.App{
		Name:           "browserprobe",
		Usage:          "Smoke-test browser automation drivers on this host",
		Version:        "1.0.0",
		DefaultCommand: "run",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to browserprobe.yml (default: ./browserprobe.yml if present)",
			},
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "Load environment variables from a dotenv file",
			},
		},
		Commands: []*cli.Command{
			subcmds.RunCmd(),
			subcmds.CheckCmd(),
			subcmds.TargetsCmd(),
			subcmds.WatchCmd(),
			subcmds.ReportCmd(),
			subcmds.InstallCmd(),
		},
	}
}
