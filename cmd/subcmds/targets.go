package subcmds

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vcnkl/browserprobe/report"

	"github.com/urfave/cli/v2"
)

func TargetsCmd() *cli.Command {
	return &cli.Command{
		Name:  "targets",
		Usage: "List the resolved browser targets",
		Flags: append(selectionFlags(),
			&cli.StringFlag{
				Name:  "format",
				Value: "text",
				Usage: "Output format: text (default), json",
			},
		),
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

			switch ctx.String("format") {
			case "json":
				data, err := json.MarshalIndent(targets, "", "  ")
				if err != nil {
					return cli.Exit("error: "+err.Error(), 1)
				}
				fmt.Println(string(data))
			case "text":
				if err = report.New(os.Stdout).WriteTargets(targets); err != nil {
					return cli.Exit("error: "+err.Error(), 1)
				}
			default:
				return cli.Exit(fmt.Sprintf("error: unknown format %q", ctx.String("format")), 1)
			}

			return nil
		},
	}
}
