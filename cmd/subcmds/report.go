package subcmds

import (
	"fmt"
	"os"

	"github.com/vcnkl/browserprobe/report"
	"github.com/vcnkl/browserprobe/stores/reports"

	"github.com/urfave/cli/v2"
)

func ReportCmd() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Render a JSON report saved by run --report",
		ArgsUsage: "<file>",
		Action: func(ctx *cli.Context) error {
			if ctx.Args().Len() == 0 {
				return cli.Exit("error: report file argument required", 1)
			}

			store := reports.NewStore(ctx.Args().First())
			if err := store.Load(); err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}

			saved, _ := store.Get()
			fmt.Printf("Run started %s, took %dms\n", saved.StartedAt.Local().Format("2006-01-02 15:04:05"), saved.DurationMs)

			results := saved.ResultSet()
			if err := report.New(os.Stdout).Write(results); err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}

			if code := results.ExitCode(); code != 0 {
				return cli.Exit("", code)
			}

			return nil
		},
	}
}
