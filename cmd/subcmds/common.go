package subcmds

import (
	"github.com/vcnkl/browserprobe/config"
	"github.com/vcnkl/browserprobe/exec"
	"github.com/vcnkl/browserprobe/logger"
	"github.com/vcnkl/browserprobe/models"

	"github.com/urfave/cli/v2"
)

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "include",
			Aliases: []string{"i"},
			Usage:   "Enable these targets, including ones disabled by default",
		},
		&cli.StringSliceFlag{
			Name:    "exclude",
			Aliases: []string{"x"},
			Usage:   "Skip these targets",
		},
	}
}

func newLogger(ctx *cli.Context) logger.Logger {
	level := logger.InfoLevel
	if ctx.Bool("debug") {
		level = logger.DebugLevel
	}
	return logger.New(level)
}

// loadConfig exports the env file, if any, then reads the config file.
func loadConfig(ctx *cli.Context, log logger.Logger) (*config.Config, error) {
	if path := ctx.String("env-file"); path != "" {
		vars, err := exec.ApplyEnvFile(path)
		if err != nil {
			return nil, err
		}
		log.Debug("env file loaded", logger.String("path", path), logger.Int("vars", len(vars)))
	}

	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		log.Debug("config loaded", logger.String("path", cfg.Path()))
	}
	return cfg, nil
}

func resolveTargets(ctx *cli.Context, cfg *config.Config) ([]models.Target, error) {
	return cfg.ResolveTargets(ctx.StringSlice("include"), ctx.StringSlice("exclude"))
}
