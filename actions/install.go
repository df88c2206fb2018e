package actions

import (
	"context"

	"github.com/vcnkl/browserprobe/logger"
)

type Installer func(browsers []string) error

type InstallAction struct {
	install Installer
	log     logger.Logger
}

func NewInstallAction(install Installer, log logger.Logger) *InstallAction {
	return &InstallAction{
		install: install,
		log:     log,
	}
}

func (a *InstallAction) Execute(ctx context.Context, browsers []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(browsers) == 0 {
		a.log.Info("installing playwright driver and default browsers...")
	} else {
		a.log.Info("installing playwright driver and browsers...", logger.Strings("browsers", browsers))
	}

	if err := a.install(browsers); err != nil {
		return err
	}

	a.log.Info("playwright installed")
	return nil
}
