package cmd

import (
	"github.com/oshokin/mongovm/internal/activation"
	"github.com/oshokin/mongovm/internal/catalog"
	"github.com/oshokin/mongovm/internal/config"
	"github.com/oshokin/mongovm/internal/installer"
	"github.com/oshokin/mongovm/internal/store"
	"github.com/oshokin/mongovm/internal/toolchain"
)

// app wires the core components from the loaded configuration.
// Every command builds a fresh one; there is no state shared across runs
// beyond the filesystem itself.
type app struct {
	cfg       *config.Config
	catalog   *catalog.Catalog
	store     *store.Store
	manager   *activation.Manager
	installer *installer.Installer
	runner    toolchain.Runner
}

// newApp loads the configuration and assembles the component graph.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	fetcher := &catalog.HTTPFetcher{}
	cat := catalog.New(fetcher, cfg.IndexURL)
	s := store.New(cfg.VersionsDir(), cfg.ServerBinary)
	runner := toolchain.CmdRunner{}
	manager := activation.NewManager(s, cfg.BinDir, cfg.ServerBinary, runner, cfg.Timeout)

	return &app{
		cfg:       cfg,
		catalog:   cat,
		store:     s,
		manager:   manager,
		installer: installer.New(cfg, cat, s, manager, fetcher, runner),
		runner:    runner,
	}, nil
}
