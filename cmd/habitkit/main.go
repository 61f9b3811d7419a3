package main

import (
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"github.com/habitkit/habitkit/internal/backup"
	"github.com/habitkit/habitkit/internal/cli"
	"github.com/habitkit/habitkit/internal/config"
	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/errors"
	"github.com/habitkit/habitkit/internal/habit"
	"github.com/habitkit/habitkit/internal/keyring"
	"github.com/habitkit/habitkit/internal/logger"
	"github.com/habitkit/habitkit/internal/network"
	"github.com/habitkit/habitkit/internal/reminder"
	"github.com/habitkit/habitkit/internal/remote"
	"github.com/habitkit/habitkit/internal/storage"
	"github.com/habitkit/habitkit/internal/syncer"
)

var CLI struct {
	Version kong.VersionFlag
	Offline bool `help:"Skip all remote calls and work from local data only."`
	Debug   bool `help:"Enable debug logging."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize habitkit storage."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive today view." default:"1"`
	Habit    cli.HabitCmd    `cmd:"" help:"Manage habits and completions."`
	Sync     cli.SyncCmd     `cmd:"" help:"Sync with the configured remote."`
	Settings cli.SettingsCmd `cmd:"" help:"Manage application settings."`
	Data     cli.DataCmd     `cmd:"" help:"Export, import, or clear local data."`
	Backup   cli.BackupCmd   `cmd:"" help:"Manage store backups."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Notify   cli.NotifyCmd   `cmd:"" hidden:"" help:"Deliver due reminders (used internally)."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("habitkit"),
		kong.Description("Offline-first habit tracking companion"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load()
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug || CLI.Debug,
		ConfigDir: filepath.Dir(cfg.StorePath),
	}); err != nil {
		errors.Fatalf("failed to initialize logging: %v", err)
	}

	kv, err := openStore(cfg)
	if err != nil {
		errors.Fatal(err)
	}
	store := storage.NewLocalStore(kv)
	defer store.Close()

	backend, oracle, err := openRemote(cfg)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Offline {
		oracle = network.NewStatic(false)
	}

	scheduler := reminder.NewLogScheduler(kv)
	coord := syncer.New(store, backend, oracle)
	manager := habit.NewManager(store, coord, reminder.NewMapper(scheduler))

	appCtx := &cli.Context{
		Config:    cfg,
		Store:     store,
		Manager:   manager,
		Sync:      coord,
		Oracle:    oracle,
		Backup:    backup.NewManager(store, cfg.StoreFile()),
		Scheduler: scheduler,
	}

	if err := ctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
}

func openStore(cfg *config.Config) (storage.KV, error) {
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		return storage.NewSQLiteStore(cfg.StoreFile())
	default:
		return storage.NewDiskvStore(cfg.StorePath)
	}
}

// openRemote assembles the sync backend and the connectivity oracle for
// it. Credentials come from the OS keyring, never from the config file.
func openRemote(cfg *config.Config) (remote.Backend, network.Oracle, error) {
	switch cfg.RemoteKind {
	case config.RemoteREST:
		token, err := keyring.Get(keyring.RemoteToken)
		if err != nil && err != keyring.ErrNotFound {
			return nil, nil, err
		}
		backend := remote.NewRESTBackend(cfg.RemoteAddress, token)
		probeURL := cfg.ProbeURL
		if probeURL == "" {
			probeURL = backend.ProbeURL()
		}
		return backend, network.NewProbe(probeURL, 30*time.Second), nil

	case config.RemotePostgres:
		dsn, err := keyring.Get(keyring.PostgresDSN)
		if err == keyring.ErrNotFound {
			dsn = cfg.RemoteAddress
		} else if err != nil {
			return nil, nil, err
		}
		backend, err := remote.NewPostgresBackend(dsn)
		if err != nil {
			return nil, nil, err
		}
		if cfg.ProbeURL != "" {
			return backend, network.NewProbe(cfg.ProbeURL, 30*time.Second), nil
		}
		// Without a probe target, assume online and let failed calls
		// degrade to local writes
		return backend, network.NewStatic(true), nil

	default:
		// No remote configured: a permanently offline oracle keeps the
		// coordinator from ever touching the backend
		return remote.NewRESTBackend("", ""), network.NewStatic(false), nil
	}
}
