package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/storage"
	"todo/internal/ui"
)

type App struct {
	ConfigPath string
	DataPath   string
	Backend    string
	LogLevel   string
}

// session is everything a command needs; close releases the store and log file.
type session struct {
	cfg   config.Config
	store *storage.Store
	log   *log.Logger
	close func()
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "todo",
		Short:        "Terminal task list",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive list
  todo

  # Scriptable commands
  todo add "Buy milk" --body "semi-skimmed"
  todo list --all
  todo done 0
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app)
			if err != nil {
				return err
			}
			defer s.close()
			return ui.Run(s.store, s.cfg, s.log)
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to config.toml (default: $TODO_CONFIG or the user config dir)")
	cmd.PersistentFlags().StringVar(&app.DataPath, "data", "", "Path to the task data file (overrides config)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Storage encoding: json, lines or sqlite (overrides config)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newClearCmd(app))

	return cmd
}

func (a *App) loadConfig() (config.Config, error) {
	path := a.ConfigPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if a.Backend != "" {
		cfg.Backend = a.Backend
		if a.DataPath == "" && os.Getenv("TODO_DATA_FILE") == "" {
			cfg.DataPath = config.DataFileFor(a.Backend)
		}
	}
	if a.DataPath != "" {
		cfg.DataPath = a.DataPath
	}
	if a.LogLevel != "" {
		cfg.LogLevel = a.LogLevel
	}
	return cfg, nil
}

func openSession(a *App) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, logFile, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	backend, err := storage.OpenBackend(cfg.Backend, cfg.DataPath)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	store, err := storage.Open(backend, logger)
	if err != nil {
		backend.Close()
		logFile.Close()
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return &session{
		cfg:   cfg,
		store: store,
		log:   logger,
		close: func() {
			if err := store.Close(); err != nil {
				logger.Error("close storage", "err", err)
			}
			logFile.Close()
		},
	}, nil
}

