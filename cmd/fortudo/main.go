package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/iconix/fortudo/internal/cli"
	"github.com/iconix/fortudo/internal/cli/backups"
	"github.com/iconix/fortudo/internal/cli/system"
	"github.com/iconix/fortudo/internal/cli/tasks"
	"github.com/iconix/fortudo/internal/constants"
	"github.com/iconix/fortudo/internal/keyring"
	"github.com/iconix/fortudo/internal/logger"
	"github.com/iconix/fortudo/internal/storage"
	"github.com/iconix/fortudo/internal/storage/postgres"
	"github.com/iconix/fortudo/internal/storage/sqlite"
)

type CLI struct {
	Version   kong.VersionFlag
	DebugMode bool   `help:"Enable debug logging." name:"debug"`
	Config    string `help:"Config file path or PostgreSQL connection string. When passing a PostgreSQL connection string via command-line flags, credentials must NOT be embedded. Use environment variables or a .pgpass file for command-line usage, or store a connection string with embedded credentials securely in the OS keyring via the 'keyring' commands." type:"string" default:"~/.config/fortudo/fortudo.db" env:"FORTUDO_CONFIG"`

	Init    system.InitCmd    `cmd:"" help:"Initialize fortudo storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Notify  system.NotifyCmd  `cmd:"" hidden:"" help:"Send a notification (used internally)."`

	Task struct {
		Add        tasks.TaskAddCmd        `cmd:"" help:"Add a new task, scheduled or backlog."`
		Edit       tasks.TaskEditCmd       `cmd:"" help:"Edit a scheduled task's description or interval."`
		Delete     tasks.TaskDeleteCmd     `cmd:"" help:"Delete a task."`
		List       tasks.TaskListCmd       `cmd:"" help:"List all tasks."`
		Complete   tasks.TaskCompleteCmd   `cmd:"" help:"Mark a task complete."`
		Lock       tasks.TaskLockCmd       `cmd:"" help:"Toggle a scheduled task's locked flag."`
		Unschedule tasks.TaskUnscheduleCmd `cmd:"" help:"Move a scheduled task back to the backlog."`
		Schedule   tasks.TaskScheduleCmd   `cmd:"" help:"Move a backlog item onto the calendar."`
		Clear      tasks.TaskClearCmd      `cmd:"" help:"Bulk-delete tasks (all, scheduled, or completed)."`
	} `cmd:"" help:"Manage tasks."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store database connection string in OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Retrieve database connection string from OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove database connection string from OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability and status."`
	} `cmd:"" help:"Manage database credentials in OS keyring."`

	store storage.Provider
}

func (c *CLI) AfterApply(ctx *kong.Context) error {
	configPath := c.Config
	if configPath == constants.DefaultConfigPath {
		configPath = os.ExpandEnv(configPath)
	}
	configDir := filepath.Dir(expandHome(configPath))

	cmdPath := ctx.Command()
	if err := logger.Init(logger.Config{
		Debug:     c.DebugMode,
		ConfigDir: configDir,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	if cmdPath == "keyring" || strings.HasPrefix(cmdPath, "keyring ") {
		return nil
	}

	configToUse := expandHome(c.Config)

	if configToUse == expandHome(constants.DefaultConfigPath) && os.Getenv("FORTUDO_CONFIG") == "" {
		if connStr, err := keyring.GetConnectionString(); err == nil {
			configToUse = connStr
			logger.Debug("using connection string from OS keyring")
		} else if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("failed to access OS keyring, falling back to default SQLite configuration", "error", err)
		}
	}

	isPostgres := strings.HasPrefix(configToUse, "postgres://") ||
		strings.HasPrefix(configToUse, "postgresql://") ||
		(strings.Contains(configToUse, " ") &&
			(strings.Contains(configToUse, "host=") ||
				strings.Contains(configToUse, "dbname=") ||
				strings.Contains(configToUse, "user=") ||
				strings.Contains(configToUse, "sslmode=")))

	var store storage.Provider
	if isPostgres {
		envConfig := os.Getenv("FORTUDO_CONFIG")
		configFromEnv := envConfig != "" && envConfig == configToUse
		configFromKeyring := configToUse != expandHome(c.Config)

		valid, err := postgres.ValidateConnString(configToUse)
		hasPasswordError := !valid && errors.Is(err, postgres.ErrEmbeddedCredentials)

		if !configFromEnv && !configFromKeyring && hasPasswordError {
			fmt.Fprintln(os.Stderr, "Error: PostgreSQL connection strings with embedded credentials are not allowed via command-line flags.")
			fmt.Fprintln(os.Stderr, "       Use an environment variable, a .pgpass file, or 'fortudo keyring set' instead.")
			os.Exit(1)
		} else if configFromEnv && hasPasswordError {
			logger.Warn("using embedded credentials in FORTUDO_CONFIG environment variable")
		}
		logger.Debug("using PostgreSQL storage backend")
		store = postgres.New(configToUse)
	} else {
		logger.Debug("using SQLite storage backend", "path", configToUse)
		store = sqlite.NewStore(configToUse)
	}

	c.store = store

	if !c.Init.Force && cmdPath != "init" {
		if err := store.Load(); err != nil {
			return err
		}
	}
	return nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func main() {
	kongCLI := CLI{}
	kctx := kong.Parse(&kongCLI,
		kong.Name(constants.AppName),
		kong.Description("Single-user day planner with an automatic rescheduling engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	var appCtx *cli.Context
	if kctx.Command() == "init" {
		appCtx = cli.NewUninitializedContext(kongCLI.store, time.Now)
	} else {
		var err error
		appCtx, err = cli.NewContext(kongCLI.store, time.Now)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := kctx.Run(appCtx); err != nil {
		logger.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
