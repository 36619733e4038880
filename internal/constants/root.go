package constants

import "time"

const (
	AppName            = "fortudo"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/fortudo/fortudo.db"
	Version            = "v0.1.0"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "fortudo-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries = 3
	NotifyRetryDelay = 100 * time.Millisecond

	// Notification constants
	NotifierLockfileName   = "fortudo-tray.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.fortudo.fortudo-tray"
)
