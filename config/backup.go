package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// BackupConfig enthält die Parameter für cmd/backup. Die DB_* Variablen
// sind dieselben wie beim API-Server.
type BackupConfig struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	BackupBucket    string `envconfig:"BACKUP_S3_BUCKET" required:"true"`
	BackupEndpoint  string `envconfig:"BACKUP_S3_ENDPOINT" required:"true"`
	BackupAccessKey string `envconfig:"BACKUP_S3_ACCESS_KEY" required:"true"`
	BackupSecretKey string `envconfig:"BACKUP_S3_SECRET_KEY" required:"true"`
	BackupRegion    string `envconfig:"BACKUP_S3_REGION" required:"true"`
	BackupPrefix    string `envconfig:"BACKUP_S3_PREFIX" default:"xiview/"`
	KeepBackups     int    `envconfig:"KEEP_BACKUPS" default:"4"`
}

// LoadBackup lädt die Backup-Konfiguration aus den Umgebungsvariablen.
func LoadBackup() (*BackupConfig, error) {
	_ = godotenv.Load()
	var c BackupConfig
	err := envconfig.Process("", &c)
	return &c, err
}
