package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Pool-Grenzen, -1 bedeutet stdlib-Default
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`
	GinMode  string `envconfig:"GIN_MODE" default:"release"`

	RoutePrefix   string `envconfig:"ROUTE_PREFIX" default:"/pride/archive/xiview/xi-converter"`
	XiviewBaseURL string `envconfig:"XIVIEW_BASE_URL" default:"https://www.ebi.ac.uk/pride/archive/xiview/network.html"`

	// Pfade, deren Requests nicht geloggt werden (werden sehr häufig aufgerufen)
	LogSuppressedPaths []string `envconfig:"LOG_SUPPRESSED_PATHS" default:"/data/visualisations/"`
	CORSAllowOrigins   []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`

	StatsSchedule string `envconfig:"STATS_SCHEDULE" default:"@every 1m"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
