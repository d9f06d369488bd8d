package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Order    OrderConfig
	Bulk     BulkConfig
	Restock  RestockConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type OrderConfig struct {
	TxTimeout        time.Duration
	MaxRetryAttempts int
}

type BulkConfig struct {
	MaxItems int
}

type RestockConfig struct {
	Threshold int
	Target    int
}

type JobsConfig struct {
	APIURL            string
	MaxRetries        int
	Timeout           time.Duration
	LowStockLog       string
	RemindersLog      string
	ReportLog         string
	LowStockSchedule  string
	RemindersSchedule string
	ReportSchedule    string
	ReminderWindow    time.Duration
}

// Load reads configuration from the environment, optionally layered over a
// config file. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "crm")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "crm")
	v.SetDefault("DB_PATH", "crm.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ORDER_TX_TIMEOUT", "5s")
	v.SetDefault("ORDER_MAX_RETRY_ATTEMPTS", 3)
	v.SetDefault("BULK_MAX_ITEMS", 100)
	v.SetDefault("RESTOCK_THRESHOLD", 10)
	v.SetDefault("RESTOCK_TARGET", 20)
	v.SetDefault("JOBS_API_URL", "http://localhost:8080")
	v.SetDefault("JOBS_MAX_RETRIES", 3)
	v.SetDefault("JOBS_TIMEOUT", "10s")
	v.SetDefault("JOBS_LOW_STOCK_LOG", "/tmp/low_stock_updates_log.txt")
	v.SetDefault("JOBS_REMINDERS_LOG", "/tmp/order_reminders_log.txt")
	v.SetDefault("JOBS_REPORT_LOG", "/tmp/crm_report_log.txt")
	v.SetDefault("JOBS_LOW_STOCK_SCHEDULE", "0 0 */12 * * *")
	v.SetDefault("JOBS_REMINDERS_SCHEDULE", "0 30 8 * * *")
	v.SetDefault("JOBS_REPORT_SCHEDULE", "0 0 6 * * 1")
	v.SetDefault("JOBS_REMINDER_WINDOW", "168h")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	connMaxLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_CONN_MAX_LIFETIME: %w", err)
	}

	orderTxTimeout, err := time.ParseDuration(v.GetString("ORDER_TX_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing ORDER_TX_TIMEOUT: %w", err)
	}

	jobsTimeout, err := time.ParseDuration(v.GetString("JOBS_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing JOBS_TIMEOUT: %w", err)
	}

	reminderWindow, err := time.ParseDuration(v.GetString("JOBS_REMINDER_WINDOW"))
	if err != nil {
		return nil, fmt.Errorf("parsing JOBS_REMINDER_WINDOW: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("DB_DRIVER"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			Path:            v.GetString("DB_PATH"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Order: OrderConfig{
			TxTimeout:        orderTxTimeout,
			MaxRetryAttempts: v.GetInt("ORDER_MAX_RETRY_ATTEMPTS"),
		},
		Bulk: BulkConfig{
			MaxItems: v.GetInt("BULK_MAX_ITEMS"),
		},
		Restock: RestockConfig{
			Threshold: v.GetInt("RESTOCK_THRESHOLD"),
			Target:    v.GetInt("RESTOCK_TARGET"),
		},
		Jobs: JobsConfig{
			APIURL:            v.GetString("JOBS_API_URL"),
			MaxRetries:        v.GetInt("JOBS_MAX_RETRIES"),
			Timeout:           jobsTimeout,
			LowStockLog:       v.GetString("JOBS_LOW_STOCK_LOG"),
			RemindersLog:      v.GetString("JOBS_REMINDERS_LOG"),
			ReportLog:         v.GetString("JOBS_REPORT_LOG"),
			LowStockSchedule:  v.GetString("JOBS_LOW_STOCK_SCHEDULE"),
			RemindersSchedule: v.GetString("JOBS_REMINDERS_SCHEDULE"),
			ReportSchedule:    v.GetString("JOBS_REPORT_SCHEDULE"),
			ReminderWindow:    reminderWindow,
		},
	}

	if cfg.Restock.Target < cfg.Restock.Threshold {
		return nil, fmt.Errorf("RESTOCK_TARGET (%d) must not be below RESTOCK_THRESHOLD (%d)", cfg.Restock.Target, cfg.Restock.Threshold)
	}

	return cfg, nil
}
