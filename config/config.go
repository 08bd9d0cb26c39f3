package config

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// StoreInfo is the shop identity used on confirmation pages and emails.
type StoreInfo struct {
	Name    string
	Address string
	City    string
	Phone   string
}

type MailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Config struct {
	Port          string
	DBDriver      string
	DBDSN         string
	JWTSecret     string
	SessionSecret string
	TaxRate       float64
	MinimumAge    int
	Store         StoreInfo
	Mail          MailConfig
}

// Load reads configuration from the environment. Every value has a
// development default so a bare `go run .` comes up against sqlite.
func Load() *Config {
	return &Config{
		Port:          getenv("PORT", "8080"),
		DBDriver:      getenv("DB_DRIVER", "mysql"),
		DBDSN:         getenv("DB_DSN", "root:root@tcp(127.0.0.1:3306)/palmcoast?charset=utf8mb4&parseTime=True&loc=Local"),
		JWTSecret:     getenv("JWT_SECRET", "dev-secret-change-me"),
		SessionSecret: getenv("SESSION_SECRET", "dev-session-secret"),
		TaxRate:       cast.ToFloat64(getenv("STORE_TAX_RATE", "0.07")),
		MinimumAge:    cast.ToInt(getenv("STORE_AGE_REQUIREMENT", "21")),
		Store: StoreInfo{
			Name:    getenv("STORE_NAME", "Palm Coast Vape and Glassware"),
			Address: getenv("STORE_ADDRESS", "29 Old Kings Rd N, Suite 2-A"),
			City:    getenv("STORE_CITY", "Palm Coast, FL 32137"),
			Phone:   getenv("STORE_PHONE", "(386) 597-2838"),
		},
		Mail: MailConfig{
			Enabled:  cast.ToBool(getenv("MAIL_ENABLED", "false")),
			Host:     getenv("MAIL_HOST", "localhost"),
			Port:     cast.ToInt(getenv("MAIL_PORT", "587")),
			Username: os.Getenv("MAIL_USERNAME"),
			Password: os.Getenv("MAIL_PASSWORD"),
			From:     getenv("MAIL_FROM", "noreply@palmcoastvape.com"),
		},
	}
}

// InitDB opens the configured database.
func InitDB(cfg *Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "mysql":
		return gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DBDSN), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
