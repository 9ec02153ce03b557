// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Pinning     PinningConfig
	Ledger      LedgerConfig
	Archive     ArchiveConfig
	Explorer    ExplorerConfig
	Frontend    FrontendConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

type PinningConfig struct {
	Endpoint   string
	GatewayURL string
	AuthToken  string
}

type LedgerConfig struct {
	GatewayURL          string
	Collection          string // SPG collection the registration mints into
	RoyaltyCurrency     string // ERC-20 token royalty amounts are denominated in
	DefaultRevenueShare uint32 // percent, 0-100
	DefaultMintingFee   string // base units
}

type ArchiveConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
}

type ExplorerConfig struct {
	BaseURL string
}

type FrontendConfig struct {
	BaseURL string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "ipflow"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),   // 24 hours
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168), // 7 days
		},
		Pinning: PinningConfig{
			Endpoint:   getEnv("PINNING_ENDPOINT", "https://api.pinata.cloud"),
			GatewayURL: getEnv("PINNING_GATEWAY_URL", "https://gateway.pinata.cloud"),
			AuthToken:  getEnv("PINNING_AUTH_TOKEN", ""),
		},
		Ledger: LedgerConfig{
			GatewayURL:          getEnv("LEDGER_GATEWAY_URL", "http://localhost:9090"),
			Collection:          getEnv("LEDGER_COLLECTION", ""),
			RoyaltyCurrency:     getEnv("LEDGER_ROYALTY_CURRENCY", ""),
			DefaultRevenueShare: uint32(getEnvAsInt("LEDGER_DEFAULT_REVENUE_SHARE", 10)),
			DefaultMintingFee:   getEnv("LEDGER_DEFAULT_MINTING_FEE", "10000000000000000"),
		},
		Archive: ArchiveConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "ipflow-sensor-archives"),
		},
		Explorer: ExplorerConfig{
			BaseURL: getEnv("EXPLORER_BASE_URL", "https://explorer.story.foundation"),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Pinning.AuthToken == "" && c.Environment == "production" {
		return fmt.Errorf("pinning auth token is required in production")
	}

	if c.Ledger.DefaultRevenueShare > 100 {
		return fmt.Errorf("default revenue share must be between 0 and 100")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
