// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sensorgrid/ipflow-backend/internal/config"
	"github.com/sensorgrid/ipflow-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.SensorRecord{},
		&models.Registration{},
		&models.LicenseMint{},
		&models.RoyaltyFlow{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_wallet ON users(wallet_address)",

		// Sensor record indexes
		"CREATE INDEX IF NOT EXISTS idx_sensor_records_owner ON sensor_records(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_sensor_records_type ON sensor_records(sensor_type)",
		"CREATE INDEX IF NOT EXISTS idx_sensor_records_recorded ON sensor_records(recorded_at DESC)",

		// Registration indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_registrations_sensor_data ON registrations(sensor_data_id)",
		"CREATE INDEX IF NOT EXISTS idx_registrations_ip_id ON registrations(ip_id)",
		"CREATE INDEX IF NOT EXISTS idx_registrations_parent ON registrations(parent_ip_id)",
		"CREATE INDEX IF NOT EXISTS idx_registrations_type ON registrations(registration_type)",

		// License mint indexes
		"CREATE INDEX IF NOT EXISTS idx_license_mints_receiver ON license_mints(receiver)",
		"CREATE INDEX IF NOT EXISTS idx_license_mints_ip_id ON license_mints(ip_id)",

		// Royalty flow indexes
		"CREATE INDEX IF NOT EXISTS idx_royalty_flows_receiver ON royalty_flows(receiver_ip_id)",
		"CREATE INDEX IF NOT EXISTS idx_royalty_flows_payer ON royalty_flows(payer_ip_id)",
		"CREATE INDEX IF NOT EXISTS idx_royalty_flows_direction ON royalty_flows(direction, created_at DESC)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}
