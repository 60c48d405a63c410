package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/smart-campus-api/config"
	"github.com/sahilchouksey/smart-campus-api/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the database handle the HTTP layer depends on.
type Storage interface {
	Init() error
	Close() error
	GetDB() *gorm.DB
	HealthCheck(ctx context.Context) error
}

type GORMStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// DSN builds the PostgreSQL connection string from env.
func DSN(env *config.EnviornmentVariable) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM(env *config.EnviornmentVariable, log *zap.Logger) (*GORMStore, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if env.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(DSN(env)), &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true,
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("connected to PostgreSQL", zap.String("host", env.DB_HOST), zap.String("db", env.DB_NAME))
	return &GORMStore{db: db, logger: log}, nil
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	err := s.db.AutoMigrate(
		&model.User{},
		&model.JWTTokenBlacklist{},
		&model.UserActivity{},
		&model.CronJobLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	s.logger.Info("GORM AutoMigrate completed")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in services
func (s *GORMStore) GetDB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
