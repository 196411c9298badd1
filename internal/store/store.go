package store

import (
	"context"
	"errors"

	"github.com/marketpulse/marketpulse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

func New(driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.GoogleCredential{},
		&models.PlatformConfig{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Credential operations

// CreateCredential stores a new credential for userID. Fails with
// ErrCredentialExists when the user already has one; connect flows must
// disconnect first.
func (s *Store) CreateCredential(credential *models.GoogleCredential) error {
	// The primary key enforces uniqueness; concurrent connects race down to
	// one insert and one ErrCredentialExists.
	err := s.db.Create(credential).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCredentialExists
	}
	return err
}

// GetCredentialByUserID returns the user's credential or ErrRecordNotFound.
func (s *Store) GetCredentialByUserID(userID string) (*models.GoogleCredential, error) {
	var credential models.GoogleCredential
	if err := s.db.Where("id = ?", userID).First(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &credential, nil
}

// DeleteCredentialByUserID removes exactly the owner's credential row.
// Cache invalidation for the user's reports is the caller's responsibility.
func (s *Store) DeleteCredentialByUserID(userID string) error {
	return s.db.Where("id = ?", userID).Delete(&models.GoogleCredential{}).Error
}

// Platform config operations

// UpsertPlatformConfig writes the per-user platform aggregate, using the user
// id as the row id so each user has exactly one.
func (s *Store) UpsertPlatformConfig(config *models.PlatformConfig) error {
	return s.db.Save(config).Error
}

// GetPlatformConfigByUserID returns the user's platform aggregate. A missing
// row yields the fully-populated zero-value config, never nil and never an
// error, so callers and serializers don't branch on absence.
func (s *Store) GetPlatformConfigByUserID(userID string) (*models.PlatformConfig, error) {
	var config models.PlatformConfig
	if err := s.db.Where("id = ?", userID).First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ZeroPlatformConfig(userID), nil
		}
		return nil, err
	}
	return &config, nil
}

// Health checks the database connection
func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DB exposes the underlying gorm handle for tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}
