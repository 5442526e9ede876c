package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/portfolio-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the users and portfolios tables and their indexes.
func Migrate(db *gorm.DB) error {
	logrus.Info("Running database migrations...")
	if err := db.AutoMigrate(&models.User{}, &models.Portfolio{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if db.Dialector.Name() == "mysql" {
		if err := UseBinaryCollation(db); err != nil {
			return fmt.Errorf("failed to set column collation: %w", err)
		}
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

// AddIndexes makes sure every index the application relies on exists.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model interface{}
		name  string
	}{
		{&models.User{}, "Email"},
		// username is nullable; NULLs never collide, which keeps the index sparse
		{&models.User{}, "Username"},
		{&models.Portfolio{}, "UniqueIdentifier"},
		{&models.Portfolio{}, "UserID"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.name, err)
		}
		logrus.WithField("index", idx.name).Info("Created index")
	}

	return nil
}

// UseBinaryCollation makes MySQL compare emails, usernames and portfolio
// identifiers byte for byte. The server default (utf8mb4_0900_ai_ci on MySQL 8)
// would treat "A@x.com" and "a@x.com" as the same key.
func UseBinaryCollation(db *gorm.DB) error {
	statements := []string{
		"ALTER TABLE `users` MODIFY `email` varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL",
		"ALTER TABLE `users` MODIFY `username` varchar(100) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NULL",
		"ALTER TABLE `portfolios` MODIFY `unique_identifier` varchar(100) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
