package database

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/portfolio-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMySQLMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), false)
	require.NoError(t, err)
	return db, mock
}

func TestUseBinaryCollation(t *testing.T) {
	db, mock := setupMySQLMock(t)

	for _, column := range []string{"ALTER TABLE `users` MODIFY `email`", "ALTER TABLE `users` MODIFY `username`", "ALTER TABLE `portfolios` MODIFY `unique_identifier`"} {
		mock.ExpectExec(regexp.QuoteMeta(column) + ".*COLLATE utf8mb4_bin").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, UseBinaryCollation(db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUseBinaryCollation_Error(t *testing.T) {
	db, mock := setupMySQLMock(t)

	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE `users` MODIFY `email`")).
		WillReturnError(errors.New("permission denied"))

	assert.Error(t, UseBinaryCollation(db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_SQLiteComparesEmailExactly(t *testing.T) {
	db, err := Open(sqlite.Open(":memory:"), false)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&models.User{Email: "a@x.com", PasswordHash: "h"}).Error)
	require.NoError(t, db.Create(&models.User{Email: "A@x.com", PasswordHash: "h"}).Error)

	var user models.User
	require.NoError(t, db.Where("email = ?", "A@x.com").First(&user).Error)
	assert.Equal(t, "A@x.com", user.Email)
}
