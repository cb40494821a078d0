package testutils

import (
	"lumen-notes/lumen/database"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SetupMockDB routes a sqlmock connection through the postgres dialector, so
// tests can assert the exact SQL gorm generates for note queries. The third
// return value closes the underlying connection.
func SetupMockDB() (*database.Database, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		panic(err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return &database.Database{DB: gormDB}, mock, func() { sqlDB.Close() }
}
