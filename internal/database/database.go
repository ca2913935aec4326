package database

import (
	"career-ebook-generator/internal/config"
	"career-ebook-generator/internal/logging"
	"career-ebook-generator/internal/models"
	"fmt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"net/url"
)

func InitDatabase(c *config.Configuration, l logging.Logger) (*gorm.DB, error) {
	l.LogInfo(logging.GetLogTypeInitialization(), "Initializing Database")

	dsn := url.URL{
		User:     url.UserPassword(c.Database.Username, c.Database.Password),
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.DatabaseName,
		RawQuery: (&url.Values{"sslmode": []string{"disable"}}).Encode(),
	}

	// PostgresSQL
	db, err := gorm.Open(
		postgres.Open(dsn.String()),
		&gorm.Config{Logger: logging.InitGormLogger(c)})

	if err != nil {
		l.LogErrorf(nil, "error initializing database: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.LogErrorf(nil, "error setting connection properties on db conn pool")
		return nil, err
	}
	sqlDB.SetMaxIdleConns(c.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(c.Database.ConnMaxLifetime.Duration)

	l.LogDebug(nil, "connected to Database")

	err = db.AutoMigrate(&models.Session{})
	if err != nil {
		l.LogErrorf(nil, "error auto migrating models.Session: %v", err)
		return nil, err
	}

	return db, nil
}

// InitRepository picks the session store: Postgres when a database host is configured,
// process memory otherwise.
func InitRepository(c *config.Configuration, l logging.Logger) (Repository, error) {
	if !c.UsesDatabase() {
		l.LogInfo(logging.GetLogTypeInitialization(), "no database configured; keeping sessions in memory")
		return NewMemoryRepository(), nil
	}

	db, err := InitDatabase(c, l)
	if err != nil {
		return nil, err
	}
	return &GormRepository{DB: db}, nil
}
