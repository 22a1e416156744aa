package db

import (
	"fmt"

	"cellar/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database. TranslateError is on so unique
// index violations surface as gorm.ErrDuplicatedKey on both drivers.
func Connect(cfg config.DB) (*gorm.DB, error) {
	opts := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	switch cfg.Driver {
	case "sqlite", "":
		return gorm.Open(sqlite.Open(cfg.Path), opts)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local", cfg.User, cfg.Pass, cfg.Host, cfg.Port, cfg.Name)
		return gorm.Open(mysql.Open(dsn), opts)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
}
