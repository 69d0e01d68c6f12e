package db

import (
	"printshop/internal/config"
	"printshop/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.DSN()), Options(cfg.IsProd()))
}

// 一意制約違反をgorm.ErrDuplicatedKeyに揃える
func Options(quiet bool) *gorm.Config {
	c := &gorm.Config{TranslateError: true}
	if quiet {
		c.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	return c
}

// テーブル作成
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
	)
}
