package mysql

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"payment-service/internal/config"
	"payment-service/internal/domain"
)

func NewMySQL(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Product{},
		&domain.User{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
