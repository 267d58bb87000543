package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Provider{},
		&QuoteRequest{},
		&Message{},
		&RequestUnlock{},
		&TokenTransaction{},
		&Review{},
		&Favorite{},
	)
}
