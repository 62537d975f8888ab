package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Member{},
		&PointItem{},
		&MasterIcon{},
		&Inventory{},
		&PointLedger{},
		&Wish{},
		&IdempotencyKey{},
	)
}
