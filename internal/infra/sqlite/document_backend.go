package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"restart50-service/internal/store"
)

type documentRow struct {
	Name      string `gorm:"primaryKey"`
	Data      string `gorm:"not null"`
	UpdatedAt time.Time
}

func (documentRow) TableName() string { return "documents" }

// DocumentBackend stores named documents in a single SQLite file.
type DocumentBackend struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the documents table.
func Open(path string) (*DocumentBackend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &DocumentBackend{db: db}, nil
}

func (b *DocumentBackend) Load(ctx context.Context, name string) ([]byte, error) {
	var row documentRow
	err := b.db.WithContext(ctx).Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", name, err)
	}
	return []byte(row.Data), nil
}

func (b *DocumentBackend) Save(ctx context.Context, name string, data []byte) error {
	row := documentRow{Name: name, Data: string(data), UpdatedAt: time.Now().UTC()}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save document %s: %w", name, err)
	}
	return nil
}

func (b *DocumentBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
