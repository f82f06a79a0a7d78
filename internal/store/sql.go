package store

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// document is one row of the documents table: a record body at a position
// inside its collection.
type document struct {
	Kind     string `gorm:"primaryKey;size:32"`
	Position int    `gorm:"primaryKey;autoIncrement:false"`
	RecordID string `gorm:"size:64;index"`
	Body     string `gorm:"type:text;not null"`
}

func (document) TableName() string { return "documents" }

// SQLBackend stores collections as ordered rows through gorm. Each Write
// replaces the collection inside a single transaction.
type SQLBackend struct {
	db *gorm.DB
}

func NewSQLBackend(db *gorm.DB) (*SQLBackend, error) {
	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("migrate documents table: %w", err)
	}
	return &SQLBackend{db: db}, nil
}

func (b *SQLBackend) Read(ctx context.Context, kind Kind) ([]Document, error) {
	var rows []document
	err := b.db.WithContext(ctx).
		Where("kind = ?", string(kind)).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, &StorageError{Kind: kind, Op: "read", Err: err}
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		if !json.Valid([]byte(row.Body)) {
			return nil, &CorruptionError{
				Kind: kind,
				Err:  fmt.Errorf("row %d (record %q) is not valid JSON", row.Position, row.RecordID),
			}
		}
		docs = append(docs, Document{ID: row.RecordID, Body: json.RawMessage(row.Body)})
	}
	return docs, nil
}

func (b *SQLBackend) Write(ctx context.Context, kind Kind, docs []Document) error {
	rows := make([]document, len(docs))
	for i, d := range docs {
		rows[i] = document{
			Kind:     string(kind),
			Position: i,
			RecordID: d.ID,
			Body:     string(d.Body),
		}
	}

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kind = ?", string(kind)).Delete(&document{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 100).Error
	})
	if err != nil {
		return &StorageError{Kind: kind, Op: "write", Err: err}
	}
	return nil
}

func (b *SQLBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
