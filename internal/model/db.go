package model

import (
	"time"

	"gorm.io/gorm"
)

// Record is the stored form of a primary object.
type Record struct {
	Kind        string `gorm:"primaryKey;size:16"`
	Handle      string `gorm:"primaryKey;size:64"`
	ID          string `gorm:"index"`
	Compression string
	Data        []byte `gorm:"not null"`
	UpdatedAt   time.Time
}

// Reference is one edge of the backlink index: Source points at Target.
type Reference struct {
	SourceKind   string `gorm:"primaryKey;size:16"`
	SourceHandle string `gorm:"primaryKey;size:64"`
	TargetKind   string `gorm:"primaryKey;size:16;index:idx_reference_target"`
	TargetHandle string `gorm:"primaryKey;size:64;index:idx_reference_target"`
}

func (Reference) TableName() string {
	return "object_references"
}

// Meta holds tree-wide settings such as the default person.
type Meta struct {
	Key   string `gorm:"primaryKey;column:meta_key"`
	Value string
}

func (Meta) TableName() string {
	return "tree_meta"
}

const MetaDefaultPerson = "default-person"

// UndoTransaction groups the changes made under one label.
type UndoTransaction struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Label     string `gorm:"not null"`
	Undone    bool   `gorm:"index"`
	CreatedAt time.Time
}

// UndoRecord is the before and after image of one object touched by a transaction.
// A nil image means the object did not exist on that side.
type UndoRecord struct {
	TxnID       uint64 `gorm:"primaryKey"`
	Seq         int    `gorm:"primaryKey"`
	Kind        string `gorm:"size:16"`
	Handle      string `gorm:"size:64"`
	Before      []byte
	BeforeCodec string
	After       []byte
	AfterCodec  string
}

// KindMeta marks undo records that carry a Meta value instead of an object.
const KindMeta Kind = "meta"

// MergeRecord is the audit entry of a completed merge.
type MergeRecord struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	TxnID     uint64 `gorm:"index"`
	Kind      string `gorm:"size:16;index:idx_merge_titanic"`
	Phoenix   string `gorm:"size:64"`
	Titanic   string `gorm:"size:64;index:idx_merge_titanic"`
	Label     string
	Complete  bool
	CreatedAt time.Time
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Record{},
		&Reference{},
		&Meta{},
		&UndoTransaction{},
		&UndoRecord{},
		&MergeRecord{},
	)
}
