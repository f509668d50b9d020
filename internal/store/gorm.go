package store

import (
	"context"
	"fmt"

	"github.com/emrgen/lineage/internal/compress"
	"github.com/emrgen/lineage/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewGormStore(db *gorm.DB, codec compress.Compress) *GormStore {
	if codec == nil {
		codec = compress.NewNop()
	}

	return &GormStore{
		db:    db,
		codec: codec,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db    *gorm.DB
	codec compress.Compress
	// txn is set on the store handed to a transaction callback.
	txn *undoLog
}

type undoLog struct {
	id  uint64
	seq int
}

func (g *GormStore) Get(ctx context.Context, kind model.Kind, handle string) (model.Object, error) {
	rec, err := findRecord(g.db.WithContext(ctx), kind, handle)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, handle)
	}

	return decode(kind, rec.Data, rec.Compression)
}

func (g *GormStore) GetPerson(ctx context.Context, handle string) (*model.Person, error) {
	obj, err := g.Get(ctx, model.KindPerson, handle)
	if err != nil {
		return nil, err
	}

	return obj.(*model.Person), nil
}

func (g *GormStore) GetFamily(ctx context.Context, handle string) (*model.Family, error) {
	obj, err := g.Get(ctx, model.KindFamily, handle)
	if err != nil {
		return nil, err
	}

	return obj.(*model.Family), nil
}

func (g *GormStore) Commit(ctx context.Context, obj model.Object) error {
	if obj.GetHandle() == "" {
		return fmt.Errorf("%w: %s %s", ErrMissingHandle, obj.Kind(), obj.GetID())
	}
	if g.txn == nil {
		return g.Transaction(ctx, fmt.Sprintf("Commit %s", obj.Kind()), func(tx Store) error {
			return tx.Commit(ctx, obj)
		})
	}

	db := g.db.WithContext(ctx)
	data, err := encode(g.codec, obj)
	if err != nil {
		return err
	}
	before, err := findRecord(db, obj.Kind(), obj.GetHandle())
	if err != nil {
		return err
	}

	after := &model.Record{
		Kind:        string(obj.Kind()),
		Handle:      obj.GetHandle(),
		ID:          obj.GetID(),
		Compression: g.codec.Name(),
		Data:        data,
	}
	if err := putRecord(db, after, obj.References()); err != nil {
		return err
	}
	logrus.Debugf("committed %s %s", obj.Kind(), obj.GetHandle())

	return g.log(db, obj.Kind(), obj.GetHandle(), before, after)
}

func (g *GormStore) Remove(ctx context.Context, kind model.Kind, handle string) error {
	if g.txn == nil {
		return g.Transaction(ctx, fmt.Sprintf("Remove %s", kind), func(tx Store) error {
			return tx.Remove(ctx, kind, handle)
		})
	}

	db := g.db.WithContext(ctx)
	before, err := findRecord(db, kind, handle)
	if err != nil {
		return err
	}
	if before == nil {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, handle)
	}
	if err := dropRecord(db, kind, handle); err != nil {
		return err
	}
	logrus.Debugf("removed %s %s", kind, handle)

	return g.log(db, kind, handle, before, nil)
}

func (g *GormStore) FindBacklinks(ctx context.Context, handle string, kinds ...model.Kind) ([]model.Ref, error) {
	q := g.db.WithContext(ctx).Model(&model.Reference{}).Where("target_handle = ?", handle)
	if len(kinds) > 0 {
		names := make([]string, 0, len(kinds))
		for _, kind := range kinds {
			names = append(names, string(kind))
		}
		q = q.Where("source_kind IN ?", names)
	}

	var rows []*model.Reference
	if err := q.Distinct("source_kind", "source_handle").Order("source_kind, source_handle").Find(&rows).Error; err != nil {
		return nil, err
	}

	refs := make([]model.Ref, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, model.Ref{Kind: model.Kind(row.SourceKind), Handle: row.SourceHandle})
	}

	return refs, nil
}

func (g *GormStore) List(ctx context.Context, kind model.Kind) ([]model.Object, error) {
	var records []*model.Record
	err := g.db.WithContext(ctx).Where("kind = ?", string(kind)).Order("handle").Find(&records).Error
	if err != nil {
		return nil, err
	}

	objects := make([]model.Object, 0, len(records))
	for _, rec := range records {
		obj, err := decode(kind, rec.Data, rec.Compression)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}

	return objects, nil
}

func (g *GormStore) ListReferences(ctx context.Context) ([]*model.Reference, error) {
	var refs []*model.Reference
	err := g.db.WithContext(ctx).Order("source_kind, source_handle, target_kind, target_handle").Find(&refs).Error
	return refs, err
}

func (g *GormStore) DefaultPersonHandle(ctx context.Context) (string, error) {
	meta, err := findMeta(g.db.WithContext(ctx), model.MetaDefaultPerson)
	if err != nil || meta == nil {
		return "", err
	}

	return meta.Value, nil
}

func (g *GormStore) SetDefaultPersonHandle(ctx context.Context, handle string) error {
	if g.txn == nil {
		return g.Transaction(ctx, "Set Home Person", func(tx Store) error {
			return tx.SetDefaultPersonHandle(ctx, handle)
		})
	}

	db := g.db.WithContext(ctx)
	meta, err := findMeta(db, model.MetaDefaultPerson)
	if err != nil {
		return err
	}

	var before, after []byte
	if meta != nil {
		before = []byte(meta.Value)
	}
	if handle != "" {
		after = []byte(handle)
	}
	if err := putMeta(db, model.MetaDefaultPerson, after); err != nil {
		return err
	}

	return g.logImage(db, model.KindMeta, model.MetaDefaultPerson, before, "", after, "")
}

func (g *GormStore) Transaction(ctx context.Context, label string, f func(tx Store) error) error {
	if g.txn != nil {
		logrus.Debugf("%q joins transaction %d", label, g.txn.id)
		return f(g)
	}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearRedo(tx); err != nil {
			return err
		}

		txn := &model.UndoTransaction{Label: label}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		logrus.Debugf("transaction %d %q started", txn.ID, label)

		return f(&GormStore{db: tx, codec: g.codec, txn: &undoLog{id: txn.ID}})
	})
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) log(db *gorm.DB, kind model.Kind, handle string, before, after *model.Record) error {
	var beforeData, afterData []byte
	var beforeCodec, afterCodec string
	if before != nil {
		beforeData, beforeCodec = before.Data, before.Compression
	}
	if after != nil {
		afterData, afterCodec = after.Data, after.Compression
	}

	return g.logImage(db, kind, handle, beforeData, beforeCodec, afterData, afterCodec)
}

func (g *GormStore) logImage(db *gorm.DB, kind model.Kind, handle string, before []byte, beforeCodec string, after []byte, afterCodec string) error {
	g.txn.seq++
	return db.Create(&model.UndoRecord{
		TxnID:       g.txn.id,
		Seq:         g.txn.seq,
		Kind:        string(kind),
		Handle:      handle,
		Before:      before,
		BeforeCodec: beforeCodec,
		After:       after,
		AfterCodec:  afterCodec,
	}).Error
}

// findRecord returns nil without error when the record does not exist.
func findRecord(db *gorm.DB, kind model.Kind, handle string) (*model.Record, error) {
	var rec model.Record
	res := db.Where("kind = ? AND handle = ?", string(kind), handle).Limit(1).Find(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	return &rec, nil
}

func putRecord(db *gorm.DB, rec *model.Record, refs []model.Ref) error {
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(rec).Error; err != nil {
		return err
	}
	if err := db.Where("source_kind = ? AND source_handle = ?", rec.Kind, rec.Handle).Delete(&model.Reference{}).Error; err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}

	rows := make([]*model.Reference, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, &model.Reference{
			SourceKind:   rec.Kind,
			SourceHandle: rec.Handle,
			TargetKind:   string(ref.Kind),
			TargetHandle: ref.Handle,
		})
	}

	return db.Create(rows).Error
}

func dropRecord(db *gorm.DB, kind model.Kind, handle string) error {
	if err := db.Where("kind = ? AND handle = ?", string(kind), handle).Delete(&model.Record{}).Error; err != nil {
		return err
	}

	return db.Where("source_kind = ? AND source_handle = ?", string(kind), handle).Delete(&model.Reference{}).Error
}

func findMeta(db *gorm.DB, key string) (*model.Meta, error) {
	var meta model.Meta
	res := db.Where("meta_key = ?", key).Limit(1).Find(&meta)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	return &meta, nil
}

// putMeta stores value under key; a nil value deletes the key.
func putMeta(db *gorm.DB, key string, value []byte) error {
	if value == nil {
		return db.Where("meta_key = ?", key).Delete(&model.Meta{}).Error
	}

	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model.Meta{Key: key, Value: string(value)}).Error
}
