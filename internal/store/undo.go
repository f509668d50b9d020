package store

import (
	"context"
	"fmt"

	"github.com/emrgen/lineage/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func (g *GormStore) Undo(ctx context.Context) (*model.UndoTransaction, error) {
	var txn model.UndoTransaction
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("undone = ?", false).Order("id desc").Limit(1).Find(&txn)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNothingToUndo
		}

		var records []*model.UndoRecord
		if err := tx.Where("txn_id = ?", txn.ID).Order("seq desc").Find(&records).Error; err != nil {
			return err
		}
		for _, rec := range records {
			if err := applyImage(tx, model.Kind(rec.Kind), rec.Handle, rec.Before, rec.BeforeCodec); err != nil {
				return err
			}
		}

		txn.Undone = true
		return tx.Model(&txn).Update("undone", true).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.Infof("undid transaction %d %q", txn.ID, txn.Label)

	return &txn, nil
}

func (g *GormStore) Redo(ctx context.Context) (*model.UndoTransaction, error) {
	var txn model.UndoTransaction
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("undone = ?", true).Order("id asc").Limit(1).Find(&txn)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNothingToRedo
		}

		var records []*model.UndoRecord
		if err := tx.Where("txn_id = ?", txn.ID).Order("seq asc").Find(&records).Error; err != nil {
			return err
		}
		for _, rec := range records {
			if err := applyImage(tx, model.Kind(rec.Kind), rec.Handle, rec.After, rec.AfterCodec); err != nil {
				return err
			}
		}

		txn.Undone = false
		return tx.Model(&txn).Update("undone", false).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.Infof("redid transaction %d %q", txn.ID, txn.Label)

	return &txn, nil
}

func (g *GormStore) History(ctx context.Context, limit int) ([]*model.UndoTransaction, error) {
	q := g.db.WithContext(ctx).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var txns []*model.UndoTransaction
	err := q.Find(&txns).Error
	return txns, err
}

func (g *GormStore) PruneHistory(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("invalid history depth %d", keep)
	}

	var pruned int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint64
		if err := tx.Model(&model.UndoTransaction{}).Order("id desc").Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) <= keep {
			return nil
		}

		stale := ids[keep:]
		if err := tx.Where("txn_id IN ?", stale).Delete(&model.UndoRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", stale).Delete(&model.UndoTransaction{})
		pruned = res.RowsAffected
		return res.Error
	})

	return pruned, err
}

func (g *GormStore) RecordMerge(ctx context.Context, record *model.MergeRecord) error {
	if g.txn == nil {
		return g.Transaction(ctx, record.Label, func(tx Store) error {
			return tx.RecordMerge(ctx, record)
		})
	}

	record.TxnID = g.txn.id
	return g.db.WithContext(ctx).Create(record).Error
}

func (g *GormStore) FindMerge(ctx context.Context, kind model.Kind, handle string) (*model.MergeRecord, error) {
	db := g.db.WithContext(ctx)
	undone := db.Model(&model.UndoTransaction{}).Select("id").Where("undone = ?", true)

	var record model.MergeRecord
	res := db.Where("kind = ? AND titanic = ?", string(kind), handle).
		Where("txn_id NOT IN (?)", undone).
		Order("id desc").Limit(1).Find(&record)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: no merge of %s %s", ErrNotFound, kind, handle)
	}

	return &record, nil
}

func (g *GormStore) Merges(ctx context.Context, txnID uint64) ([]*model.MergeRecord, error) {
	var records []*model.MergeRecord
	err := g.db.WithContext(ctx).Where("txn_id = ?", txnID).Order("id asc").Find(&records).Error
	return records, err
}

// clearRedo drops undone transactions; a new change invalidates them.
func clearRedo(tx *gorm.DB) error {
	var ids []uint64
	if err := tx.Model(&model.UndoTransaction{}).Where("undone = ?", true).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if err := tx.Where("txn_id IN ?", ids).Delete(&model.UndoRecord{}).Error; err != nil {
		return err
	}
	if err := tx.Where("txn_id IN ?", ids).Delete(&model.MergeRecord{}).Error; err != nil {
		return err
	}

	return tx.Where("id IN ?", ids).Delete(&model.UndoTransaction{}).Error
}

// applyImage restores one side of an undo record. A nil image removes the object.
func applyImage(tx *gorm.DB, kind model.Kind, handle string, data []byte, codec string) error {
	if kind == model.KindMeta {
		return putMeta(tx, handle, data)
	}
	if data == nil {
		return dropRecord(tx, kind, handle)
	}

	obj, err := decode(kind, data, codec)
	if err != nil {
		return err
	}

	return putRecord(tx, &model.Record{
		Kind:        string(kind),
		Handle:      handle,
		ID:          obj.GetID(),
		Compression: codec,
		Data:        data,
	}, obj.References())
}
