package store

import (
	"context"
	"errors"

	"github.com/emrgen/lineage/internal/model"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrMissingHandle = errors.New("object has no handle")
)

type Store interface {
	ObjectStore
	HistoryStore
	// Transaction runs f inside a labelled transaction. A call made while a
	// transaction is already open joins it, and the outermost call commits or
	// rolls back everything.
	Transaction(ctx context.Context, label string, f func(tx Store) error) error
	Migrate() error
}

type ObjectStore interface {
	// Get retrieves an object by kind and handle.
	Get(ctx context.Context, kind model.Kind, handle string) (model.Object, error)
	// GetPerson retrieves a person by handle.
	GetPerson(ctx context.Context, handle string) (*model.Person, error)
	// GetFamily retrieves a family by handle.
	GetFamily(ctx context.Context, handle string) (*model.Family, error)
	// Commit creates or replaces an object and refreshes its references.
	Commit(ctx context.Context, obj model.Object) error
	// Remove deletes an object and the references it holds.
	Remove(ctx context.Context, kind model.Kind, handle string) error
	// FindBacklinks lists the objects of the given kinds referencing handle. No kinds means all kinds.
	FindBacklinks(ctx context.Context, handle string, kinds ...model.Kind) ([]model.Ref, error)
	// List retrieves every object of a kind, ordered by handle.
	List(ctx context.Context, kind model.Kind) ([]model.Object, error)
	// ListReferences retrieves the whole reference index.
	ListReferences(ctx context.Context) ([]*model.Reference, error)
	// DefaultPersonHandle returns the home person of the tree, or "" when unset.
	DefaultPersonHandle(ctx context.Context) (string, error)
	// SetDefaultPersonHandle changes the home person. An empty handle clears it.
	SetDefaultPersonHandle(ctx context.Context, handle string) error
}

type HistoryStore interface {
	// Undo reverts the latest transaction that is not undone yet.
	Undo(ctx context.Context) (*model.UndoTransaction, error)
	// Redo re-applies the earliest undone transaction.
	Redo(ctx context.Context) (*model.UndoTransaction, error)
	// History lists transactions, newest first. A limit of zero lists all.
	History(ctx context.Context, limit int) ([]*model.UndoTransaction, error)
	// PruneHistory drops all but the newest keep transactions from the undo log.
	PruneHistory(ctx context.Context, keep int) (int64, error)
	// RecordMerge appends a merge to the audit log of the current transaction.
	RecordMerge(ctx context.Context, record *model.MergeRecord) error
	// FindMerge returns the latest effective merge that absorbed handle.
	FindMerge(ctx context.Context, kind model.Kind, handle string) (*model.MergeRecord, error)
	// Merges lists the merges recorded by a transaction in the order they ran.
	Merges(ctx context.Context, txnID uint64) ([]*model.MergeRecord, error)
}
