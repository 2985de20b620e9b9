package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/uniedit/orgauth/internal/domain/org"
	"github.com/uniedit/orgauth/internal/infra/persistence/entity"
)

// txContextKey is used to store the transaction in context.
type txContextKeyType struct{}

var txContextKey = txContextKeyType{}

// Transactor implements org.Transactor on top of gorm.
type Transactor struct {
	db *gorm.DB
}

// NewTransactor creates a new transactor.
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

var _ org.Transactor = (*Transactor)(nil)

// RunInTransaction runs fn in a transaction. Repositories called with the
// context fn receives take part in it. Nested calls reuse the outer
// transaction. AfterCommit callbacks run once the commit succeeded.
func (t *Transactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTransaction(ctx) {
		return fn(ctx)
	}
	hookCtx, finish := org.WithCommitHooks(ctx)
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(hookCtx, txContextKey, tx)
		return fn(txCtx)
	})
	finish(err == nil)
	return err
}

func inTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txContextKey).(*gorm.DB)
	return ok
}

// conn returns the transaction carried by ctx, or db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// AutoMigrate creates or updates the tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.OrganizationEntity{},
		&entity.MembershipEntity{},
		&entity.TeamEntity{},
		&entity.AppEntity{},
		&entity.InvitationEntity{},
	)
}
