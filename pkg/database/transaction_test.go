package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

type stubDB struct{ DB }

type stubTx struct {
	open bool
}

func (t *stubTx) IsOpen() bool                   { return t.open }
func (t *stubTx) Commit(context.Context) error   { t.open = false; return nil }
func (t *stubTx) Rollback(context.Context) error { t.open = false; return nil }
func (t *stubTx) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, nil
}
func (t *stubTx) GetContext(context.Context, any, string, ...any) error    { return nil }
func (t *stubTx) SelectContext(context.Context, any, string, ...any) error { return nil }
func (t *stubTx) QueryxContext(context.Context, string, ...any) (*sqlx.Rows, error) {
	return nil, nil
}
func (t *stubTx) Rebind(q string) string { return q }

func TestQuerierFromContext(t *testing.T) {
	db := &stubDB{}

	t.Run("no transaction returns the pool", func(t *testing.T) {
		assert.Same(t, db, QuerierFromContext(context.Background(), db))
	})

	t.Run("open transaction is joined", func(t *testing.T) {
		tx := &stubTx{open: true}
		ctx := context.WithValue(context.Background(), txKey, Tx(tx))
		ctx = context.WithValue(ctx, txStatusKey, "open")

		assert.Same(t, tx, QuerierFromContext(ctx, db))
	})

	t.Run("closed transaction falls back to the pool", func(t *testing.T) {
		tx := &stubTx{open: false}
		ctx := context.WithValue(context.Background(), txKey, Tx(tx))

		assert.Same(t, db, QuerierFromContext(ctx, db))
	})
}
