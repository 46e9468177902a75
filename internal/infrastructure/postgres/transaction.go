package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/transaction"
)

// TxWrapper は sqlx.Tx を transaction.Tx として公開する
// 予約の作成・支払い・キャンセルは複数テーブルをまたぐため、
// アプリケーション層はこのラッパー越しにトランザクション境界を引く
type TxWrapper struct {
	*sqlx.Tx
}

func (t *TxWrapper) Commit() error   { return t.Tx.Commit() }
func (t *TxWrapper) Rollback() error { return t.Tx.Rollback() }

// TxManager は sqlx.DB からトランザクションを払い出す
type TxManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin は新しいトランザクションを開始する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &TxWrapper{Tx: tx}, nil
}

// UnwrapTx は transaction.Tx の中の sqlx.Tx を取り出す
// リポジトリがトランザクション内でクエリを発行するときに使う
// トランザクション外（nil または未知の実装）の場合は nil を返す
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if wrapper, ok := tx.(*TxWrapper); ok {
		return wrapper.Tx
	}
	return nil
}
