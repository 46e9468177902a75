package transaction

import "context"

// Tx は複数リポジトリ操作をまたぐ原子性の境界
// ドメイン層・アプリケーション層をsqlx等の具体実装から切り離す
type Tx interface {
	Commit() error
	Rollback() error
}

// Manager はトランザクションの払い出しを抽象化する
type Manager interface {
	Begin(ctx context.Context) (Tx, error)
}
