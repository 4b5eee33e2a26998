// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/libman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error
}

// BookRepository は蔵書データの永続化インターフェース。
// Available フラグの更新は貸出エンジンが SetAvailable 経由でのみ行う。
type BookRepository interface {
	// FindByID は指定IDの蔵書を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Book, error)

	// List はキーワード検索付きで蔵書一覧を返す。
	// keywordが空の場合は全件を対象とし、name/author/categoryの部分一致で絞り込む。
	// limit/offsetによるページネーションを行う。
	List(ctx context.Context, keyword string, limit, offset int) ([]*model.Book, error)

	// Count はキーワード検索にマッチする蔵書数を返す。
	Count(ctx context.Context, keyword string) (int, error)

	// CountByCategory はカテゴリごとの蔵書数を返す。
	CountByCategory(ctx context.Context) ([]model.CategoryCount, error)

	// Create は蔵書を作成する。
	Create(ctx context.Context, book *model.Book) error

	// Update は蔵書の書誌情報を更新する。Availableフラグは変更しない。
	Update(ctx context.Context, book *model.Book) error

	// SetAvailable は蔵書の貸出可否フラグのみを更新する。
	// 対象が存在しない場合はエラーを返す。
	SetAvailable(ctx context.Context, bookID string, available bool) error

	// Delete は指定IDの蔵書を削除する。
	Delete(ctx context.Context, id string) error
}

// LoanRepository は貸出記録の永続化インターフェース。
// 貸出記録は削除されず、ReturnDateの設定によってクローズされる。
type LoanRepository interface {
	// FindByID は指定IDの貸出記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Loan, error)

	// Create は貸出記録を作成する。
	Create(ctx context.Context, loan *model.Loan) error

	// Update は貸出記録を更新する。
	Update(ctx context.Context, loan *model.Loan) error

	// FindOpenByUser は指定ユーザーのオープンな貸出（return_date IS NULL）を返す。
	FindOpenByUser(ctx context.Context, userID string) ([]*model.Loan, error)

	// FindAllByUser は指定ユーザーの全貸出記録（オープン＋クローズ）を返す。
	FindAllByUser(ctx context.Context, userID string) ([]*model.Loan, error)

	// FindOpen は全ユーザーのオープンな貸出を返す。期限切れスイープで使用する。
	FindOpen(ctx context.Context) ([]*model.Loan, error)
}

// WishlistRepository は読みたい本リストの永続化インターフェース。
type WishlistRepository interface {
	// FindByID は指定IDのエントリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.WishlistEntry, error)

	// FindByUserAndBook はユーザーIDと蔵書IDでエントリを検索する。見つからない場合はnilを返す。
	FindByUserAndBook(ctx context.Context, userID, bookID string) (*model.WishlistEntry, error)

	// Create はエントリを作成する。
	Create(ctx context.Context, entry *model.WishlistEntry) error

	// ListByUserWithBookInfo はユーザーのエントリ一覧を蔵書情報付きで返す。
	ListByUserWithBookInfo(ctx context.Context, userID string) ([]WishlistEntryWithBook, error)

	// Delete は指定IDのエントリを削除する。
	Delete(ctx context.Context, id string) error
}

// ReviewRepository はレビューの永続化インターフェース。
type ReviewRepository interface {
	// FindByID は指定IDのレビューを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Review, error)

	// Create はレビューを作成する。
	Create(ctx context.Context, review *model.Review) error

	// ListByBook は指定蔵書のレビュー一覧を投稿日時の降順で返す。
	ListByBook(ctx context.Context, bookID string) ([]*model.Review, error)

	// Delete は指定IDのレビューを削除する。
	Delete(ctx context.Context, id string) error
}

// WishlistEntryWithBook は読みたい本エントリと蔵書情報を結合した構造体。
type WishlistEntryWithBook struct {
	model.WishlistEntry
	BookName   string
	BookAuthor string
	Available  bool
}
