package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/libman/internal/model"
)

// PostgresWishlistRepo はPostgreSQLを使用した読みたい本リストのリポジトリ。
type PostgresWishlistRepo struct {
	db *sql.DB
}

// NewPostgresWishlistRepo はPostgresWishlistRepoを生成する。
func NewPostgresWishlistRepo(db *sql.DB) *PostgresWishlistRepo {
	return &PostgresWishlistRepo{db: db}
}

// FindByID は指定IDのエントリを取得する。見つからない場合はnilを返す。
func (r *PostgresWishlistRepo) FindByID(ctx context.Context, id string) (*model.WishlistEntry, error) {
	entry := &model.WishlistEntry{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, book_id, created_at FROM wishlists WHERE id = $1`,
		id,
	).Scan(&entry.ID, &entry.UserID, &entry.BookID, &entry.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("読みたい本エントリの取得に失敗しました: %w", err)
	}

	return entry, nil
}

// FindByUserAndBook はユーザーIDと蔵書IDでエントリを検索する。見つからない場合はnilを返す。
func (r *PostgresWishlistRepo) FindByUserAndBook(ctx context.Context, userID, bookID string) (*model.WishlistEntry, error) {
	entry := &model.WishlistEntry{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, book_id, created_at FROM wishlists
		 WHERE user_id = $1 AND book_id = $2`,
		userID, bookID,
	).Scan(&entry.ID, &entry.UserID, &entry.BookID, &entry.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("読みたい本エントリの検索に失敗しました: %w", err)
	}

	return entry, nil
}

// Create はエントリを作成する。
func (r *PostgresWishlistRepo) Create(ctx context.Context, entry *model.WishlistEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wishlists (id, user_id, book_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		entry.ID, entry.UserID, entry.BookID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("読みたい本エントリの作成に失敗しました: %w", err)
	}
	return nil
}

// ListByUserWithBookInfo はユーザーのエントリ一覧を蔵書情報付きで返す。
func (r *PostgresWishlistRepo) ListByUserWithBookInfo(ctx context.Context, userID string) ([]WishlistEntryWithBook, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT w.id, w.user_id, w.book_id, w.created_at,
		        b.name, b.author, b.available
		 FROM wishlists w
		 JOIN books b ON b.id = w.book_id
		 WHERE w.user_id = $1
		 ORDER BY w.created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("読みたい本リストの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var entries []WishlistEntryWithBook
	for rows.Next() {
		var e WishlistEntryWithBook
		if err := rows.Scan(&e.ID, &e.UserID, &e.BookID, &e.CreatedAt,
			&e.BookName, &e.BookAuthor, &e.Available); err != nil {
			return nil, fmt.Errorf("読みたい本行の読み取りに失敗しました: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("読みたい本リストの走査に失敗しました: %w", err)
	}
	return entries, nil
}

// Delete は指定IDのエントリを削除する。
func (r *PostgresWishlistRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM wishlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("読みたい本エントリの削除に失敗しました: %w", err)
	}
	return nil
}
