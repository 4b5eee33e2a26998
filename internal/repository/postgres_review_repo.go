package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/libman/internal/model"
)

// PostgresReviewRepo はPostgreSQLを使用したレビューリポジトリ。
type PostgresReviewRepo struct {
	db *sql.DB
}

// NewPostgresReviewRepo はPostgresReviewRepoを生成する。
func NewPostgresReviewRepo(db *sql.DB) *PostgresReviewRepo {
	return &PostgresReviewRepo{db: db}
}

// FindByID は指定IDのレビューを取得する。見つからない場合はnilを返す。
func (r *PostgresReviewRepo) FindByID(ctx context.Context, id string) (*model.Review, error) {
	review := &model.Review{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, book_id, rating, comment, created_at, updated_at
		 FROM reviews WHERE id = $1`,
		id,
	).Scan(&review.ID, &review.UserID, &review.BookID, &review.Rating,
		&review.Comment, &review.CreatedAt, &review.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("レビューの取得に失敗しました: %w", err)
	}

	return review, nil
}

// Create はレビューを作成する。
func (r *PostgresReviewRepo) Create(ctx context.Context, review *model.Review) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (id, user_id, book_id, rating, comment, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		review.ID, review.UserID, review.BookID, review.Rating, review.Comment,
		review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("レビューの作成に失敗しました: %w", err)
	}
	return nil
}

// ListByBook は指定蔵書のレビュー一覧を投稿日時の降順で返す。
func (r *PostgresReviewRepo) ListByBook(ctx context.Context, bookID string) ([]*model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, book_id, rating, comment, created_at, updated_at
		 FROM reviews WHERE book_id = $1 ORDER BY created_at DESC`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("レビュー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var reviews []*model.Review
	for rows.Next() {
		review := &model.Review{}
		if err := rows.Scan(&review.ID, &review.UserID, &review.BookID, &review.Rating,
			&review.Comment, &review.CreatedAt, &review.UpdatedAt); err != nil {
			return nil, fmt.Errorf("レビュー行の読み取りに失敗しました: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("レビュー一覧の走査に失敗しました: %w", err)
	}
	return reviews, nil
}

// Delete は指定IDのレビューを削除する。
func (r *PostgresReviewRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("レビューの削除に失敗しました: %w", err)
	}
	return nil
}
