package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/libman/internal/model"
)

// PostgresBookRepo はPostgreSQLを使用した蔵書リポジトリ。
type PostgresBookRepo struct {
	db *sql.DB
}

// NewPostgresBookRepo はPostgresBookRepoを生成する。
func NewPostgresBookRepo(db *sql.DB) *PostgresBookRepo {
	return &PostgresBookRepo{db: db}
}

const bookColumns = `id, name, category, author, publishing_house, description, cover_url,
	available, available_number, created_at, updated_at`

// scanBook は1行分の蔵書レコードを読み取る。
func scanBook(row interface{ Scan(dest ...any) error }) (*model.Book, error) {
	book := &model.Book{}
	err := row.Scan(
		&book.ID, &book.Name, &book.Category, &book.Author, &book.PublishingHouse,
		&book.Description, &book.CoverURL, &book.Available, &book.AvailableNumber,
		&book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// FindByID は指定IDの蔵書を取得する。見つからない場合はnilを返す。
func (r *PostgresBookRepo) FindByID(ctx context.Context, id string) (*model.Book, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`,
		id,
	)
	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("蔵書の取得に失敗しました: %w", err)
	}
	return book, nil
}

// List はキーワード検索付きで蔵書一覧を返す。
// keywordが空の場合は全件を対象とし、name/author/categoryの部分一致で絞り込む。
func (r *PostgresBookRepo) List(ctx context.Context, keyword string, limit, offset int) ([]*model.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books
		 WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		    OR author ILIKE '%' || $1 || '%'
		    OR category ILIKE '%' || $1 || '%'
		 ORDER BY name ASC
		 LIMIT $2 OFFSET $3`,
		keyword, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("蔵書一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("蔵書行の読み取りに失敗しました: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("蔵書一覧の走査に失敗しました: %w", err)
	}
	return books, nil
}

// Count はキーワード検索にマッチする蔵書数を返す。
func (r *PostgresBookRepo) Count(ctx context.Context, keyword string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books
		 WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		    OR author ILIKE '%' || $1 || '%'
		    OR category ILIKE '%' || $1 || '%'`,
		keyword,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("蔵書数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// CountByCategory はカテゴリごとの蔵書数を返す。
func (r *PostgresBookRepo) CountByCategory(ctx context.Context) ([]model.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM books GROUP BY category ORDER BY category ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ別蔵書数の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var counts []model.CategoryCount
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("カテゴリ行の読み取りに失敗しました: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("カテゴリ別蔵書数の走査に失敗しました: %w", err)
	}
	return counts, nil
}

// Create は蔵書を作成する。
func (r *PostgresBookRepo) Create(ctx context.Context, book *model.Book) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO books (id, name, category, author, publishing_house, description, cover_url,
		   available, available_number, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		book.ID, book.Name, book.Category, book.Author, book.PublishingHouse,
		book.Description, book.CoverURL, book.Available, book.AvailableNumber,
		book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("蔵書の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は蔵書の書誌情報を更新する。Availableフラグは変更しない。
func (r *PostgresBookRepo) Update(ctx context.Context, book *model.Book) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE books
		 SET name = $2, category = $3, author = $4, publishing_house = $5,
		     description = $6, cover_url = $7, available_number = $8, updated_at = now()
		 WHERE id = $1`,
		book.ID, book.Name, book.Category, book.Author, book.PublishingHouse,
		book.Description, book.CoverURL, book.AvailableNumber,
	)
	if err != nil {
		return fmt.Errorf("蔵書の更新に失敗しました: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("蔵書更新の結果確認に失敗しました: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("更新対象の蔵書が存在しません: %s", book.ID)
	}
	return nil
}

// SetAvailable は蔵書の貸出可否フラグのみを更新する。
// 対象が存在しない場合はエラーを返す。
func (r *PostgresBookRepo) SetAvailable(ctx context.Context, bookID string, available bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE books SET available = $2, updated_at = now() WHERE id = $1`,
		bookID, available,
	)
	if err != nil {
		return fmt.Errorf("貸出可否フラグの更新に失敗しました: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("貸出可否フラグ更新の結果確認に失敗しました: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("更新対象の蔵書が存在しません: %s", bookID)
	}
	return nil
}

// Delete は指定IDの蔵書を削除する。
func (r *PostgresBookRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("蔵書の削除に失敗しました: %w", err)
	}
	return nil
}
