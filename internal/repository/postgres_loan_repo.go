package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/libman/internal/model"
)

// PostgresLoanRepo はPostgreSQLを使用した貸出記録リポジトリ。
//
// loansテーブルには部分一意インデックスを張っており、
// オープンな貸出（return_date IS NULL）は蔵書ごとに高々1件、
// ユーザー・蔵書の組ごとに高々1件であることをDB層でも保証する。
type PostgresLoanRepo struct {
	db *sql.DB
}

// NewPostgresLoanRepo はPostgresLoanRepoを生成する。
func NewPostgresLoanRepo(db *sql.DB) *PostgresLoanRepo {
	return &PostgresLoanRepo{db: db}
}

const loanColumns = `id, user_id, book_id, borrow_date, due_date, return_date, created_at, updated_at`

// scanLoan は1行分の貸出レコードを読み取る。
func scanLoan(row interface{ Scan(dest ...any) error }) (*model.Loan, error) {
	loan := &model.Loan{}
	var returnDate sql.NullTime
	err := row.Scan(
		&loan.ID, &loan.UserID, &loan.BookID, &loan.BorrowDate, &loan.DueDate,
		&returnDate, &loan.CreatedAt, &loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if returnDate.Valid {
		t := returnDate.Time
		loan.ReturnDate = &t
	}
	return loan, nil
}

// FindByID は指定IDの貸出記録を取得する。見つからない場合はnilを返す。
func (r *PostgresLoanRepo) FindByID(ctx context.Context, id string) (*model.Loan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1`,
		id,
	)
	loan, err := scanLoan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("貸出記録の取得に失敗しました: %w", err)
	}
	return loan, nil
}

// Create は貸出記録を作成する。
func (r *PostgresLoanRepo) Create(ctx context.Context, loan *model.Loan) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO loans (id, user_id, book_id, borrow_date, due_date, return_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		loan.ID, loan.UserID, loan.BookID, loan.BorrowDate, loan.DueDate,
		nullTime(loan.ReturnDate), loan.CreatedAt, loan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("貸出記録の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は貸出記録を更新する。
func (r *PostgresLoanRepo) Update(ctx context.Context, loan *model.Loan) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE loans
		 SET return_date = $2, updated_at = now()
		 WHERE id = $1`,
		loan.ID, nullTime(loan.ReturnDate),
	)
	if err != nil {
		return fmt.Errorf("貸出記録の更新に失敗しました: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("貸出記録更新の結果確認に失敗しました: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("更新対象の貸出記録が存在しません: %s", loan.ID)
	}
	return nil
}

// FindOpenByUser は指定ユーザーのオープンな貸出を返す。
func (r *PostgresLoanRepo) FindOpenByUser(ctx context.Context, userID string) ([]*model.Loan, error) {
	return r.queryLoans(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE user_id = $1 AND return_date IS NULL`,
		userID,
	)
}

// FindAllByUser は指定ユーザーの全貸出記録を返す。
func (r *PostgresLoanRepo) FindAllByUser(ctx context.Context, userID string) ([]*model.Loan, error) {
	return r.queryLoans(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE user_id = $1 ORDER BY borrow_date DESC`,
		userID,
	)
}

// FindOpen は全ユーザーのオープンな貸出を返す。期限切れスイープで使用する。
func (r *PostgresLoanRepo) FindOpen(ctx context.Context) ([]*model.Loan, error) {
	return r.queryLoans(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE return_date IS NULL`,
	)
}

// queryLoans は複数行の貸出レコードを読み取る共通処理。
func (r *PostgresLoanRepo) queryLoans(ctx context.Context, query string, args ...any) ([]*model.Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("貸出記録の検索に失敗しました: %w", err)
	}
	defer rows.Close()

	var loans []*model.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("貸出行の読み取りに失敗しました: %w", err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("貸出記録の走査に失敗しました: %w", err)
	}
	return loans, nil
}

// nullTime は*time.TimeをNULL許容カラム向けの値に変換する。
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
