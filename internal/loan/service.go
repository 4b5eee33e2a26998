// Package loan は貸出ライフサイクルと蔵書の貸出可否整合性を管理する。
//
// 本パッケージは Loan.ReturnDate と Book.Available の唯一の書き込み主体であり、
// 「蔵書が貸出可能 ⇔ その蔵書に対するオープンな貸出が存在しない」という
// 整合性を全ての状態遷移で維持する。
package loan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/libman/internal/model"
	"github.com/hitoshi/libman/internal/repository"
)

// DefaultMaxLoansPerUser はユーザーごとの貸出上限のデフォルト値。
const DefaultMaxLoansPerUser = 10

// MetricsRecorder は貸出ライフサイクルのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordLoanCreated()
	RecordLoanReturned()
	RecordLoansExpired(count int)
	RecordBorrowRejected(reason string)
	RecordSweepDuration(d time.Duration)
}

// nopMetrics はメトリクス未設定時に使用する何もしない実装。
type nopMetrics struct{}

func (nopMetrics) RecordLoanCreated() {}

func (nopMetrics) RecordLoanReturned() {}

func (nopMetrics) RecordLoansExpired(count int) {}

func (nopMetrics) RecordBorrowRejected(reason string) {}

func (nopMetrics) RecordSweepDuration(d time.Duration) {}

// Service は貸出に関する状態遷移の単一の権威。
// 貸出・返却・期限切れ処理と、それに伴う蔵書の貸出可否フラグの更新を行う。
type Service struct {
	loanRepo repository.LoanRepository
	bookRepo repository.BookRepository
	locks    *bookLockTable
	logger   *slog.Logger
	metrics  MetricsRecorder
	maxLoans int
}

// NewService はServiceの新しいインスタンスを生成する。
// maxLoansが0以下の場合はDefaultMaxLoansPerUserを使用する。
// metricsがnilの場合は記録を行わない。
func NewService(
	loanRepo repository.LoanRepository,
	bookRepo repository.BookRepository,
	logger *slog.Logger,
	metrics MetricsRecorder,
	maxLoans int,
) *Service {
	if maxLoans <= 0 {
		maxLoans = DefaultMaxLoansPerUser
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{
		loanRepo: loanRepo,
		bookRepo: bookRepo,
		locks:    newBookLockTable(),
		logger:   logger,
		metrics:  metrics,
		maxLoans: maxLoans,
	}
}

// Borrow は蔵書を貸し出す。
// 検証は次の順で行い、最初の違反で失敗する:
// 入力値 → 貸出上限 → 同一蔵書の二重貸出 → 蔵書の存在 → 貸出可否。
// 成功時は蔵書を貸出不可に反転した上で貸出記録を作成する。
// 貸出記録の作成に失敗した場合はフラグ反転を補償ロールバックで元に戻す。
func (s *Service) Borrow(ctx context.Context, userID, bookID string, durationDays int) (*model.Loan, error) {
	if userID == "" {
		return nil, model.NewInvalidArgumentError("ユーザーIDが指定されていません")
	}
	if bookID == "" {
		return nil, model.NewInvalidArgumentError("蔵書IDが指定されていません")
	}
	if durationDays <= 0 {
		return nil, model.NewInvalidArgumentError("貸出日数は1以上で指定してください")
	}

	// 同一蔵書に対する確認→反転を直列化する
	release := s.locks.Acquire(bookID)
	defer release()

	current, err := s.loanRepo.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("現在の貸出一覧の取得に失敗しました: %w", err)
	}

	if len(current) >= s.maxLoans {
		s.metrics.RecordBorrowRejected("limit_exceeded")
		s.logger.Warn("貸出上限に達しているため貸出を拒否しました",
			slog.String("user_id", userID),
			slog.Int("open_loans", len(current)),
			slog.Int("max_loans", s.maxLoans),
		)
		return nil, model.NewLoanLimitExceededError(s.maxLoans)
	}

	for _, l := range current {
		if l.BookID == bookID {
			s.metrics.RecordBorrowRejected("duplicate")
			return nil, model.NewDuplicateLoanError(bookID)
		}
	}

	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("蔵書の取得に失敗しました: %w", err)
	}
	if book == nil {
		s.metrics.RecordBorrowRejected("not_found")
		return nil, model.NewBookNotFoundError(bookID)
	}
	if !book.Available {
		s.metrics.RecordBorrowRejected("unavailable")
		return nil, model.NewBookUnavailableError(bookID)
	}

	if err := s.bookRepo.SetAvailable(ctx, bookID, false); err != nil {
		return nil, fmt.Errorf("蔵書の貸出状態の更新に失敗しました: %w", err)
	}

	now := time.Now()
	loan := &model.Loan{
		ID:         uuid.New().String(),
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, durationDays),
		ReturnDate: nil,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		// 蔵書フラグと貸出記録は1つの論理トランザクションとして扱う。
		// 貸出記録を残せなかった場合はフラグ反転を巻き戻してから失敗を返す。
		if rbErr := s.bookRepo.SetAvailable(ctx, bookID, true); rbErr != nil {
			s.logger.Error("貸出記録の作成失敗後のロールバックに失敗しました",
				slog.String("book_id", bookID),
				slog.String("error", rbErr.Error()),
			)
		}
		return nil, fmt.Errorf("貸出記録の作成に失敗しました: %w", err)
	}

	s.metrics.RecordLoanCreated()
	s.logger.Info("貸出を作成しました",
		slog.String("loan_id", loan.ID),
		slog.String("user_id", userID),
		slog.String("book_id", bookID),
		slog.Time("due_date", loan.DueDate),
	)

	return loan, nil
}

// Return は貸出を返却する。
// すでにクローズ済みの貸出に対しては既存の記録をそのまま返す（冪等）。
// 貸出が参照する蔵書が存在しない場合は整合性エラーとして表面化させる。
func (s *Service) Return(ctx context.Context, loanID string) (*model.Loan, error) {
	if loanID == "" {
		return nil, model.NewInvalidArgumentError("貸出IDが指定されていません")
	}

	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("貸出記録の取得に失敗しました: %w", err)
	}
	if loan == nil {
		return nil, model.NewLoanNotFoundError(loanID)
	}
	if loan.ReturnDate != nil {
		return loan, nil
	}

	release := s.locks.Acquire(loan.BookID)
	defer release()

	// ロック待ちの間に並行する返却や期限切れ処理がクローズした可能性があるため再読込する
	loan, err = s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("貸出記録の再取得に失敗しました: %w", err)
	}
	if loan == nil {
		return nil, model.NewLoanNotFoundError(loanID)
	}
	if loan.ReturnDate != nil {
		return loan, nil
	}

	now := time.Now()
	loan.ReturnDate = &now
	loan.UpdatedAt = now

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("貸出記録の更新に失敗しました: %w", err)
	}

	book, err := s.bookRepo.FindByID(ctx, loan.BookID)
	if err != nil {
		return nil, fmt.Errorf("蔵書の取得に失敗しました: %w", err)
	}
	if book == nil {
		return nil, model.NewInconsistentStateError(
			fmt.Sprintf("貸出 %s が参照する蔵書 %s が存在しません", loanID, loan.BookID))
	}

	if err := s.bookRepo.SetAvailable(ctx, loan.BookID, true); err != nil {
		return nil, fmt.Errorf("蔵書の貸出状態の更新に失敗しました: %w", err)
	}

	s.metrics.RecordLoanReturned()
	s.logger.Info("返却を処理しました",
		slog.String("loan_id", loan.ID),
		slog.String("book_id", loan.BookID),
	)

	return loan, nil
}

// CurrentLoans は指定ユーザーのオープンな貸出を返す。順序は保証しない。
func (s *Service) CurrentLoans(ctx context.Context, userID string) ([]*model.Loan, error) {
	if userID == "" {
		return nil, model.NewInvalidArgumentError("ユーザーIDが指定されていません")
	}
	loans, err := s.loanRepo.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("現在の貸出一覧の取得に失敗しました: %w", err)
	}
	return loans, nil
}

// LoanHistory は指定ユーザーの全貸出記録（オープン＋クローズ）を返す。
func (s *Service) LoanHistory(ctx context.Context, userID string) ([]*model.Loan, error) {
	if userID == "" {
		return nil, model.NewInvalidArgumentError("ユーザーIDが指定されていません")
	}
	loans, err := s.loanRepo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("貸出履歴の取得に失敗しました: %w", err)
	}
	return loans, nil
}

// AutoExpire は期限切れのオープンな貸出を一括でクローズする。
// 返却日には現在時刻ではなく期限日を遡って設定する。
// 無人実行のバックグラウンド処理であるため、1件の失敗でスイープ全体を
// 中断せず、ログに記録して残りの処理を継続する。
func (s *Service) AutoExpire(ctx context.Context) error {
	start := time.Now()

	open, err := s.loanRepo.FindOpen(ctx)
	if err != nil {
		return fmt.Errorf("オープンな貸出の取得に失敗しました: %w", err)
	}

	today := model.DateOf(time.Now())
	expired := 0
	failed := 0

	for _, l := range open {
		if !model.DateOf(l.DueDate).Before(today) {
			continue
		}

		if err := s.expireOne(ctx, l.ID); err != nil {
			failed++
			s.logger.Error("期限切れ貸出の処理に失敗しました",
				slog.String("loan_id", l.ID),
				slog.String("book_id", l.BookID),
				slog.String("error", err.Error()),
			)
			continue
		}
		expired++
	}

	duration := time.Since(start)
	s.metrics.RecordLoansExpired(expired)
	s.metrics.RecordSweepDuration(duration)

	s.logger.Info("期限切れスイープが完了しました",
		slog.Int("open_count", len(open)),
		slog.Int("expired_count", expired),
		slog.Int("failed_count", failed),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// expireOne は1件の期限切れ貸出をクローズし、蔵書を貸出可能に戻す。
// 貸出・返却と同じ蔵書単位のロックを取得してから状態を反転する。
func (s *Service) expireOne(ctx context.Context, loanID string) error {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return fmt.Errorf("貸出記録の取得に失敗しました: %w", err)
	}
	if loan == nil || loan.ReturnDate != nil {
		// スキャン後に返却済みになったものはスキップ
		return nil
	}

	release := s.locks.Acquire(loan.BookID)
	defer release()

	loan, err = s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return fmt.Errorf("貸出記録の再取得に失敗しました: %w", err)
	}
	if loan == nil || loan.ReturnDate != nil {
		return nil
	}

	// 期限日を返却日として遡って記録する
	due := loan.DueDate
	loan.ReturnDate = &due
	loan.UpdatedAt = time.Now()

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return fmt.Errorf("貸出記録の更新に失敗しました: %w", err)
	}

	book, err := s.bookRepo.FindByID(ctx, loan.BookID)
	if err != nil {
		return fmt.Errorf("蔵書の取得に失敗しました: %w", err)
	}
	if book == nil {
		return model.NewInconsistentStateError(
			fmt.Sprintf("貸出 %s が参照する蔵書 %s が存在しません", loan.ID, loan.BookID))
	}

	if err := s.bookRepo.SetAvailable(ctx, loan.BookID, true); err != nil {
		return fmt.Errorf("蔵書の貸出状態の更新に失敗しました: %w", err)
	}

	return nil
}
