// Package review は蔵書レビューの投稿と管理を提供する。
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/libman/internal/model"
	"github.com/hitoshi/libman/internal/repository"
	"github.com/hitoshi/libman/internal/security"
)

// maxCommentLength はサニタイズ後のコメントの最大文字数（rune数）。
const maxCommentLength = 2000

// Service はレビューに関するビジネスロジックを提供する。
type Service struct {
	reviewRepo repository.ReviewRepository
	bookRepo   repository.BookRepository
	sanitizer  security.ContentSanitizerService
	logger     *slog.Logger
}

// NewService はServiceを生成する。
func NewService(
	reviewRepo repository.ReviewRepository,
	bookRepo repository.BookRepository,
	sanitizer security.ContentSanitizerService,
	logger *slog.Logger,
) *Service {
	return &Service{
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
		sanitizer:  sanitizer,
		logger:     logger,
	}
}

// Add はレビューを投稿する。
// 評価は1〜5の整数のみ許可する。コメントはサニタイズして保存する。
func (s *Service) Add(ctx context.Context, userID, bookID string, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, model.NewInvalidRatingError(rating)
	}

	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("蔵書の取得に失敗しました: %w", err)
	}
	if book == nil {
		return nil, model.NewBookNotFoundError(bookID)
	}

	sanitized := s.sanitizer.SanitizeComment(comment)
	if len([]rune(sanitized)) > maxCommentLength {
		return nil, model.NewInvalidArgumentError("コメントが長すぎます")
	}

	now := time.Now()
	rev := &model.Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		BookID:    bookID,
		Rating:    rating,
		Comment:   sanitized,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviewRepo.Create(ctx, rev); err != nil {
		return nil, fmt.Errorf("レビューの作成に失敗しました: %w", err)
	}

	s.logger.Info("レビュー投稿完了",
		slog.String("review_id", rev.ID),
		slog.String("book_id", bookID),
	)
	return rev, nil
}

// ListForBook は指定蔵書のレビュー一覧を返す。
func (s *Service) ListForBook(ctx context.Context, bookID string) ([]*model.Review, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("蔵書の取得に失敗しました: %w", err)
	}
	if book == nil {
		return nil, model.NewBookNotFoundError(bookID)
	}

	reviews, err := s.reviewRepo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("レビュー一覧の取得に失敗しました: %w", err)
	}
	return reviews, nil
}

// Delete はレビューを削除する。投稿者本人または管理者のみ削除できる。
func (s *Service) Delete(ctx context.Context, actor *model.User, reviewID string) error {
	rev, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("レビューの取得に失敗しました: %w", err)
	}
	if rev == nil {
		return model.NewReviewNotFoundError(reviewID)
	}
	if rev.UserID != actor.ID && !actor.IsAdmin() {
		return model.NewForbiddenError()
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("レビューの削除に失敗しました: %w", err)
	}

	s.logger.Info("レビュー削除完了",
		slog.String("review_id", reviewID),
		slog.String("actor_id", actor.ID),
	)
	return nil
}
