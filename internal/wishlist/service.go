// Package wishlist は「読みたい本」リストの管理を提供する。
package wishlist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/libman/internal/model"
	"github.com/hitoshi/libman/internal/repository"
)

// Service は読みたい本リストに関するビジネスロジックを提供する。
type Service struct {
	wishlistRepo repository.WishlistRepository
	bookRepo     repository.BookRepository
	logger       *slog.Logger
}

// NewService はServiceを生成する。
func NewService(
	wishlistRepo repository.WishlistRepository,
	bookRepo repository.BookRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		wishlistRepo: wishlistRepo,
		bookRepo:     bookRepo,
		logger:       logger,
	}
}

// Add は指定蔵書を読みたい本リストに追加する。
// 同一蔵書の重複追加は拒否する。
func (s *Service) Add(ctx context.Context, userID, bookID string) (*model.WishlistEntry, error) {
	if bookID == "" {
		return nil, model.NewInvalidArgumentError("蔵書IDが指定されていません")
	}

	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("蔵書の取得に失敗しました: %w", err)
	}
	if book == nil {
		return nil, model.NewBookNotFoundError(bookID)
	}

	existing, err := s.wishlistRepo.FindByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("エントリの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewWishlistDuplicateError(bookID)
	}

	entry := &model.WishlistEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		BookID:    bookID,
		CreatedAt: time.Now(),
	}
	if err := s.wishlistRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("エントリの作成に失敗しました: %w", err)
	}
	return entry, nil
}

// List はユーザーの読みたい本リストを蔵書情報付きで返す。
func (s *Service) List(ctx context.Context, userID string) ([]repository.WishlistEntryWithBook, error) {
	entries, err := s.wishlistRepo.ListByUserWithBookInfo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("読みたい本リストの取得に失敗しました: %w", err)
	}
	return entries, nil
}

// Remove はエントリを削除する。本人のエントリのみ削除できる。
func (s *Service) Remove(ctx context.Context, userID, entryID string) error {
	entry, err := s.wishlistRepo.FindByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("エントリの取得に失敗しました: %w", err)
	}
	if entry == nil {
		return model.NewWishlistNotFoundError(entryID)
	}
	if entry.UserID != userID {
		return model.NewForbiddenError()
	}

	if err := s.wishlistRepo.Delete(ctx, entryID); err != nil {
		return fmt.Errorf("エントリの削除に失敗しました: %w", err)
	}
	return nil
}
