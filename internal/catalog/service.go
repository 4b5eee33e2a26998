// Package catalog は蔵書カタログの検索と管理を提供する。
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/libman/internal/model"
	"github.com/hitoshi/libman/internal/repository"
	"github.com/hitoshi/libman/internal/security"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BookInput は蔵書の作成・更新に使用する入力を表す。
type BookInput struct {
	Name            string
	Category        string
	Author          string
	PublishingHouse string
	Description     string
	CoverURL        string
	AvailableNumber int
}

// BookPage は蔵書一覧の1ページを表す。
type BookPage struct {
	Books      []*model.Book
	TotalCount int
	Page       int
	PageSize   int
}

// Service は蔵書カタログに関するビジネスロジックを提供する。
type Service struct {
	bookRepo  repository.BookRepository
	sanitizer security.ContentSanitizerService
	logger    *slog.Logger
}

// NewService はServiceを生成する。
func NewService(
	bookRepo repository.BookRepository,
	sanitizer security.ContentSanitizerService,
	logger *slog.Logger,
) *Service {
	return &Service{
		bookRepo:  bookRepo,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// ListBooks はキーワード検索付きの蔵書一覧をページネーションして返す。
// pageは1始まり。pageSizeが0以下の場合はデフォルト値を使用する。
func (s *Service) ListBooks(ctx context.Context, keyword string, page, pageSize int) (*BookPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	keyword = strings.TrimSpace(keyword)
	offset := (page - 1) * pageSize

	books, err := s.bookRepo.List(ctx, keyword, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("蔵書一覧の取得に失敗しました: %w", err)
	}
	total, err := s.bookRepo.Count(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("蔵書数の取得に失敗しました: %w", err)
	}

	return &BookPage{
		Books:      books,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// GetBook は指定IDの蔵書を取得する。
func (s *Service) GetBook(ctx context.Context, bookID string) (*model.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("蔵書の取得に失敗しました: %w", err)
	}
	if book == nil {
		return nil, model.NewBookNotFoundError(bookID)
	}
	return book, nil
}

// Categories はカテゴリごとの蔵書数を返す。
func (s *Service) Categories(ctx context.Context) ([]model.CategoryCount, error) {
	counts, err := s.bookRepo.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ集計の取得に失敗しました: %w", err)
	}
	return counts, nil
}

// CreateBook は蔵書を新規登録する。管理者専用。
// 新規蔵書は貸出可能な状態で作成される。説明文はサニタイズして保存する。
func (s *Service) CreateBook(ctx context.Context, input BookInput) (*model.Book, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	book := &model.Book{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(input.Name),
		Category:        strings.TrimSpace(input.Category),
		Author:          strings.TrimSpace(input.Author),
		PublishingHouse: strings.TrimSpace(input.PublishingHouse),
		Description:     s.sanitizer.SanitizeDescription(input.Description),
		CoverURL:        strings.TrimSpace(input.CoverURL),
		Available:       true,
		AvailableNumber: input.AvailableNumber,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("蔵書の作成に失敗しました: %w", err)
	}

	s.logger.Info("蔵書登録完了",
		slog.String("book_id", book.ID),
		slog.String("name", book.Name),
	)
	return book, nil
}

// UpdateBook は蔵書の書誌情報を更新する。管理者専用。
// 貸出可否フラグは貸出エンジンの管理下にあるため、この操作では変更しない。
func (s *Service) UpdateBook(ctx context.Context, bookID string, input BookInput) (*model.Book, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("蔵書の取得に失敗しました: %w", err)
	}
	if book == nil {
		return nil, model.NewBookNotFoundError(bookID)
	}

	book.Name = strings.TrimSpace(input.Name)
	book.Category = strings.TrimSpace(input.Category)
	book.Author = strings.TrimSpace(input.Author)
	book.PublishingHouse = strings.TrimSpace(input.PublishingHouse)
	book.Description = s.sanitizer.SanitizeDescription(input.Description)
	book.CoverURL = strings.TrimSpace(input.CoverURL)
	book.AvailableNumber = input.AvailableNumber
	book.UpdatedAt = time.Now()

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("蔵書の更新に失敗しました: %w", err)
	}
	return book, nil
}

// DeleteBook は蔵書を削除する。管理者専用。
func (s *Service) DeleteBook(ctx context.Context, bookID string) error {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return fmt.Errorf("蔵書の取得に失敗しました: %w", err)
	}
	if book == nil {
		return model.NewBookNotFoundError(bookID)
	}

	if err := s.bookRepo.Delete(ctx, bookID); err != nil {
		return fmt.Errorf("蔵書の削除に失敗しました: %w", err)
	}

	s.logger.Info("蔵書削除完了",
		slog.String("book_id", bookID),
	)
	return nil
}

func validateInput(input BookInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return model.NewInvalidArgumentError("書名が指定されていません")
	}
	if input.AvailableNumber < 0 {
		return model.NewInvalidArgumentError("冊数に負の値は指定できません")
	}
	return nil
}
