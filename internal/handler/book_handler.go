package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/libman/internal/catalog"
	"github.com/hitoshi/libman/internal/model"
)

// CatalogServiceInterface は蔵書ハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	// ListBooks はキーワード検索付きの蔵書一覧をページネーションして返す。
	ListBooks(ctx context.Context, keyword string, page, pageSize int) (*catalog.BookPage, error)
	// GetBook は指定IDの蔵書を取得する。
	GetBook(ctx context.Context, bookID string) (*model.Book, error)
	// Categories はカテゴリごとの蔵書数を返す。
	Categories(ctx context.Context) ([]model.CategoryCount, error)
	// CreateBook は蔵書を新規登録する。
	CreateBook(ctx context.Context, input catalog.BookInput) (*model.Book, error)
	// UpdateBook は蔵書の書誌情報を更新する。
	UpdateBook(ctx context.Context, bookID string, input catalog.BookInput) (*model.Book, error)
	// DeleteBook は蔵書を削除する。
	DeleteBook(ctx context.Context, bookID string) error
}

// BookHandler は蔵書カタログのHTTPハンドラー。
type BookHandler struct {
	service CatalogServiceInterface
}

// NewBookHandler はBookHandlerを生成する。
func NewBookHandler(service CatalogServiceInterface) *BookHandler {
	return &BookHandler{
		service: service,
	}
}

// bookRequest は蔵書の作成・更新リクエストのボディ。
type bookRequest struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	Author          string `json:"author"`
	PublishingHouse string `json:"publishing_house"`
	Description     string `json:"description"`
	CoverURL        string `json:"cover_url"`
	AvailableNumber int    `json:"available_number"`
}

// bookResponse は蔵書情報のAPIレスポンス。
type bookResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Author          string `json:"author"`
	PublishingHouse string `json:"publishing_house"`
	Description     string `json:"description"`
	CoverURL        string `json:"cover_url"`
	Available       bool   `json:"available"`
	AvailableNumber int    `json:"available_number"`
}

// bookPageResponse は蔵書一覧のAPIレスポンス。
type bookPageResponse struct {
	Books      []bookResponse `json:"books"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

// categoryCountResponse はカテゴリ集計のAPIレスポンス。
type categoryCountResponse struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// List は蔵書一覧を返す。
// GET /api/books?keyword=&page=&page_size=
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	result, err := h.service.ListBooks(r.Context(), q.Get("keyword"), page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	books := make([]bookResponse, len(result.Books))
	for i, b := range result.Books {
		books[i] = toBookResponse(b)
	}
	writeJSON(w, http.StatusOK, bookPageResponse{
		Books:      books,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
	})
}

// Get は蔵書詳細を返す。
// GET /api/books/:id
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	book, err := h.service.GetBook(r.Context(), bookID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookResponse(book))
}

// Categories はカテゴリごとの蔵書数を返す。
// GET /api/books/categories
func (h *BookHandler) Categories(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Categories(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]categoryCountResponse, len(counts))
	for i, c := range counts {
		results[i] = categoryCountResponse{Category: c.Category, Count: c.Count}
	}
	writeJSON(w, http.StatusOK, results)
}

// Create は蔵書を新規登録する。管理者専用。
// POST /api/books
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	book, err := h.service.CreateBook(r.Context(), toBookInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookResponse(book))
}

// Update は蔵書の書誌情報を更新する。管理者専用。
// PUT /api/books/:id
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	book, err := h.service.UpdateBook(r.Context(), bookID, toBookInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookResponse(book))
}

// Delete は蔵書を削除する。管理者専用。
// DELETE /api/books/:id
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	if err := h.service.DeleteBook(r.Context(), bookID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toBookInput はリクエストボディからサービス入力に変換する。
func toBookInput(req bookRequest) catalog.BookInput {
	return catalog.BookInput{
		Name:            req.Name,
		Category:        req.Category,
		Author:          req.Author,
		PublishingHouse: req.PublishingHouse,
		Description:     req.Description,
		CoverURL:        req.CoverURL,
		AvailableNumber: req.AvailableNumber,
	}
}

// toBookResponse はmodel.BookからAPIレスポンスに変換する。
func toBookResponse(book *model.Book) bookResponse {
	return bookResponse{
		ID:              book.ID,
		Name:            book.Name,
		Category:        book.Category,
		Author:          book.Author,
		PublishingHouse: book.PublishingHouse,
		Description:     book.Description,
		CoverURL:        book.CoverURL,
		Available:       book.Available,
		AvailableNumber: book.AvailableNumber,
	}
}
