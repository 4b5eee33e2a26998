package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/libman/internal/middleware"
	"github.com/hitoshi/libman/internal/model"
	"github.com/hitoshi/libman/internal/repository"
)

// WishlistServiceInterface は読みたい本ハンドラーが必要とするサービスインターフェース。
type WishlistServiceInterface interface {
	// Add は指定蔵書を読みたい本リストに追加する。
	Add(ctx context.Context, userID, bookID string) (*model.WishlistEntry, error)
	// List はユーザーの読みたい本リストを蔵書情報付きで返す。
	List(ctx context.Context, userID string) ([]repository.WishlistEntryWithBook, error)
	// Remove はエントリを削除する。
	Remove(ctx context.Context, userID, entryID string) error
}

// WishlistHandler は読みたい本リストのHTTPハンドラー。
type WishlistHandler struct {
	service WishlistServiceInterface
}

// NewWishlistHandler はWishlistHandlerを生成する。
func NewWishlistHandler(service WishlistServiceInterface) *WishlistHandler {
	return &WishlistHandler{
		service: service,
	}
}

// addWishlistRequest はエントリ追加リクエストのボディ。
type addWishlistRequest struct {
	BookID string `json:"book_id"`
}

// wishlistEntryResponse はエントリのAPIレスポンス。
type wishlistEntryResponse struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	BookName   string    `json:"book_name,omitempty"`
	BookAuthor string    `json:"book_author,omitempty"`
	Available  bool      `json:"available"`
	CreatedAt  time.Time `json:"created_at"`
}

// Add はエントリの追加を処理する。
// POST /api/wishlist
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req addWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	entry, err := h.service.Add(r.Context(), userID, req.BookID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, wishlistEntryResponse{
		ID:        entry.ID,
		BookID:    entry.BookID,
		CreatedAt: entry.CreatedAt,
	})
}

// List は読みたい本リストを返す。
// GET /api/wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	entries, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]wishlistEntryResponse, len(entries))
	for i, e := range entries {
		results[i] = wishlistEntryResponse{
			ID:         e.ID,
			BookID:     e.BookID,
			BookName:   e.BookName,
			BookAuthor: e.BookAuthor,
			Available:  e.Available,
			CreatedAt:  e.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, results)
}

// Remove はエントリの削除を処理する。
// DELETE /api/wishlist/:id
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	entryID := chi.URLParam(r, "id")

	if err := h.service.Remove(r.Context(), userID, entryID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
