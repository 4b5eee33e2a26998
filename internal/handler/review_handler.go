package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/libman/internal/middleware"
	"github.com/hitoshi/libman/internal/model"
)

// ReviewServiceInterface はレビューハンドラーが必要とするサービスインターフェース。
type ReviewServiceInterface interface {
	// Add はレビューを投稿する。
	Add(ctx context.Context, userID, bookID string, rating int, comment string) (*model.Review, error)
	// ListForBook は指定蔵書のレビュー一覧を返す。
	ListForBook(ctx context.Context, bookID string) ([]*model.Review, error)
	// Delete はレビューを削除する。投稿者本人または管理者のみ。
	Delete(ctx context.Context, actor *model.User, reviewID string) error
}

// UserFinder は削除時の権限判定に使用するユーザー検索インターフェース。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// ReviewHandler はレビューのHTTPハンドラー。
type ReviewHandler struct {
	service    ReviewServiceInterface
	userFinder UserFinder
}

// NewReviewHandler はReviewHandlerを生成する。
func NewReviewHandler(service ReviewServiceInterface, userFinder UserFinder) *ReviewHandler {
	return &ReviewHandler{
		service:    service,
		userFinder: userFinder,
	}
}

// addReviewRequest はレビュー投稿リクエストのボディ。
type addReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// reviewResponse はレビューのAPIレスポンス。
type reviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Add はレビュー投稿を処理する。
// POST /api/books/:id/reviews
func (h *ReviewHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	bookID := chi.URLParam(r, "id")

	var req addReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	rev, err := h.service.Add(r.Context(), userID, bookID, req.Rating, req.Comment)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReviewResponse(rev))
}

// ListForBook は蔵書のレビュー一覧を返す。
// GET /api/books/:id/reviews
func (h *ReviewHandler) ListForBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	reviews, err := h.service.ListForBook(r.Context(), bookID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]reviewResponse, len(reviews))
	for i, rev := range reviews {
		results[i] = toReviewResponse(rev)
	}
	writeJSON(w, http.StatusOK, results)
}

// Delete はレビュー削除を処理する。
// DELETE /api/reviews/:id
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	actor, err := h.userFinder.FindByID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if actor == nil {
		writeUnauthorized(w)
		return
	}

	reviewID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), actor, reviewID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toReviewResponse はmodel.ReviewからAPIレスポンスに変換する。
func toReviewResponse(rev *model.Review) reviewResponse {
	return reviewResponse{
		ID:        rev.ID,
		UserID:    rev.UserID,
		BookID:    rev.BookID,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		CreatedAt: rev.CreatedAt,
	}
}
