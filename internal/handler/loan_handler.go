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

// LoanServiceInterface は貸出ハンドラーが必要とするサービスインターフェース。
type LoanServiceInterface interface {
	// Borrow は蔵書を貸し出す。
	Borrow(ctx context.Context, userID, bookID string, durationDays int) (*model.Loan, error)
	// Return は貸出をクローズする。冪等に動作する。
	Return(ctx context.Context, loanID string) (*model.Loan, error)
	// CurrentLoans はユーザーのオープンな貸出を返す。
	CurrentLoans(ctx context.Context, userID string) ([]*model.Loan, error)
	// LoanHistory はユーザーの全貸出履歴を返す。
	LoanHistory(ctx context.Context, userID string) ([]*model.Loan, error)
}

// LoanHandler は貸出管理のHTTPハンドラー。
type LoanHandler struct {
	service     LoanServiceInterface
	defaultDays int
}

// NewLoanHandler はLoanHandlerを生成する。
// defaultDaysは貸出日数が指定されなかった場合に使用する。
func NewLoanHandler(service LoanServiceInterface, defaultDays int) *LoanHandler {
	return &LoanHandler{
		service:     service,
		defaultDays: defaultDays,
	}
}

// borrowRequest は貸出リクエストのボディ。
type borrowRequest struct {
	BookID       string `json:"book_id"`
	DurationDays int    `json:"duration_days,omitempty"`
}

// loanResponse は貸出記録のAPIレスポンス。
type loanResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     string     `json:"status"`
}

// Borrow は貸出を処理する。
// POST /api/loans
func (h *LoanHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req borrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	days := req.DurationDays
	if days == 0 {
		days = h.defaultDays
	}

	loan, err := h.service.Borrow(r.Context(), userID, req.BookID, days)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLoanResponse(loan))
}

// Return は返却を処理する。
// PUT /api/loans/:id/return
func (h *LoanHandler) Return(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")

	loan, err := h.service.Return(r.Context(), loanID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLoanResponse(loan))
}

// Current は現在の貸出一覧を返す。
// GET /api/loans/current
func (h *LoanHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	loans, err := h.service.CurrentLoans(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLoanResponses(loans))
}

// History は貸出履歴を返す。
// GET /api/loans/history
func (h *LoanHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	loans, err := h.service.LoanHistory(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLoanResponses(loans))
}

// toLoanResponse はmodel.LoanからAPIレスポンスに変換する。
// ステータスは応答時点の日付で導出する。
func toLoanResponse(loan *model.Loan) loanResponse {
	return loanResponse{
		ID:         loan.ID,
		UserID:     loan.UserID,
		BookID:     loan.BookID,
		BorrowDate: loan.BorrowDate,
		DueDate:    loan.DueDate,
		ReturnDate: loan.ReturnDate,
		Status:     string(loan.Status(time.Now())),
	}
}

func toLoanResponses(loans []*model.Loan) []loanResponse {
	results := make([]loanResponse, len(loans))
	for i, loan := range loans {
		results[i] = toLoanResponse(loan)
	}
	return results
}
