package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/libman/internal/auth"
	"github.com/hitoshi/libman/internal/catalog"
	"github.com/hitoshi/libman/internal/middleware"
	"github.com/hitoshi/libman/internal/model"
	"github.com/hitoshi/libman/internal/repository"
)

// mockCatalogService はCatalogServiceInterfaceのモック実装。
type mockCatalogService struct {
	listBooksFunc  func(ctx context.Context, keyword string, page, pageSize int) (*catalog.BookPage, error)
	getBookFunc    func(ctx context.Context, bookID string) (*model.Book, error)
	categoriesFunc func(ctx context.Context) ([]model.CategoryCount, error)
	createBookFunc func(ctx context.Context, input catalog.BookInput) (*model.Book, error)
	updateBookFunc func(ctx context.Context, bookID string, input catalog.BookInput) (*model.Book, error)
	deleteBookFunc func(ctx context.Context, bookID string) error
}

func (m *mockCatalogService) ListBooks(ctx context.Context, keyword string, page, pageSize int) (*catalog.BookPage, error) {
	if m.listBooksFunc != nil {
		return m.listBooksFunc(ctx, keyword, page, pageSize)
	}
	return &catalog.BookPage{Page: 1, PageSize: 20}, nil
}

func (m *mockCatalogService) GetBook(ctx context.Context, bookID string) (*model.Book, error) {
	if m.getBookFunc != nil {
		return m.getBookFunc(ctx, bookID)
	}
	return nil, model.NewBookNotFoundError(bookID)
}

func (m *mockCatalogService) Categories(ctx context.Context) ([]model.CategoryCount, error) {
	if m.categoriesFunc != nil {
		return m.categoriesFunc(ctx)
	}
	return nil, nil
}

func (m *mockCatalogService) CreateBook(ctx context.Context, input catalog.BookInput) (*model.Book, error) {
	if m.createBookFunc != nil {
		return m.createBookFunc(ctx, input)
	}
	return &model.Book{ID: "book-new", Name: input.Name, Available: true}, nil
}

func (m *mockCatalogService) UpdateBook(ctx context.Context, bookID string, input catalog.BookInput) (*model.Book, error) {
	if m.updateBookFunc != nil {
		return m.updateBookFunc(ctx, bookID, input)
	}
	return nil, model.NewBookNotFoundError(bookID)
}

func (m *mockCatalogService) DeleteBook(ctx context.Context, bookID string) error {
	if m.deleteBookFunc != nil {
		return m.deleteBookFunc(ctx, bookID)
	}
	return model.NewBookNotFoundError(bookID)
}

// mockWishlistService はWishlistServiceInterfaceのモック実装。
type mockWishlistService struct {
	addFunc    func(ctx context.Context, userID, bookID string) (*model.WishlistEntry, error)
	listFunc   func(ctx context.Context, userID string) ([]repository.WishlistEntryWithBook, error)
	removeFunc func(ctx context.Context, userID, entryID string) error
}

func (m *mockWishlistService) Add(ctx context.Context, userID, bookID string) (*model.WishlistEntry, error) {
	if m.addFunc != nil {
		return m.addFunc(ctx, userID, bookID)
	}
	return &model.WishlistEntry{ID: "entry-1", UserID: userID, BookID: bookID}, nil
}

func (m *mockWishlistService) List(ctx context.Context, userID string) ([]repository.WishlistEntryWithBook, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockWishlistService) Remove(ctx context.Context, userID, entryID string) error {
	if m.removeFunc != nil {
		return m.removeFunc(ctx, userID, entryID)
	}
	return nil
}

// mockReviewService はReviewServiceInterfaceのモック実装。
type mockReviewService struct {
	addFunc         func(ctx context.Context, userID, bookID string, rating int, comment string) (*model.Review, error)
	listForBookFunc func(ctx context.Context, bookID string) ([]*model.Review, error)
	deleteFunc      func(ctx context.Context, actor *model.User, reviewID string) error
}

func (m *mockReviewService) Add(ctx context.Context, userID, bookID string, rating int, comment string) (*model.Review, error) {
	if m.addFunc != nil {
		return m.addFunc(ctx, userID, bookID, rating, comment)
	}
	return &model.Review{ID: "review-1", UserID: userID, BookID: bookID, Rating: rating, Comment: comment}, nil
}

func (m *mockReviewService) ListForBook(ctx context.Context, bookID string) ([]*model.Review, error) {
	if m.listForBookFunc != nil {
		return m.listForBookFunc(ctx, bookID)
	}
	return nil, nil
}

func (m *mockReviewService) Delete(ctx context.Context, actor *model.User, reviewID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, actor, reviewID)
	}
	return nil
}

// mockUserFinder はUserFinderのモック実装。
type mockUserFinder struct {
	findByIDFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.User{ID: id, Role: model.RoleUser}, nil
}

func newTestRouter(t *testing.T, issuer *auth.TokenIssuer, loanService LoanServiceInterface) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(100),
		GeneralBurst:    100,
		BorrowRate:      rate.Limit(100),
		BorrowBurst:     100,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		TokenVerifier:     issuer,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		AuthService:       &mockAuthService{},
		CatalogService:    &mockCatalogService{},
		LoanService:       loanService,
		WishlistService:   &mockWishlistService{},
		ReviewService:     &mockReviewService{},
		UserFinder:        &mockUserFinder{},
		DefaultLoanDays:   14,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func bearerToken(t *testing.T, issuer *auth.TokenIssuer, userID, role string) string {
	t.Helper()
	token, err := issuer.Issue(userID, role, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + token
}

// TestRouter_HealthWithoutAuth はヘルスチェックが認証なしで通ることを検証する。
func TestRouter_HealthWithoutAuth(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	router := newTestRouter(t, issuer, &mockLoanService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestRouter_APIRequiresAuth は/api/*が未認証で401になることを検証する。
func TestRouter_APIRequiresAuth(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	router := newTestRouter(t, issuer, &mockLoanService{})

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/books"},
		{http.MethodPost, "/api/loans"},
		{http.MethodGet, "/api/loans/current"},
		{http.MethodGet, "/api/wishlist"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s のstatus = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

// TestRouter_BorrowFlow はルーター経由の貸出を検証する。
func TestRouter_BorrowFlow(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	loanService := &mockLoanService{
		borrowFunc: func(ctx context.Context, userID, bookID string, durationDays int) (*model.Loan, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			return sampleLoan(), nil
		},
	}
	router := newTestRouter(t, issuer, loanService)

	req := httptest.NewRequest(http.MethodPost, "/api/loans", strings.NewReader(`{"book_id":"book-1"}`))
	req.Header.Set("Authorization", bearerToken(t, issuer, "user-1", model.RoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp loanResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}
	if resp.BookID != "book-1" {
		t.Errorf("book_id = %q, want book-1", resp.BookID)
	}
}

// TestRouter_AdminOnlyBookCreate は蔵書登録の認可を検証する。
func TestRouter_AdminOnlyBookCreate(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	router := newTestRouter(t, issuer, &mockLoanService{})

	body := `{"name":"新しい本"}`

	t.Run("一般ユーザーは403", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(body))
		req.Header.Set("Authorization", bearerToken(t, issuer, "user-1", model.RoleUser))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("管理者は201", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(body))
		req.Header.Set("Authorization", bearerToken(t, issuer, "admin-1", model.RoleAdmin))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Errorf("status = %d, want 201", rec.Code)
		}
	})
}

// TestRouter_CORSPreflight はOPTIONSプリフライトが204で応答することを検証する。
func TestRouter_CORSPreflight(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	router := newTestRouter(t, issuer, &mockLoanService{})

	req := httptest.NewRequest(http.MethodOptions, "/api/books", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", origin)
	}
}
