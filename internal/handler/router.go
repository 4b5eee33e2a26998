package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/libman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier      middleware.TokenVerifier
	CORSAllowedOrigin  string
	RateLimiter        *middleware.RateLimiter
	HTTPStatusRecorder middleware.HTTPStatusRecorder

	// サービス
	AuthService     AuthServiceInterface
	CatalogService  CatalogServiceInterface
	LoanService     LoanServiceInterface
	WishlistService WishlistServiceInterface
	ReviewService   ReviewServiceInterface
	UserFinder      UserFinder

	// 貸出日数のデフォルト値
	DefaultLoanDays int

	Logger *slog.Logger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → [Metrics] → Auth → RateLimit(General)
//
// 認証ルート（/auth/register, /auth/login）とヘルスチェックは
// 認証ミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.HTTPStatusRecorder != nil {
		r.Use(middleware.NewHTTPMetricsMiddleware(deps.HTTPStatusRecorder))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	bookHandler := NewBookHandler(deps.CatalogService)
	loanHandler := NewLoanHandler(deps.LoanService, deps.DefaultLoanDays)
	wishlistHandler := NewWishlistHandler(deps.WishlistService)
	reviewHandler := NewReviewHandler(deps.ReviewService, deps.UserFinder)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// /auth/me のみ認証が必要
		r.With(middleware.NewAuthMiddleware(deps.TokenVerifier)).Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 蔵書カタログ
		r.Route("/api/books", func(r chi.Router) {
			r.Get("/", bookHandler.List)
			r.Get("/categories", bookHandler.Categories)

			// 管理者専用の蔵書管理
			r.With(middleware.NewAdminOnlyMiddleware()).Post("/", bookHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", bookHandler.Get)
				r.With(middleware.NewAdminOnlyMiddleware()).Put("/", bookHandler.Update)
				r.With(middleware.NewAdminOnlyMiddleware()).Delete("/", bookHandler.Delete)

				// レビュー
				r.Get("/reviews", reviewHandler.ListForBook)
				r.Post("/reviews", reviewHandler.Add)
			})
		})

		// 貸出管理
		r.Route("/api/loans", func(r chi.Router) {
			// POST /api/loans - 貸出（貸出専用レート制限を追加）
			r.With(deps.RateLimiter.BorrowMiddleware()).Post("/", loanHandler.Borrow)

			r.Get("/current", loanHandler.Current)
			r.Get("/history", loanHandler.History)
			r.Put("/{id}/return", loanHandler.Return)
		})

		// 読みたい本リスト
		r.Route("/api/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.List)
			r.Post("/", wishlistHandler.Add)
			r.Delete("/{id}", wishlistHandler.Remove)
		})

		// レビュー削除
		r.Delete("/api/reviews/{id}", reviewHandler.Delete)
	})

	return r
}
