package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iamyatin-14/connectfood/internal/middleware"
	"github.com/iamyatin-14/connectfood/internal/model"
	"github.com/iamyatin-14/connectfood/internal/security"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// セッションとビュー
	Sessions SessionStore
	Views    ViewRegistry

	// サービス
	AuthService    AuthServiceInterface
	ProfileService ProfileServiceInterface

	// ミドルウェア依存
	RateLimiter *middleware.RateLimiter
	CSRF        middleware.CSRFConfig

	// ページ
	TemplateDir    string
	StaticDir      string
	GoogleClientID string

	// アバタープロキシ
	AvatarGuard   security.SSRFGuardService
	AvatarTimeout time.Duration
	AvatarMaxSize int64
}

// NewRouter は全ルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → SecurityHeaders → Logging → Recovery → CSRF → Session
//
// ガードとレート制限はルートグループごとに適用する。
func NewRouter(deps *RouterDeps) (http.Handler, error) {
	pages, err := NewPageHandler(deps.TemplateDir, deps.GoogleClientID, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("ページハンドラーの初期化に失敗しました: %w", err)
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.Sessions, deps.Views, deps.Logger)
	profileHandler := NewProfileHandler(deps.ProfileService)
	donationHandler := NewDonationHandler(deps.Views)
	avatarHandler := NewAvatarHandler(deps.AvatarGuard, deps.AvatarTimeout, deps.AvatarMaxSize, deps.Logger)

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCSRFMiddleware(deps.CSRF))
	r.Use(middleware.NewSessionMiddleware(deps.Sessions))

	// 死活監視
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// 静的ファイル
	if deps.StaticDir != "" {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir)))
		r.Get("/static/*", fileServer.ServeHTTP)
	}

	// --- ページ ---
	r.Get("/", pages.Home)
	r.Get("/about", pages.About)
	r.With(middleware.RequireAnonymous()).Get("/login", pages.Login)
	r.With(middleware.RequirePageRole(model.RoleDonor)).Get("/donor-dashboard", pages.DonorDashboard)
	r.With(middleware.RequirePageRole(model.RoleDonor)).Get("/donate", pages.Donate)
	r.With(middleware.RequirePageRole(model.RoleRecipient)).Get("/recipient-dashboard", pages.RecipientDashboard)
	r.With(middleware.RequireAuthPage()).Get("/complete-profile", pages.CompleteProfile)

	// --- 認証 ---
	r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)

	// --- JSONエンドポイント ---
	// ミドルウェアスタック: RateLimit(General) → APIセッションガード
	r.Route("/app", func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.RequireAPISession())

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profileHandler.Get)
			r.Put("/", profileHandler.Update)
			r.Put("/complete", profileHandler.Complete)
			r.Get("/stats", profileHandler.Stats)
		})

		r.Get("/avatar", avatarHandler.Proxy)

		r.Route("/donations", func(r chi.Router) {
			donorOnly := middleware.RequireAPIRole(model.RoleDonor)
			recipientOnly := middleware.RequireAPIRole(model.RoleRecipient)

			r.With(donorOnly).Get("/", donationHandler.DonorDashboard)
			r.With(donorOnly).Post("/", donationHandler.Create)

			r.With(recipientOnly).Get("/live", donationHandler.Live)
			r.With(recipientOnly).Get("/received", donationHandler.Received)

			r.Route("/{id}", func(r chi.Router) {
				r.With(donorOnly).Put("/", donationHandler.Update)
				r.With(donorOnly).Delete("/", donationHandler.Delete)

				r.With(recipientOnly).Put("/initiate", donationHandler.Initiate)
				r.With(recipientOnly).Put("/collect", donationHandler.Collect)
			})
		})
	})

	// 未知のパスはトップページへ誘導する
	r.NotFound(pages.NotFound)

	return r, nil
}
