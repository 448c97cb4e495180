// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/iamyatin-14/connectfood/internal/middleware"
	"github.com/iamyatin-14/connectfood/internal/model"
)

// PageHandler はサーバーレンダリングページのHTTPハンドラー。
// テンプレートは起動時に1回パースされる。
type PageHandler struct {
	tmpl           *template.Template
	googleClientID string
	logger         *slog.Logger
}

// NewPageHandler はテンプレートディレクトリをパースしてPageHandlerを生成する。
func NewPageHandler(templateDir, googleClientID string, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := template.ParseGlob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("テンプレートのパースに失敗しました: %w", err)
	}
	return &PageHandler{
		tmpl:           tmpl,
		googleClientID: googleClientID,
		logger:         logger,
	}, nil
}

// pageData は全ページ共通のテンプレートデータ。
type pageData struct {
	Title         string
	Authenticated bool
	Role          model.Role
	DashboardPath string

	// ログインページ用
	GoogleClientID string
	LoginError     string

	// 状態変更リクエストのヘッダーに載せるCSRFトークン
	CSRFToken string
}

// newPageData はリクエストのセッション状態から共通データを構築する。
func (h *PageHandler) newPageData(r *http.Request, title string) pageData {
	data := pageData{
		Title:     title,
		CSRFToken: middleware.CSRFTokenFromRequest(r),
	}
	if sess := middleware.SessionFromContext(r.Context()); sess != nil {
		data.Authenticated = true
		data.Role = sess.Role
		data.DashboardPath = sess.Role.DashboardPath()
	}
	return data
}

// render は指定テンプレートを実行する。失敗時は500を返す。
func (h *PageHandler) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template rendering failed",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// Home はトップページを表示する。
// GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, "home.html", h.newPageData(r, "ConnectFood"))
}

// About はサービス紹介ページを表示する。
// GET /about
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, "about.html", h.newPageData(r, "ConnectFoodについて"))
}

// Login はログインページを表示する。
// Googleサインインのウィジェットを埋め込む。クライアントIDが未設定の場合は
// ウィジェットを初期化できないため、ブロッキングエラーを表示する。
// GET /login
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(r, "ログイン")
	data.GoogleClientID = h.googleClientID
	if h.googleClientID == "" {
		data.LoginError = "サインインの設定が不完全なため、現在ログインできません。"
	}
	h.render(w, "login.html", data)
}

// DonorDashboard は寄付者ダッシュボードページを表示する。
// 表示データは /app/donations から非同期に取得される。
// GET /donor-dashboard
func (h *PageHandler) DonorDashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, "donor_dashboard.html", h.newPageData(r, "寄付者ダッシュボード"))
}

// RecipientDashboard は受取団体ダッシュボードページを表示する。
// GET /recipient-dashboard
func (h *PageHandler) RecipientDashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, "recipient_dashboard.html", h.newPageData(r, "受取団体ダッシュボード"))
}

// Donate は出品作成ページを表示する。
// GET /donate
func (h *PageHandler) Donate(w http.ResponseWriter, r *http.Request) {
	h.render(w, "donate.html", h.newPageData(r, "食品を寄付する"))
}

// CompleteProfile はプロフィール入力ページを表示する。
// GET /complete-profile
func (h *PageHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	h.render(w, "complete_profile.html", h.newPageData(r, "プロフィール入力"))
}

// NotFound は未知のパスをトップページへ誘導する。
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
