package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iamyatin-14/connectfood/internal/middleware"
	"github.com/iamyatin-14/connectfood/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// LoginWithGoogle はGoogleのIDトークンをバックエンドのセッショントークンに交換する。
	LoginWithGoogle(ctx context.Context, idToken, roleStr string) (string, model.Role, error)
}

// SessionStore はセッションの読み書きに必要なインターフェース。
// session.Storeの部分集合として定義する。
type SessionStore interface {
	middleware.SessionReader
	Login(w http.ResponseWriter, r *http.Request, token string, role model.Role) error
	Logout(w http.ResponseWriter, r *http.Request) error
}

// ViewDropper はログアウト時にセッションのビューを破棄するためのインターフェース。
type ViewDropper interface {
	Drop(token string)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	sessions SessionStore
	views    ViewDropper
	logger   *slog.Logger
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, sessions SessionStore, views ViewDropper, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		views:    views,
		logger:   logger,
	}
}

// loginPageRequest はログインリクエストのボディ。
// Googleサインインのコールバックが資格情報と選択ロールを送信する。
type loginPageRequest struct {
	Credential string `json:"credential"`
	Role       string `json:"role"`
}

// loginPageResponse はログイン成功時のレスポンス。
type loginPageResponse struct {
	Redirect string `json:"redirect"`
}

// Login は資格情報を交換しセッションを確立する。
// JSONリクエストには遷移先をJSONで返し、フォーム送信には303で応答する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginPageRequest
	isJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
	if isJSON {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_REQUEST",
				Message:  "リクエストボディの解析に失敗しました。",
				Category: "validation",
				Action:   "正しいJSON形式でリクエストしてください。",
			})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		req.Credential = r.PostFormValue("credential")
		req.Role = r.PostFormValue("role")
	}

	token, role, err := h.service.LoginWithGoogle(r.Context(), req.Credential, req.Role)
	if err != nil {
		middleware.WriteAPIError(w, err, "ログインに失敗しました。")
		return
	}

	if err := h.sessions.Login(w, r, token, role); err != nil {
		h.logger.Error("session write failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	if isJSON {
		writeJSON(w, http.StatusOK, loginPageResponse{Redirect: role.DashboardPath()})
		return
	}
	http.Redirect(w, r, role.DashboardPath(), http.StatusSeeOther)
}

// Logout はセッションを破棄しトップページへ誘導する。
// セッションが存在しない場合も成功として扱う。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromContext(r.Context()); sess != nil {
		h.views.Drop(sess.Token)
	}

	if err := h.sessions.Logout(w, r); err != nil {
		// Cookieの破棄に失敗してもトップページへは誘導する
		h.logger.Error("session destroy failed", slog.String("error", err.Error()))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
