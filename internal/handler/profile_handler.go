package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iamyatin-14/connectfood/internal/middleware"
	"github.com/iamyatin-14/connectfood/internal/model"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	Get(ctx context.Context, token string) (*model.Profile, error)
	Update(ctx context.Context, token string, update model.ProfileUpdate) (*model.Profile, error)
	Complete(ctx context.Context, token string, role model.Role, update model.ProfileUpdate) (*model.Profile, error)
	Stats(ctx context.Context, token string) (*model.Stats, error)
}

// ProfileHandler はプロフィール関連のHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get は現在のプロフィールを返す。
// GET /app/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeUnauthenticated(w)
		return
	}

	p, err := h.service.Get(r.Context(), sess.Token)
	if err != nil {
		middleware.WriteAPIError(w, err, "プロフィールの取得に失敗しました。")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Update はプロフィールを部分更新する。
// PUT /app/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeUnauthenticated(w)
		return
	}

	var update model.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	p, err := h.service.Update(r.Context(), sess.Token, update)
	if err != nil {
		middleware.WriteAPIError(w, err, "プロフィールの更新に失敗しました。")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Complete は初回プロフィール入力を検証して保存する。
// 氏名は必須。受取団体は団体名と認可番号の両方が必須。
// PUT /app/profile/complete
func (h *ProfileHandler) Complete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeUnauthenticated(w)
		return
	}

	var update model.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	p, err := h.service.Complete(r.Context(), sess.Token, sess.Role, update)
	if err != nil {
		middleware.WriteAPIError(w, err, "プロフィールの保存に失敗しました。")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Stats は活動統計を返す。
// GET /app/profile/stats
func (h *ProfileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeUnauthenticated(w)
		return
	}

	st, err := h.service.Stats(r.Context(), sess.Token)
	if err != nil {
		middleware.WriteAPIError(w, err, "統計の取得に失敗しました。")
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// writeUnauthenticated は未認証エラーを統一フォーマットで書き込む。
// ガードミドルウェアの背後では通常到達しない。
func writeUnauthenticated(w http.ResponseWriter) {
	middleware.WriteErrorResponse(w, http.StatusUnauthorized, &model.APIError{
		Code:     "UNAUTHENTICATED",
		Message:  "ログインが必要です。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	})
}

// writeInvalidRequestBody はボディ解析失敗のエラーを統一フォーマットで書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}
