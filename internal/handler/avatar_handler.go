package handler

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/iamyatin-14/connectfood/internal/middleware"
	"github.com/iamyatin-14/connectfood/internal/model"
	"github.com/iamyatin-14/connectfood/internal/security"
)

// AvatarHandler はプロフィール画像の同一オリジンプロキシ。
// IDプロバイダーのCDNから画像を取得してそのまま返す。
// 取得先URLはSSRFガードで検証され、HTTPクライアント自体も
// プライベートネットワークへの接続をブロックする。
type AvatarHandler struct {
	guard   security.SSRFGuardService
	client  *http.Client
	maxSize int64
	logger  *slog.Logger
}

// NewAvatarHandler はAvatarHandlerを生成する。
func NewAvatarHandler(guard security.SSRFGuardService, timeout time.Duration, maxSize int64, logger *slog.Logger) *AvatarHandler {
	return &AvatarHandler{
		guard:   guard,
		client:  guard.NewSafeClient(timeout, maxSize),
		maxSize: maxSize,
		logger:  logger,
	}
}

// Proxy は指定URLの画像を取得して返す。
// GET /app/avatar?url=
func (h *AvatarHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")

	if err := h.guard.ValidateURL(rawURL); err != nil {
		h.logger.Warn("avatar URL blocked",
			slog.String("error", err.Error()),
		)
		middleware.WriteAPIError(w, model.NewAvatarURLBlockedError(), "")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		middleware.WriteAPIError(w, model.NewAvatarURLBlockedError(), "")
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		// safeurlによるダイヤル時ブロックもここに到達する
		h.logger.Warn("avatar fetch failed",
			slog.String("error", err.Error()),
		)
		middleware.WriteAPIError(w,
			model.NewUpstreamError(http.StatusBadGateway, ""),
			"画像の取得に失敗しました。")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		middleware.WriteAPIError(w,
			model.NewUpstreamError(http.StatusBadGateway, ""),
			"画像の取得に失敗しました。")
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)

	// レスポンスサイズの上限を超えた分は切り捨てる
	if _, err := io.Copy(w, io.LimitReader(resp.Body, h.maxSize)); err != nil {
		h.logger.Warn("avatar response copy failed",
			slog.String("error", err.Error()),
		)
	}
}
