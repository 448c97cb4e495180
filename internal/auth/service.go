// Package auth はGoogleサインイン資格情報のバックエンド交換によるログインを提供する。
// IDトークンの検証はバックエンドが行い、クライアントは中身を解釈しない。
package auth

import (
	"context"
	"log/slog"

	"github.com/iamyatin-14/connectfood/internal/metrics"
	"github.com/iamyatin-14/connectfood/internal/model"
)

// Gateway はバックエンドAPIクライアントのうち認証が必要とする操作。
type Gateway interface {
	Post(ctx context.Context, token, path string, body, out any) error
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	gw      Gateway
	logger  *slog.Logger
	metrics metrics.MetricsCollector
}

// NewService はServiceを生成する。
func NewService(gw Gateway, logger *slog.Logger, collector metrics.MetricsCollector) *Service {
	return &Service{
		gw:      gw,
		logger:  logger,
		metrics: collector,
	}
}

// loginRequest は資格情報交換エンドポイントへのリクエスト。
type loginRequest struct {
	IDToken string     `json:"idToken"`
	Role    model.Role `json:"role"`
}

// loginResponse は資格情報交換エンドポイントのレスポンス。
// ロールの表記揺れはデコード時に正規化される。
type loginResponse struct {
	JWTToken string     `json:"jwtToken"`
	Role     model.Role `json:"role"`
}

// LoginWithGoogle はGoogleのIDトークンをバックエンドのセッショントークンに交換する。
// 成功時はトークンと正準表現のロールを返す。
// ロールが選択されていない、または未知の場合はネットワーク呼び出しを行わずに失敗する。
func (s *Service) LoginWithGoogle(ctx context.Context, idToken, roleStr string) (string, model.Role, error) {
	if idToken == "" {
		s.metrics.RecordLoginFailure()
		return "", "", model.NewLoginFailedError("認証資格情報がありません。")
	}

	if roleStr == "" {
		s.metrics.RecordLoginFailure()
		return "", "", model.NewRoleRequiredError()
	}
	role, err := model.ParseRole(roleStr)
	if err != nil {
		s.metrics.RecordLoginFailure()
		return "", "", model.NewRoleInvalidError(roleStr)
	}

	var resp loginResponse
	req := loginRequest{IDToken: idToken, Role: role}
	if err := s.gw.Post(ctx, "", "/auth/google", req, &resp); err != nil {
		s.metrics.RecordLoginFailure()
		s.logger.Error("credential exchange failed",
			slog.String("role", string(role)),
			slog.String("error", err.Error()),
		)
		return "", "", model.NewLoginFailedError(model.UserMessage(err, ""))
	}

	if resp.JWTToken == "" {
		s.metrics.RecordLoginFailure()
		s.logger.Error("credential exchange returned empty token",
			slog.String("role", string(role)),
		)
		return "", "", model.NewLoginFailedError("")
	}

	// バックエンドがロールを返さない場合は要求したロールを採用する
	if !resp.Role.Valid() {
		resp.Role = role
	}

	s.metrics.RecordLoginSuccess()
	s.logger.Info("user logged in",
		slog.String("role", string(resp.Role)),
	)

	return resp.JWTToken, resp.Role, nil
}
