// Package profile は利用者プロフィールのドメインロジックを提供する。
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/iamyatin-14/connectfood/internal/model"
	"github.com/iamyatin-14/connectfood/internal/security"
)

// Gateway はバックエンドAPIクライアントのうちプロフィールが必要とする操作。
type Gateway interface {
	Get(ctx context.Context, token, path string, query url.Values, out any) error
	Put(ctx context.Context, token, path string, body, out any) error
}

// Service はプロフィールに関するビジネスロジックを提供する。
type Service struct {
	gw        Gateway
	sanitizer security.TextSanitizerService
	logger    *slog.Logger
}

// NewService はServiceを生成する。
func NewService(gw Gateway, sanitizer security.TextSanitizerService, logger *slog.Logger) *Service {
	return &Service{
		gw:        gw,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// Get は現在のプロフィールを取得する。
// profileCompleteはバックエンドの導出値であり、取得のたびに最新の値を信頼する。
func (s *Service) Get(ctx context.Context, token string) (*model.Profile, error) {
	var p model.Profile
	if err := s.gw.Get(ctx, token, "/profile", nil, &p); err != nil {
		return nil, model.WithFallbackMessage(
			fmt.Errorf("プロフィールの取得に失敗しました: %w", err),
			"プロフィールの取得に失敗しました。")
	}
	return &p, nil
}

// Update はプロフィールを部分更新し、更新後のプロフィールを返す。
// 自由記述フィールドは送信前にサニタイズされる。
func (s *Service) Update(ctx context.Context, token string, update model.ProfileUpdate) (*model.Profile, error) {
	update = s.sanitizeUpdate(update)

	var p model.Profile
	if err := s.gw.Put(ctx, token, "/profile", update, &p); err != nil {
		return nil, model.WithFallbackMessage(
			fmt.Errorf("プロフィールの更新に失敗しました: %w", err),
			"プロフィールの更新に失敗しました。")
	}

	s.logger.Info("profile updated", slog.String("role", string(p.Role)))
	return &p, nil
}

// Complete は初回プロフィール入力を検証して保存する。
// 氏名は必須。受取団体は団体名と認可番号の両方が必須。
// 検証はネットワーク呼び出しの前に行われる。
func (s *Service) Complete(ctx context.Context, token string, role model.Role, update model.ProfileUpdate) (*model.Profile, error) {
	update = s.sanitizeUpdate(update)

	if update.Name == "" {
		return nil, model.NewNameRequiredError()
	}
	if role == model.RoleRecipient && (update.OrganizationName == "" || update.LicenseNumber == "") {
		return nil, model.NewOrgFieldsRequiredError()
	}

	var p model.Profile
	if err := s.gw.Put(ctx, token, "/profile", update, &p); err != nil {
		return nil, model.WithFallbackMessage(
			fmt.Errorf("プロフィールの保存に失敗しました: %w", err),
			"プロフィールの保存に失敗しました。")
	}

	s.logger.Info("profile completed", slog.String("role", string(role)))
	return &p, nil
}

// Stats は活動統計を取得する。
func (s *Service) Stats(ctx context.Context, token string) (*model.Stats, error) {
	var st model.Stats
	if err := s.gw.Get(ctx, token, "/profile/stats", nil, &st); err != nil {
		return nil, model.WithFallbackMessage(
			fmt.Errorf("統計の取得に失敗しました: %w", err),
			"統計の取得に失敗しました。")
	}
	return &st, nil
}

// sanitizeUpdate は自由記述フィールドからHTMLタグを除去する。
// 電話番号やURLなど形式が定まるフィールドはそのまま通す。
func (s *Service) sanitizeUpdate(update model.ProfileUpdate) model.ProfileUpdate {
	update.Name = s.sanitizer.Sanitize(update.Name)
	update.Address = s.sanitizer.Sanitize(update.Address)
	update.OrganizationName = s.sanitizer.Sanitize(update.OrganizationName)
	return update
}
