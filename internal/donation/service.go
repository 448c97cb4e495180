// Package donation は食品出品のドメインロジックを提供する。
// 出品のライフサイクルフラグはバックエンドのみが書き換え、
// クライアントは各操作後に必ずレコードを再取得して状態の典拠とする。
package donation

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/iamyatin-14/connectfood/internal/model"
	"github.com/iamyatin-14/connectfood/internal/security"
)

// Gateway はバックエンドAPIクライアントのうち出品が必要とする操作。
type Gateway interface {
	Get(ctx context.Context, token, path string, query url.Values, out any) error
	Post(ctx context.Context, token, path string, body, out any) error
	Put(ctx context.Context, token, path string, body, out any) error
	Delete(ctx context.Context, token, path string) error
}

// Service は出品に関するビジネスロジックを提供する。
type Service struct {
	gw        Gateway
	sanitizer security.TextSanitizerService
	logger    *slog.Logger
	now       func() time.Time // テスト用に差し替え可能
}

// NewService はServiceを生成する。
func NewService(gw Gateway, sanitizer security.TextSanitizerService, logger *slog.Logger) *Service {
	return &Service{
		gw:        gw,
		sanitizer: sanitizer,
		logger:    logger,
		now:       time.Now,
	}
}

// ValidateDraft は出品ドラフトをローカル検証する。
// 検証に失敗した場合、ネットワーク呼び出しは行われない前提で呼び出す。
func (s *Service) ValidateDraft(draft model.DonationDraft) error {
	if draft.FoodItem == "" {
		return model.NewFoodItemRequiredError()
	}
	if draft.Quantity <= 0 {
		return model.NewQuantityInvalidError(draft.Quantity)
	}
	if !model.ValidUnit(draft.Unit) {
		return model.NewUnitInvalidError(draft.Unit)
	}
	if draft.City == "" {
		return model.NewCityRequiredError()
	}
	if draft.District == "" {
		return model.NewDistrictRequiredError()
	}
	if draft.ExpiryDate == nil {
		return model.NewExpiryRequiredError()
	}
	if !draft.ExpiryDate.After(s.now()) {
		return model.NewExpiryNotFutureError()
	}
	return nil
}

// Create は出品を作成する。ローカル検証を通過した場合のみバックエンドに送信する。
func (s *Service) Create(ctx context.Context, token string, draft model.DonationDraft) (*model.Donation, error) {
	draft = s.sanitizeDraft(draft)

	if err := s.ValidateDraft(draft); err != nil {
		return nil, err
	}

	var d model.Donation
	if err := s.gw.Post(ctx, token, "/donations", draft, &d); err != nil {
		return nil, model.WithFallbackMessage(
			fmt.Errorf("出品の作成に失敗しました: %w", err),
			"出品の作成に失敗しました。")
	}

	s.logger.Info("donation created",
		slog.String("donation_id", d.ID),
		slog.String("city", d.City),
	)
	return &d, nil
}

// Mine は自分が作成した出品の一覧を取得する。
func (s *Service) Mine(ctx context.Context, token string) ([]model.Donation, error) {
	var list []model.Donation
	if err := s.gw.Get(ctx, token, "/donations/my", nil, &list); err != nil {
		return nil, model.WithFallbackMessage(
			fmt.Errorf("出品一覧の取得に失敗しました: %w", err),
			"出品一覧の取得に失敗しました。")
	}
	return list, nil
}

// Live は公開中の出品一覧を絞り込み条件付きで取得する。
// ゼロ値の条件はクエリパラメータとして送信されない。
func (s *Service) Live(ctx context.Context, token string, filters model.DonationFilters) ([]model.Donation, error) {
	q := url.Values{}
	if filters.City != "" {
		q.Set("city", filters.City)
	}
	if filters.District != "" {
		q.Set("district", filters.District)
	}
	if filters.MinQuantity > 0 {
		q.Set("minQuantity", strconv.Itoa(filters.MinQuantity))
	}

	var list []model.Donation
	if err := s.gw.Get(ctx, token, "/donations/live", q, &list); err != nil {
		return nil, model.WithFallbackMessage(
			fmt.Errorf("公開出品一覧の取得に失敗しました: %w", err),
			"公開出品一覧の取得に失敗しました。")
	}
	return list, nil
}

// Received は自分が回収した出品の一覧を取得する。
func (s *Service) Received(ctx context.Context, token string) ([]model.Donation, error) {
	var list []model.Donation
	if err := s.gw.Get(ctx, token, "/donations/received", nil, &list); err != nil {
		return nil, model.WithFallbackMessage(
			fmt.Errorf("回収済み一覧の取得に失敗しました: %w", err),
			"回収済み一覧の取得に失敗しました。")
	}
	return list, nil
}

// GetByID は出品を1件取得する。
func (s *Service) GetByID(ctx context.Context, token, id string) (*model.Donation, error) {
	var d model.Donation
	if err := s.gw.Get(ctx, token, "/donations/"+id, nil, &d); err != nil {
		return nil, model.WithFallbackMessage(
			fmt.Errorf("出品の取得に失敗しました: %w", err),
			"出品の取得に失敗しました。")
	}
	return &d, nil
}

// Update は自分の出品を更新する。作成時と同じローカル検証を行う。
func (s *Service) Update(ctx context.Context, token, id string, draft model.DonationDraft) (*model.Donation, error) {
	draft = s.sanitizeDraft(draft)

	if err := s.ValidateDraft(draft); err != nil {
		return nil, err
	}

	var d model.Donation
	if err := s.gw.Put(ctx, token, "/donations/"+id, draft, &d); err != nil {
		return nil, model.WithFallbackMessage(
			fmt.Errorf("出品の更新に失敗しました: %w", err),
			"出品の更新に失敗しました。")
	}

	s.logger.Info("donation updated", slog.String("donation_id", id))
	return &d, nil
}

// Delete は自分の出品を削除する。
func (s *Service) Delete(ctx context.Context, token, id string) error {
	if err := s.gw.Delete(ctx, token, "/donations/"+id); err != nil {
		return model.WithFallbackMessage(
			fmt.Errorf("出品の削除に失敗しました: %w", err),
			"出品の削除に失敗しました。")
	}

	s.logger.Info("donation deleted", slog.String("donation_id", id))
	return nil
}

// Initiate は回収開始を宣言し、再取得した最新のレコードを返す。
// 操作後の状態はローカルで書き換えず、常にサーバーの値を典拠とする。
func (s *Service) Initiate(ctx context.Context, token, id string) (*model.Donation, error) {
	if err := s.gw.Put(ctx, token, "/donations/"+id+"/initiate", nil, nil); err != nil {
		return nil, model.WithFallbackMessage(
			fmt.Errorf("回収開始に失敗しました: %w", err),
			"回収開始に失敗しました。")
	}

	s.logger.Info("collection initiated", slog.String("donation_id", id))
	return s.GetByID(ctx, token, id)
}

// Collect は回収完了を宣言し、再取得した最新のレコードを返す。
func (s *Service) Collect(ctx context.Context, token, id string) (*model.Donation, error) {
	if err := s.gw.Put(ctx, token, "/donations/"+id+"/collect", nil, nil); err != nil {
		return nil, model.WithFallbackMessage(
			fmt.Errorf("回収完了に失敗しました: %w", err),
			"回収完了に失敗しました。")
	}

	s.logger.Info("collection completed", slog.String("donation_id", id))
	return s.GetByID(ctx, token, id)
}

// sanitizeDraft は自由記述フィールドからHTMLタグを除去する。
func (s *Service) sanitizeDraft(draft model.DonationDraft) model.DonationDraft {
	draft.FoodItem = s.sanitizer.Sanitize(draft.FoodItem)
	draft.Description = s.sanitizer.Sanitize(draft.Description)
	draft.Address = s.sanitizer.Sanitize(draft.Address)
	draft.SpecialInstructions = s.sanitizer.Sanitize(draft.SpecialInstructions)
	return draft
}
