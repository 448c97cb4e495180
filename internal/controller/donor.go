package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/iamyatin-14/connectfood/internal/model"
)

// DonorDonations は寄付者ビューが必要とする出品操作。
type DonorDonations interface {
	Mine(ctx context.Context, token string) ([]model.Donation, error)
	Create(ctx context.Context, token string, draft model.DonationDraft) (*model.Donation, error)
	Update(ctx context.Context, token, id string, draft model.DonationDraft) (*model.Donation, error)
	Delete(ctx context.Context, token, id string) error
}

// DonorProfile は寄付者ビューが必要とするプロフィール操作。
type DonorProfile interface {
	Get(ctx context.Context, token string) (*model.Profile, error)
	Stats(ctx context.Context, token string) (*model.Stats, error)
}

// DonorDashboard は寄付者ダッシュボードの表示データ。
type DonorDashboard struct {
	Profile   *model.Profile   `json:"profile"`
	Stats     *model.Stats     `json:"stats"`
	Donations []model.Donation `json:"donations"`

	// RequiresProfile はプロフィール未完了で入力画面への誘導が必要であることを示す。
	// 真の場合、StatsとDonationsは取得されない。
	RequiresProfile bool `json:"requiresProfile"`
}

// DonorView は寄付者ダッシュボードの表示状態を保持する。
// プロフィール完了状態は毎回の取得値を典拠とし、ローカルで推測しない。
type DonorView struct {
	donations DonorDonations
	profile   DonorProfile
	logger    *slog.Logger
	token     string

	mu   sync.Mutex
	list []model.Donation
}

// NewDonorView はDonorViewを生成する。
func NewDonorView(donations DonorDonations, profile DonorProfile, logger *slog.Logger, token string) *DonorView {
	return &DonorView{
		donations: donations,
		profile:   profile,
		logger:    logger,
		token:     token,
	}
}

// Refresh はダッシュボード表示データを取得する。
// プロフィールが未完了の場合は入力画面への誘導のみを返す。
func (v *DonorView) Refresh(ctx context.Context) (*DonorDashboard, error) {
	p, err := v.profile.Get(ctx, v.token)
	if err != nil {
		return nil, err
	}

	if !p.ProfileComplete {
		return &DonorDashboard{Profile: p, RequiresProfile: true}, nil
	}

	stats, err := v.profile.Stats(ctx, v.token)
	if err != nil {
		return nil, err
	}

	list, err := v.donations.Mine(ctx, v.token)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.list = list
	v.mu.Unlock()

	return &DonorDashboard{
		Profile:   p,
		Stats:     stats,
		Donations: list,
	}, nil
}

// Snapshot は保持中の自分の出品一覧のコピーを返す。
func (v *DonorView) Snapshot() []model.Donation {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.Donation, len(v.list))
	copy(out, v.list)
	return out
}

// Create は出品を作成し、一覧を再取得して返す。
// 作成前にプロフィール完了状態をサーバーから取り直し、未完了の場合は
// 作成リクエストを発行せずに入力画面への誘導（requiresProfile）を返す。
func (v *DonorView) Create(ctx context.Context, draft model.DonationDraft) ([]model.Donation, bool, error) {
	p, err := v.profile.Get(ctx, v.token)
	if err != nil {
		return nil, false, err
	}
	if !p.ProfileComplete {
		return nil, true, nil
	}

	if _, err := v.donations.Create(ctx, v.token, draft); err != nil {
		return nil, false, err
	}
	list, err := v.refreshList(ctx)
	if err != nil {
		return nil, false, err
	}
	return list, false, nil
}

// Update は出品を更新し、一覧を再取得して返す。
func (v *DonorView) Update(ctx context.Context, id string, draft model.DonationDraft) ([]model.Donation, error) {
	if _, err := v.donations.Update(ctx, v.token, id, draft); err != nil {
		return nil, err
	}
	return v.refreshList(ctx)
}

// Delete は出品を削除し、一覧を再取得して返す。
func (v *DonorView) Delete(ctx context.Context, id string) ([]model.Donation, error) {
	if err := v.donations.Delete(ctx, v.token, id); err != nil {
		return nil, err
	}
	return v.refreshList(ctx)
}

// refreshList は変更操作の後に一覧をサーバーから取り直す。
// 変更結果をローカルで合成せず、常にサーバーの値を典拠とする。
func (v *DonorView) refreshList(ctx context.Context) ([]model.Donation, error) {
	list, err := v.donations.Mine(ctx, v.token)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.list = list
	v.mu.Unlock()
	return list, nil
}
