// Package controller はダッシュボード表示状態のセッション単位の管理を提供する。
// 一覧の逐次番号ガードと出品単位の操作排他を実装する。
package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/iamyatin-14/connectfood/internal/metrics"
	"github.com/iamyatin-14/connectfood/internal/model"
)

// RecipientDonations は受取団体ビューが必要とする出品操作。
type RecipientDonations interface {
	Live(ctx context.Context, token string, filters model.DonationFilters) ([]model.Donation, error)
	Received(ctx context.Context, token string) ([]model.Donation, error)
	Initiate(ctx context.Context, token, id string) (*model.Donation, error)
	Collect(ctx context.Context, token, id string) (*model.Donation, error)
}

// RecipientView は受取団体ダッシュボードの表示状態を保持する。
//
// 一覧の再取得には逐次番号を発行し、完了時に最新の発行番号と一致しない
// レスポンスを破棄する。これにより絞り込み条件を速く切り替えた場合でも、
// 遅れて到着した古い結果が新しい結果を上書きすることはない。
//
// 回収開始・回収完了は出品単位で排他され、同一出品への操作が処理中の間は
// 同じ出品への追加の操作を拒否する。他の出品への操作は並行して許可される。
type RecipientView struct {
	donations RecipientDonations
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
	token     string

	mu      sync.Mutex
	seq     uint64
	filters model.DonationFilters
	list    []model.Donation
	pending map[string]struct{}
}

// NewRecipientView はRecipientViewを生成する。
func NewRecipientView(donations RecipientDonations, collector metrics.MetricsCollector, logger *slog.Logger, token string) *RecipientView {
	return &RecipientView{
		donations: donations,
		metrics:   collector,
		logger:    logger,
		token:     token,
		pending:   make(map[string]struct{}),
	}
}

// SetFilters は絞り込み条件を更新する。次回のRefreshから適用される。
func (v *RecipientView) SetFilters(filters model.DonationFilters) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filters = filters
}

// Filters は現在の絞り込み条件を返す。
func (v *RecipientView) Filters() model.DonationFilters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters
}

// Refresh は公開出品一覧を再取得する。
// 取得完了時に新しいRefreshが既に発行されていた場合、結果は破棄され、
// 保持中の一覧がそのまま返る（破棄はエラーではない）。
func (v *RecipientView) Refresh(ctx context.Context) ([]model.Donation, error) {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	filters := v.filters
	v.mu.Unlock()

	list, err := v.donations.Live(ctx, v.token, filters)

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.seq {
		v.metrics.RecordStaleResponseDiscarded()
		v.logger.Info("stale list response discarded",
			slog.Uint64("seq", seq),
			slog.Uint64("latest", v.seq),
		)
		return v.snapshotLocked(), nil
	}

	if err != nil {
		return nil, err
	}

	v.list = list
	return v.snapshotLocked(), nil
}

// Snapshot は保持中の一覧のコピーを返す。
func (v *RecipientView) Snapshot() []model.Donation {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *RecipientView) snapshotLocked() []model.Donation {
	out := make([]model.Donation, len(v.list))
	copy(out, v.list)
	return out
}

// Initiate は回収開始を実行し、サーバーから取り直した最新のレコードを返す。
// 保持中の一覧はローカルで書き換えず、次のRefreshで更新される。
// 同一出品への操作が処理中の場合は即座に失敗する。
func (v *RecipientView) Initiate(ctx context.Context, id string) (*model.Donation, error) {
	return v.act(ctx, id, v.donations.Initiate)
}

// Collect は回収完了を実行し、サーバーから取り直した最新のレコードを返す。
func (v *RecipientView) Collect(ctx context.Context, id string) (*model.Donation, error) {
	return v.act(ctx, id, v.donations.Collect)
}

func (v *RecipientView) act(ctx context.Context, id string, op func(context.Context, string, string) (*model.Donation, error)) (*model.Donation, error) {
	v.mu.Lock()
	if _, busy := v.pending[id]; busy {
		v.mu.Unlock()
		return nil, model.NewActionInProgressError(id)
	}
	v.pending[id] = struct{}{}
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		delete(v.pending, id)
		v.mu.Unlock()
	}()

	// 結果はそのまま返し、一覧はローカルで合成しない。
	// 表示の更新は常にRefreshによる再取得で行う
	return op(ctx, v.token, id)
}

// PendingCount は処理中の操作数を返す。テスト用。
func (v *RecipientView) PendingCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pending)
}

// Received は自分が回収した出品の一覧を取得する。
// 履歴表示用であり、逐次番号ガードの対象外。
func (v *RecipientView) Received(ctx context.Context) ([]model.Donation, error) {
	return v.donations.Received(ctx, v.token)
}
