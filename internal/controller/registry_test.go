package controller

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/iamyatin-14/connectfood/internal/model"
)

// fullMock はDonationServiceの全操作を満たすテスト用実装。
type fullMock struct {
	mockDonations
	mockDonorDonations
}

func newTestRegistry() *Registry {
	d := &fullMock{}
	p := &mockProfile{}
	m := &staleMetrics{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRegistry(RegistryConfig{
		TTL:             time.Hour,
		CleanupInterval: time.Hour,
	}, d, p, m, logger)
}

func TestRegistry_SameTokenReturnsSameView(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()

	v1 := r.RecipientView("token-a")
	v2 := r.RecipientView("token-a")
	if v1 != v2 {
		t.Error("same token should return the same view instance")
	}

	d1 := r.DonorView("token-a")
	d2 := r.DonorView("token-a")
	if d1 != d2 {
		t.Error("same token should return the same donor view instance")
	}
}

func TestRegistry_DifferentTokensIsolated(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()

	v1 := r.RecipientView("token-a")
	v2 := r.RecipientView("token-b")
	if v1 == v2 {
		t.Error("different tokens must get independent views")
	}

	v1.SetFilters(model.DonationFilters{City: "Pune"})
	if v2.Filters().City != "" {
		t.Error("filter change leaked across sessions")
	}

	if r.RecipientViewCount() != 2 {
		t.Errorf("RecipientViewCount = %d, want 2", r.RecipientViewCount())
	}
}

func TestRegistry_ViewStateSurvivesAcrossLookups(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()

	r.RecipientView("token-a").SetFilters(model.DonationFilters{MinQuantity: 7})

	got := r.RecipientView("token-a").Filters()
	if got.MinQuantity != 7 {
		t.Errorf("MinQuantity = %d, want 7", got.MinQuantity)
	}
}

func TestRegistry_Drop(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()

	r.RecipientView("token-a").SetFilters(model.DonationFilters{City: "Pune"})
	r.DonorView("token-a")

	r.Drop("token-a")

	if r.RecipientViewCount() != 0 || r.DonorViewCount() != 0 {
		t.Errorf("counts = %d/%d, want 0/0 after Drop",
			r.RecipientViewCount(), r.DonorViewCount())
	}

	// 再取得では新しいビューが作られ、以前の状態は残らない
	if got := r.RecipientView("token-a").Filters(); got.City != "" {
		t.Errorf("filters = %+v, want zero value after Drop", got)
	}
}

func TestRegistry_CleanupRemovesExpiredEntries(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()

	r.RecipientView("token-old")
	r.RecipientView("token-fresh")

	// token-oldの最終アクセスをTTL超過まで巻き戻す
	r.recipientMu.Lock()
	for key, e := range r.recipientViews {
		if key == hashToken("token-old") {
			e.lastAccess = time.Now().Add(-2 * time.Hour)
		}
	}
	r.recipientMu.Unlock()

	r.cleanup()

	if r.RecipientViewCount() != 1 {
		t.Errorf("RecipientViewCount = %d, want 1 after cleanup", r.RecipientViewCount())
	}
	// 残っているのはtoken-freshのビュー
	r.recipientMu.RLock()
	_, exists := r.recipientViews[hashToken("token-fresh")]
	r.recipientMu.RUnlock()
	if !exists {
		t.Error("fresh view should survive cleanup")
	}
}

func TestRegistry_StopTerminatesCleanupLoop(t *testing.T) {
	r := newTestRegistry()
	r.Stop()
	// 二重Stopはpanicするため1回のみ。Stop後の取得は引き続き動作する。
	if v := r.RecipientView("token-a"); v == nil {
		t.Error("view lookup should still work after Stop")
	}
}
