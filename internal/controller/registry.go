package controller

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/iamyatin-14/connectfood/internal/metrics"
)

// RegistryConfig はビューレジストリの設定を保持する。
type RegistryConfig struct {
	TTL             time.Duration // 最終アクセスからビューを破棄するまでの期間
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRegistryConfig はデフォルトのレジストリ設定を返す。
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		TTL:             30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// donorEntry / recipientEntry はビューとアクセス時刻を保持する。
type donorEntry struct {
	view       *DonorView
	lastAccess time.Time
}

type recipientEntry struct {
	view       *RecipientView
	lastAccess time.Time
}

// Registry はセッションごとのビューを管理する。
// キーにはトークンのハッシュを使用し、トークン自体は保持しない。
// 期限切れのビューはバックグラウンドで破棄される。
type Registry struct {
	config    RegistryConfig
	donations DonationService
	profile   DonorProfile
	metrics   metrics.MetricsCollector
	logger    *slog.Logger

	donorMu    sync.RWMutex
	donorViews map[string]*donorEntry

	recipientMu    sync.RWMutex
	recipientViews map[string]*recipientEntry

	stopCh chan struct{}
}

// DonationService はレジストリが必要とする出品操作の全体。
type DonationService interface {
	DonorDonations
	RecipientDonations
}

// NewRegistry は新しいRegistryを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRegistry(config RegistryConfig, donations DonationService, profile DonorProfile, collector metrics.MetricsCollector, logger *slog.Logger) *Registry {
	r := &Registry{
		config:         config,
		donations:      donations,
		profile:        profile,
		metrics:        collector,
		logger:         logger,
		donorViews:     make(map[string]*donorEntry),
		recipientViews: make(map[string]*recipientEntry),
		stopCh:         make(chan struct{}),
	}

	go r.cleanupLoop()

	return r
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (r *Registry) Stop() {
	close(r.stopCh)
}

// DonorView はセッションの寄付者ビューを取得または作成する。
func (r *Registry) DonorView(token string) *DonorView {
	key := hashToken(token)

	r.donorMu.RLock()
	e, exists := r.donorViews[key]
	r.donorMu.RUnlock()

	if exists {
		r.donorMu.Lock()
		e.lastAccess = time.Now()
		r.donorMu.Unlock()
		return e.view
	}

	r.donorMu.Lock()
	defer r.donorMu.Unlock()

	// ダブルチェック
	if e, exists := r.donorViews[key]; exists {
		e.lastAccess = time.Now()
		return e.view
	}

	view := NewDonorView(r.donations, r.profile, r.logger, token)
	r.donorViews[key] = &donorEntry{
		view:       view,
		lastAccess: time.Now(),
	}

	return view
}

// RecipientView はセッションの受取団体ビューを取得または作成する。
func (r *Registry) RecipientView(token string) *RecipientView {
	key := hashToken(token)

	r.recipientMu.RLock()
	e, exists := r.recipientViews[key]
	r.recipientMu.RUnlock()

	if exists {
		r.recipientMu.Lock()
		e.lastAccess = time.Now()
		r.recipientMu.Unlock()
		return e.view
	}

	r.recipientMu.Lock()
	defer r.recipientMu.Unlock()

	// ダブルチェック
	if e, exists := r.recipientViews[key]; exists {
		e.lastAccess = time.Now()
		return e.view
	}

	view := NewRecipientView(r.donations, r.metrics, r.logger, token)
	r.recipientViews[key] = &recipientEntry{
		view:       view,
		lastAccess: time.Now(),
	}

	return view
}

// Drop はセッションのビューを即座に破棄する。ログアウト時に使用する。
func (r *Registry) Drop(token string) {
	key := hashToken(token)

	r.donorMu.Lock()
	delete(r.donorViews, key)
	r.donorMu.Unlock()

	r.recipientMu.Lock()
	delete(r.recipientViews, key)
	r.recipientMu.Unlock()
}

// DonorViewCount は現在管理されている寄付者ビューのエントリ数を返す。
// テストおよびメトリクス用。
func (r *Registry) DonorViewCount() int {
	r.donorMu.RLock()
	defer r.donorMu.RUnlock()
	return len(r.donorViews)
}

// RecipientViewCount は現在管理されている受取団体ビューのエントリ数を返す。
// テストおよびメトリクス用。
func (r *Registry) RecipientViewCount() int {
	r.recipientMu.RLock()
	defer r.recipientMu.RUnlock()
	return len(r.recipientViews)
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (r *Registry) cleanupLoop() {
	ticker := time.NewTicker(r.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup()
		case <-r.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がTTLを超えたエントリを削除する。
func (r *Registry) cleanup() {
	now := time.Now()

	r.donorMu.Lock()
	for key, e := range r.donorViews {
		if now.Sub(e.lastAccess) > r.config.TTL {
			delete(r.donorViews, key)
		}
	}
	r.donorMu.Unlock()

	r.recipientMu.Lock()
	for key, e := range r.recipientViews {
		if now.Sub(e.lastAccess) > r.config.TTL {
			delete(r.recipientViews, key)
		}
	}
	r.recipientMu.Unlock()
}

// hashToken はビューのキーとして使用するトークンのハッシュを返す。
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
