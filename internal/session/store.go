// Package session はクッキーベースのログインセッション管理を提供する。
// トークンとロールは単一オブジェクトとして原子的に読み書きされ、
// 片方だけが存在する状態は観測されない。
package session

import (
	"encoding/gob"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs"

	"github.com/iamyatin-14/connectfood/internal/model"
)

// sessionKey はセッションオブジェクトの格納キー。
const sessionKey = "connectfood"

func init() {
	gob.Register(model.Session{})
}

// Store は署名付きクッキーにセッションを保持するストア。
// サーバー側に状態を持たないため、水平スケールに追加の共有基盤を要しない。
type Store struct {
	manager *scs.Manager
}

// Options はストアの生成パラメータ。
type Options struct {
	Secret       string
	MaxAgeSecond int
	Secure       bool
	Domain       string
}

// NewStore はStoreの新しいインスタンスを生成する。
func NewStore(opts Options) *Store {
	manager := scs.NewCookieManager(opts.Secret)
	manager.Lifetime(time.Duration(opts.MaxAgeSecond) * time.Second)
	manager.Persist(true)
	manager.Secure(opts.Secure)
	manager.HttpOnly(true)
	manager.SameSite("Lax")
	if opts.Domain != "" {
		manager.Domain(opts.Domain)
	}
	return &Store{manager: manager}
}

// Current はリクエストからセッションを読み取る。
// セッションが存在しない、または不完全な場合はnilを返す。
func (s *Store) Current(r *http.Request) *model.Session {
	sess := s.manager.Load(r)
	var ms model.Session
	if err := sess.GetObject(sessionKey, &ms); err != nil {
		return nil
	}
	if !ms.IsAuthenticated() {
		return nil
	}
	return &ms
}

// Login はトークンとロールを単一オブジェクトとして保存する。
// どちらかが欠けた状態での保存は拒否する。
func (s *Store) Login(w http.ResponseWriter, r *http.Request, token string, role model.Role) error {
	if token == "" {
		return fmt.Errorf("セッション保存にトークンが必要です")
	}
	if !role.Valid() {
		return fmt.Errorf("セッション保存に有効なロールが必要です: %q", role)
	}
	sess := s.manager.Load(r)
	if err := sess.PutObject(w, sessionKey, model.Session{Token: token, Role: role}); err != nil {
		return fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}
	return nil
}

// Logout はセッションを破棄する。セッションが存在しない場合も成功として扱う。
func (s *Store) Logout(w http.ResponseWriter, r *http.Request) error {
	sess := s.manager.Load(r)
	if err := sess.Destroy(w); err != nil {
		return fmt.Errorf("セッションの破棄に失敗しました: %w", err)
	}
	return nil
}
