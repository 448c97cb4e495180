package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iamyatin-14/connectfood/internal/model"
)

const testSecret = "u46IpCV9y5Vlur8YvODJEhgOY8m9JVE4"

func newTestStore() *Store {
	return NewStore(Options{
		Secret:       testSecret,
		MaxAgeSecond: 3600,
		Secure:       false,
	})
}

// loginAndCapture はLoginを実行し、発行されたクッキーを付与した次のリクエストを返す。
func loginAndCapture(t *testing.T, store *Store, token string, role model.Role) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := store.Login(w, r, token, role); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		next.AddCookie(c)
	}
	return next
}

func TestLogin_ThenCurrent_ReturnsSession(t *testing.T) {
	store := newTestStore()

	next := loginAndCapture(t, store, "jwt-token-abc", model.RoleDonor)

	sess := store.Current(next)
	if sess == nil {
		t.Fatal("Current returned nil after Login")
	}
	if sess.Token != "jwt-token-abc" {
		t.Errorf("Token = %q, want %q", sess.Token, "jwt-token-abc")
	}
	if sess.Role != model.RoleDonor {
		t.Errorf("Role = %q, want %q", sess.Role, model.RoleDonor)
	}
}

func TestCurrent_NoCookie_ReturnsNil(t *testing.T) {
	store := newTestStore()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if sess := store.Current(r); sess != nil {
		t.Errorf("Current = %+v, want nil without cookie", sess)
	}
}

func TestLogin_EmptyToken_Rejected(t *testing.T) {
	store := newTestStore()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := store.Login(w, r, "", model.RoleDonor); err == nil {
		t.Error("expected error for empty token, got nil")
	}
}

func TestLogin_InvalidRole_Rejected(t *testing.T) {
	store := newTestStore()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := store.Login(w, r, "tok", model.Role("admin")); err == nil {
		t.Error("expected error for invalid role, got nil")
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	store := newTestStore()

	next := loginAndCapture(t, store, "tok", model.RoleRecipient)

	w := httptest.NewRecorder()
	if err := store.Logout(w, next); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// ログアウト後のクッキーで再度読み取ると未認証になる
	after := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		after.AddCookie(c)
	}
	if sess := store.Current(after); sess != nil {
		t.Errorf("Current = %+v, want nil after Logout", sess)
	}
}

func TestLogout_WithoutSession_Succeeds(t *testing.T) {
	store := newTestStore()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	if err := store.Logout(w, r); err != nil {
		t.Errorf("Logout without session failed: %v", err)
	}
}

func TestCurrent_TamperedCookie_ReturnsNil(t *testing.T) {
	store := newTestStore()

	next := loginAndCapture(t, store, "tok", model.RoleDonor)

	// クッキー値を改ざんすると署名検証に失敗し未認証として扱われる
	tampered := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range next.Cookies() {
		c.Value = c.Value + "x"
		tampered.AddCookie(c)
	}
	if sess := store.Current(tampered); sess != nil {
		t.Errorf("Current = %+v, want nil for tampered cookie", sess)
	}
}
