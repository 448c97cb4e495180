package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iamyatin-14/connectfood/internal/model"
)

func requestWithSession(sess *model.Session) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if sess != nil {
		r = r.WithContext(ContextWithSession(r.Context(), sess))
	}
	return r
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestRequireAnonymous(t *testing.T) {
	tests := []struct {
		name         string
		session      *model.Session
		wantStatus   int
		wantLocation string
	}{
		{"anonymous passes", nil, http.StatusOK, ""},
		{"donor redirected to donor dashboard",
			&model.Session{Token: "t", Role: model.RoleDonor},
			http.StatusSeeOther, "/donor-dashboard"},
		{"recipient redirected to recipient dashboard",
			&model.Session{Token: "t", Role: model.RoleRecipient},
			http.StatusSeeOther, "/recipient-dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := okHandler()
			w := httptest.NewRecorder()
			RequireAnonymous()(next).ServeHTTP(w, requestWithSession(tt.session))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" && w.Header().Get("Location") != tt.wantLocation {
				t.Errorf("Location = %q, want %q", w.Header().Get("Location"), tt.wantLocation)
			}
		})
	}
}

func TestRequirePageRole(t *testing.T) {
	tests := []struct {
		name         string
		guardRole    model.Role
		session      *model.Session
		wantStatus   int
		wantLocation string
	}{
		{"matching role passes", model.RoleDonor,
			&model.Session{Token: "t", Role: model.RoleDonor},
			http.StatusOK, ""},
		{"anonymous redirected to login", model.RoleDonor,
			nil, http.StatusSeeOther, "/login"},
		{"wrong role redirected to home", model.RoleDonor,
			&model.Session{Token: "t", Role: model.RoleRecipient},
			http.StatusSeeOther, "/"},
		{"wrong role redirected to home for recipient pages", model.RoleRecipient,
			&model.Session{Token: "t", Role: model.RoleDonor},
			http.StatusSeeOther, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			w := httptest.NewRecorder()
			RequirePageRole(tt.guardRole)(next).ServeHTTP(w, requestWithSession(tt.session))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" {
				if w.Header().Get("Location") != tt.wantLocation {
					t.Errorf("Location = %q, want %q", w.Header().Get("Location"), tt.wantLocation)
				}
				if *called {
					t.Error("handler must not run on redirect")
				}
			}
		})
	}
}

func TestRequireAuthPage(t *testing.T) {
	next, _ := okHandler()
	w := httptest.NewRecorder()
	RequireAuthPage()(next).ServeHTTP(w, requestWithSession(nil))

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Errorf("status=%d location=%q, want 303 /login", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	RequireAuthPage()(next).ServeHTTP(w, requestWithSession(&model.Session{Token: "t", Role: model.RoleDonor}))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for authenticated", w.Code)
	}
}

func TestRequireAPISession_Unauthenticated401JSON(t *testing.T) {
	next, called := okHandler()
	w := httptest.NewRecorder()
	RequireAPISession()(next).ServeHTTP(w, requestWithSession(nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if *called {
		t.Error("handler must not run")
	}

	var body ErrorResponseBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body.Code != "UNAUTHENTICATED" {
		t.Errorf("code = %q, want UNAUTHENTICATED", body.Code)
	}
}

func TestRequireAPIRole_WrongRole403(t *testing.T) {
	next, _ := okHandler()
	w := httptest.NewRecorder()
	sess := &model.Session{Token: "t", Role: model.RoleDonor}
	RequireAPIRole(model.RoleRecipient)(next).ServeHTTP(w, requestWithSession(sess))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	RequireAPIRole(model.RoleDonor)(next).ServeHTTP(w, requestWithSession(sess))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for matching role", w.Code)
	}
}
