package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/iamyatin-14/connectfood/internal/model"
)

// mockGateway はGatewayのテスト用実装。
type mockGateway struct {
	postFunc func(ctx context.Context, token, path string, body, out any) error
	calls    int
}

func (m *mockGateway) Post(ctx context.Context, token, path string, body, out any) error {
	m.calls++
	return m.postFunc(ctx, token, path, body, out)
}

// countMetrics はログインカウンタの呼び出しを記録する。
type countMetrics struct {
	success int
	failure int
}

func (m *countMetrics) RecordUpstreamRequest(method string, statusCode int) {}
func (m *countMetrics) RecordUpstreamLatency(d time.Duration)               {}
func (m *countMetrics) RecordUpstreamFailure(reason string)                 {}
func (m *countMetrics) RecordLoginSuccess()                                 { m.success++ }
func (m *countMetrics) RecordLoginFailure()                                 { m.failure++ }
func (m *countMetrics) RecordStaleResponseDiscarded()                       {}

func newTestService(gw Gateway) (*Service, *countMetrics) {
	m := &countMetrics{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(gw, logger, m), m
}

func TestLoginWithGoogle_Success(t *testing.T) {
	gw := &mockGateway{
		postFunc: func(ctx context.Context, token, path string, body, out any) error {
			if token != "" {
				t.Errorf("login must not carry a bearer token, got %q", token)
			}
			if path != "/auth/google" {
				t.Errorf("path = %q, want /auth/google", path)
			}
			req := body.(loginRequest)
			if req.IDToken != "google-credential" {
				t.Errorf("idToken = %q", req.IDToken)
			}
			if req.Role != model.RoleDonor {
				t.Errorf("role = %q, want donor", req.Role)
			}
			data := []byte(`{"jwtToken":"backend-jwt","role":"DONOR"}`)
			return json.Unmarshal(data, out)
		},
	}
	svc, m := newTestService(gw)

	tok, role, err := svc.LoginWithGoogle(context.Background(), "google-credential", "donor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "backend-jwt" {
		t.Errorf("token = %q, want backend-jwt", tok)
	}
	if role != model.RoleDonor {
		t.Errorf("role = %q, want donor (normalized)", role)
	}
	if m.success != 1 || m.failure != 0 {
		t.Errorf("metrics success=%d failure=%d, want 1/0", m.success, m.failure)
	}
}

func TestLoginWithGoogle_UppercaseRoleInput(t *testing.T) {
	gw := &mockGateway{
		postFunc: func(ctx context.Context, token, path string, body, out any) error {
			req := body.(loginRequest)
			if req.Role != model.RoleRecipient {
				t.Errorf("role sent = %q, want canonical recipient", req.Role)
			}
			return json.Unmarshal([]byte(`{"jwtToken":"jwt","role":"recipient"}`), out)
		},
	}
	svc, _ := newTestService(gw)

	_, role, err := svc.LoginWithGoogle(context.Background(), "cred", "RECIPIENT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != model.RoleRecipient {
		t.Errorf("role = %q, want recipient", role)
	}
}

func TestLoginWithGoogle_MissingCredential(t *testing.T) {
	gw := &mockGateway{postFunc: func(ctx context.Context, token, path string, body, out any) error {
		t.Fatal("gateway must not be called without a credential")
		return nil
	}}
	svc, m := newTestService(gw)

	_, _, err := svc.LoginWithGoogle(context.Background(), "", "donor")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if gw.calls != 0 {
		t.Errorf("gateway calls = %d, want 0", gw.calls)
	}
	if m.failure != 1 {
		t.Errorf("failure = %d, want 1", m.failure)
	}
}

func TestLoginWithGoogle_MissingRole(t *testing.T) {
	gw := &mockGateway{postFunc: func(ctx context.Context, token, path string, body, out any) error {
		return nil
	}}
	svc, _ := newTestService(gw)

	_, _, err := svc.LoginWithGoogle(context.Background(), "cred", "")
	apiErr := model.AsAPIError(err)
	if apiErr == nil || apiErr.Code != model.ErrCodeRoleRequired {
		t.Errorf("error = %v, want ROLE_REQUIRED", err)
	}
	if gw.calls != 0 {
		t.Errorf("gateway calls = %d, want 0", gw.calls)
	}
}

func TestLoginWithGoogle_UnknownRole(t *testing.T) {
	gw := &mockGateway{postFunc: func(ctx context.Context, token, path string, body, out any) error {
		return nil
	}}
	svc, _ := newTestService(gw)

	_, _, err := svc.LoginWithGoogle(context.Background(), "cred", "admin")
	apiErr := model.AsAPIError(err)
	if apiErr == nil || apiErr.Code != model.ErrCodeRoleInvalid {
		t.Errorf("error = %v, want ROLE_INVALID", err)
	}
	if gw.calls != 0 {
		t.Errorf("gateway calls = %d, want 0", gw.calls)
	}
}

func TestLoginWithGoogle_UpstreamFailure_PrefersServerMessage(t *testing.T) {
	gw := &mockGateway{
		postFunc: func(ctx context.Context, token, path string, body, out any) error {
			return model.NewUpstreamError(401, "invalid google token")
		},
	}
	svc, m := newTestService(gw)

	_, _, err := svc.LoginWithGoogle(context.Background(), "cred", "donor")
	apiErr := model.AsAPIError(err)
	if apiErr == nil || apiErr.Code != model.ErrCodeLoginFailed {
		t.Fatalf("error = %v, want LOGIN_FAILED", err)
	}
	if apiErr.Message != "invalid google token" {
		t.Errorf("Message = %q, want server message", apiErr.Message)
	}
	if m.failure != 1 {
		t.Errorf("failure = %d, want 1", m.failure)
	}
}

func TestLoginWithGoogle_EmptyTokenInResponse(t *testing.T) {
	gw := &mockGateway{
		postFunc: func(ctx context.Context, token, path string, body, out any) error {
			return json.Unmarshal([]byte(`{"jwtToken":"","role":"donor"}`), out)
		},
	}
	svc, _ := newTestService(gw)

	_, _, err := svc.LoginWithGoogle(context.Background(), "cred", "donor")
	if err == nil {
		t.Fatal("expected error for empty token, got nil")
	}
}

func TestLoginWithGoogle_ResponseWithoutRole_UsesRequestedRole(t *testing.T) {
	gw := &mockGateway{
		postFunc: func(ctx context.Context, token, path string, body, out any) error {
			return json.Unmarshal([]byte(`{"jwtToken":"jwt","role":""}`), out)
		},
	}
	svc, _ := newTestService(gw)

	_, role, err := svc.LoginWithGoogle(context.Background(), "cred", "recipient")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != model.RoleRecipient {
		t.Errorf("role = %q, want requested role", role)
	}
}
