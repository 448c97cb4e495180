package middleware

import (
	"net/http"

	"github.com/iamyatin-14/connectfood/internal/model"
)

// ページ用ガード。遷移先は常に303 See Otherで示す。
//
//   - 未認証のまま保護ページへ → /login
//   - 認証済みでログインページへ → ロールのダッシュボード
//   - ロール違いの保護ページへ → トップページ
//
// ガードは遷移先の決定のみを行い、セッションの書き換えは行わない。

// RequireAnonymous は未認証ユーザー専用ページのガードを返す。
// 認証済みユーザーはロールに対応するダッシュボードへ誘導される。
func RequireAnonymous() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess := SessionFromContext(r.Context()); sess != nil {
				http.Redirect(w, r, sess.Role.DashboardPath(), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePageRole はロール限定ページのガードを返す。
func RequirePageRole(role model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if sess.Role != role {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthPage は認証のみを要求するページのガードを返す。ロールは問わない。
func RequireAuthPage() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SessionFromContext(r.Context()) == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPISession はJSONエンドポイント用の認証ガードを返す。
// 未認証リクエストには401を統一エラーフォーマットで返す。
func RequireAPISession() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SessionFromContext(r.Context()) == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, &model.APIError{
					Code:     "UNAUTHENTICATED",
					Message:  "ログインが必要です。",
					Category: "auth",
					Action:   "ログインしてから再度お試しください。",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPIRole はJSONエンドポイント用のロールガードを返す。
// ロール違いのリクエストには403を統一エラーフォーマットで返す。
// RequireAPISessionの後に配置する。
func RequireAPIRole(role model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil || sess.Role != role {
				WriteErrorResponse(w, http.StatusForbidden, &model.APIError{
					Code:     "FORBIDDEN",
					Message:  "この操作を行う権限がありません。",
					Category: "auth",
					Action:   "ご自身のロールのダッシュボードをご利用ください。",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
