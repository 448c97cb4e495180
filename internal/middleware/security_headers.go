package middleware

import "net/http"

// contentSecurityPolicy はページが読み込めるリソースの許可リスト。
// Googleサインインのスクリプトとiframeのみ外部読み込みを許可する。
const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' https://accounts.google.com; " +
	"frame-src https://accounts.google.com; " +
	"connect-src 'self' https://accounts.google.com; " +
	"img-src 'self' data: https:; " +
	"style-src 'self' 'unsafe-inline' https://accounts.google.com"

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
			next.ServeHTTP(w, r)
		})
	}
}
