package middleware

import "net/http"

// AllowAnyOrigin は全オリジンを許可する設定値。
const AllowAnyOrigin = "*"

// NewCORSMiddleware は指定されたオリジンに対するCORSミドルウェアを返す。
// allowedOriginが"*"の場合はリクエストのOriginをそのまま許可する。
// credentials送信と共存させるため、レスポンスにワイルドカードは書き込まない。
// OPTIONSプリフライトリクエストには要求されたヘッダー・メソッドを許可して200で応答する。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := allowedOrigin
			if allowedOrigin == AllowAnyOrigin {
				if reqOrigin := r.Header.Get("Origin"); reqOrigin != "" {
					origin = reqOrigin
					w.Header().Add("Vary", "Origin")
				}
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// プリフライト: 要求されたヘッダー・メソッドをそのまま許可する
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
			}
			if reqMethod := r.Header.Get("Access-Control-Request-Method"); reqMethod != "" {
				w.Header().Set("Access-Control-Allow-Methods", reqMethod)
			}
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
	}
}
