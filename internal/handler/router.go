package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/ridebook/internal/metrics"
	"github.com/hitoshi/ridebook/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenResolver     middleware.TokenResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス（nilの場合は記録しない）
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer

	// サービス
	AuthService    AuthServiceInterface
	BookingService BookingServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → RequestID → Recovery → Logging → Metrics → SecurityHeaders → CORS
//
// /register と /login には IP単位のレート制限、/book と /bookings には
// Session → RateLimit(General) を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.NopCollector{}
	}

	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(metrics.NewHTTPStatusMiddleware(collector))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	// プリフライトはルーティング前に応答するためCORSをチェーンの最後に置く
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService)
	bookingHandler := NewBookingHandler(deps.BookingService)

	// --- 認証不要のルート ---

	r.Get("/health", Health)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Post("/logout", authHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.TokenResolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/book", bookingHandler.Book)
		r.Get("/bookings", bookingHandler.ListBookings)
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health は死活監視用のエンドポイント。
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
