package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/ridebook/internal/auth"
	"github.com/hitoshi/ridebook/internal/booking"
	"github.com/hitoshi/ridebook/internal/config"
	"github.com/hitoshi/ridebook/internal/console"
	"github.com/hitoshi/ridebook/internal/handler"
	"github.com/hitoshi/ridebook/internal/logger"
	"github.com/hitoshi/ridebook/internal/metrics"
	"github.com/hitoshi/ridebook/internal/middleware"
	"github.com/hitoshi/ridebook/internal/repository"
)

// Env はプロセスの標準入出力をまとめたもの。テストでは差し替える。
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Listen はHTTPサーバーのリスナーを生成する。nilの場合はnet.Listenを使う。
	Listen func(network, addr string) (net.Listener, error)
}

// DefaultEnv はos.Stdin / os.Stdout / os.Stderrを使うEnvを返す。
func DefaultEnv() *Env {
	return &Env{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再構成する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(ctx context.Context, env *Env, args []string) error {
	return NewCLI(env).RunContext(ctx, append([]string{"ridebook"}, args...))
}

// Services はHTTPとコンソールの両方から使うサービス群。
type Services struct {
	Auth     *auth.Service
	Booking  *booking.Service
	Registry *prometheus.Registry
	Metrics  *metrics.Collector
}

// NewServices はメモリストアとサービスを構築する。
// 状態はプロセス内にのみ保持され、終了時に失われる。
func NewServices(cfg *config.Config) *Services {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	accountRepo := repository.NewMemoryAccountRepo()
	sessionRepo := repository.NewMemorySessionRepo()
	bookingRepo := repository.NewMemoryBookingRepo()

	authService := auth.NewService(
		accountRepo,
		sessionRepo,
		auth.NewBcryptHasher(cfg.PasswordHashCost),
		auth.UUIDTokenGenerator{},
		collector,
	)
	bookingService := booking.NewService(bookingRepo, collector)

	return &Services{
		Auth:     authService,
		Booking:  bookingService,
		Registry: registry,
		Metrics:  collector,
	}
}

// NewHTTPHandler は全ルートとミドルウェアを構成したハンドラーを返す。
// 返却したRateLimiterは呼び出し側でStopすること。
func NewHTTPHandler(cfg *config.Config, svcs *Services) (http.Handler, *middleware.RateLimiter) {
	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth))

	router := handler.NewRouter(&handler.RouterDeps{
		TokenResolver:     svcs.Auth,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rl,
		Logger:            slog.Default(),
		Metrics:           svcs.Metrics,
		Gatherer:          svcs.Registry,
		AuthService:       svcs.Auth,
		BookingService:    svcs.Booking,
	})

	return router, rl
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナル、もしくはctxのキャンセルでグレースフルシャットダウンを行う。
func runServe(ctx context.Context, env *Env) error {
	cfg, err := Init(env.Stdout)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listen := env.Listen
	if listen == nil {
		listen = net.Listen
	}
	ln, err := listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	return serve(ctx, cfg, ln)
}

// serve はリスナー上でHTTPサーバーを動かし、ctxが終了するとシャットダウンする。
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	svcs := NewServices(cfg)
	router, rl := NewHTTPHandler(cfg, svcs)
	defer rl.Stop()

	server := &http.Server{
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", ln.Addr().String()),
		)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runConsole は対話型コンソールを起動する。
// メニュー出力と混ざらないよう、ログは標準エラーに出力する。
func runConsole(ctx context.Context, env *Env) error {
	cfg, err := Init(env.Stderr)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	svcs := NewServices(cfg)
	return console.New(env.Stdin, env.Stdout, svcs.Auth, svcs.Booking).Run(ctx)
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(ctx context.Context, port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build health check request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
