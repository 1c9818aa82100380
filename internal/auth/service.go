// Package auth はアカウント登録、ログイン、セッション管理を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/ridebook/internal/metrics"
	"github.com/hitoshi/ridebook/internal/model"
	"github.com/hitoshi/ridebook/internal/repository"
)

// Service は認証に関するビジネスロジックを提供する。
// HTTPハンドラーとコンソールの双方から利用する。
type Service struct {
	accountRepo repository.AccountRepository
	sessionRepo repository.SessionRepository
	hasher      PasswordHasher
	tokens      TokenGenerator
	metrics     metrics.MetricsCollector
}

// NewService はServiceを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(
	accountRepo repository.AccountRepository,
	sessionRepo repository.SessionRepository,
	hasher PasswordHasher,
	tokens TokenGenerator,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokens:      tokens,
		metrics:     collector,
	}
}

// Register はアカウントを登録する。
// name、email、passwordのいずれかが空白のみの場合はInvalidInputを返す。
// 同じメールアドレス（大文字小文字を区別しない）が登録済みの場合はDuplicateEmailを返す。
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		s.metrics.RecordRegistration(false)
		return model.NewInvalidInputError(model.MsgRegisterFieldsRequired)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.metrics.RecordRegistration(false)
		return fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		s.metrics.RecordRegistration(false)
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.NewDuplicateEmailError()
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	s.metrics.RecordRegistration(true)
	slog.Info("account registered", slog.String("email", email))
	return nil
}

// Authenticate はメールアドレスとパスワードを検証し、一致するアカウントを返す。
// アカウントが存在しない、またはパスワードが一致しない場合はInvalidCredentialsを返す。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	account, err := s.accountRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := s.hasher.Compare(account.PasswordHash, password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return nil, model.NewInvalidCredentialsError()
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	return account, nil
}

// Login は認証に成功した場合に新しいセッションを発行する。
// 同一アカウントで複数回ログインした場合はそれぞれ別のトークンを発行する。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, *model.Account, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		s.metrics.RecordLogin(false)
		return nil, nil, model.NewInvalidInputError(model.MsgLoginFieldsRequired)
	}

	account, err := s.Authenticate(ctx, email, password)
	if err != nil {
		s.metrics.RecordLogin(false)
		if errors.Is(err, model.ErrInvalidCredentials) {
			slog.Warn("login failed", slog.String("email", NormalizeEmail(email)))
		}
		return nil, nil, err
	}

	session, err := s.createSession(ctx, account.Email)
	if err != nil {
		s.metrics.RecordLogin(false)
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.RecordLogin(true)
	slog.Info("user logged in", slog.String("email", account.Email))
	return session, account, nil
}

// Resolve はトークンに対応するアカウントのメールアドレスを返す。
// トークンが空または未登録の場合はUnauthorizedを返す。
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", model.NewUnauthorizedError()
	}

	session, err := s.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return "", model.NewUnauthorizedError()
	}

	return session.AccountEmail, nil
}

// Logout はセッションを破棄する。
// トークンが空または未登録の場合も何もせず成功とする。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// createSession はセッションを作成し保存する。
func (s *Service) createSession(ctx context.Context, accountEmail string) (*model.Session, error) {
	token, err := s.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session := &model.Session{
		Token:        token,
		AccountEmail: accountEmail,
		CreatedAt:    time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// NormalizeEmail はメールアドレスを比較用に正規化する（前後の空白除去・小文字化）。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
