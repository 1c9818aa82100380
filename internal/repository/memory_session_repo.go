package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/hitoshi/ridebook/internal/model"
)

// MemorySessionRepo はプロセス内メモリを使用したセッションリポジトリ。
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

// NewMemorySessionRepo はMemorySessionRepoを生成する。
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{
		sessions: make(map[string]model.Session),
	}
}

// Create はセッションを作成する。
func (r *MemorySessionRepo) Create(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.Token]; exists {
		return fmt.Errorf("failed to create session: %w", ErrAlreadyExists)
	}
	r.sessions[session.Token] = *session
	return nil
}

// FindByToken は指定トークンのセッションを取得する。
func (r *MemorySessionRepo) FindByToken(_ context.Context, token string) (*model.Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[token]
	r.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return &session, nil
}

// DeleteByToken は指定トークンのセッションを削除する。
func (r *MemorySessionRepo) DeleteByToken(_ context.Context, token string) error {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
	return nil
}

// Count は有効なセッション数を返す。テスト用。
func (r *MemorySessionRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// compile-time interface check
var _ SessionRepository = (*MemorySessionRepo)(nil)
