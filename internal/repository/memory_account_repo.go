package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hitoshi/ridebook/internal/model"
)

// MemoryAccountRepo はプロセス内メモリを使用したアカウントリポジトリ。
// キーは小文字化したメールアドレス。
type MemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[string]model.Account
}

// NewMemoryAccountRepo はMemoryAccountRepoを生成する。
func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{
		accounts: make(map[string]model.Account),
	}
}

// Create はアカウントを作成する。
func (r *MemoryAccountRepo) Create(_ context.Context, account *model.Account) error {
	key := emailKey(account.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[key]; exists {
		return fmt.Errorf("failed to create account %s: %w", key, ErrAlreadyExists)
	}
	r.accounts[key] = *account
	return nil
}

// FindByEmail はメールアドレスでアカウントを検索する。
func (r *MemoryAccountRepo) FindByEmail(_ context.Context, email string) (*model.Account, error) {
	r.mu.RLock()
	account, ok := r.accounts[emailKey(email)]
	r.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return &account, nil
}

// Count は登録済みアカウント数を返す。テスト用。
func (r *MemoryAccountRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// compile-time interface check
var _ AccountRepository = (*MemoryAccountRepo)(nil)
