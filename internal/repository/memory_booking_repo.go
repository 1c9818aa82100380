package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hitoshi/ridebook/internal/model"
)

// MemoryBookingRepo はプロセス内メモリを使用した追加専用の予約台帳。
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings []model.Booking
	ids      map[string]struct{}
}

// NewMemoryBookingRepo はMemoryBookingRepoを生成する。
func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{
		ids: make(map[string]struct{}),
	}
}

// Append は予約を台帳の末尾に追加する。
// 呼び出し元が保持するポインタの変更は台帳に影響しない。
func (r *MemoryBookingRepo) Append(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ids[booking.ID]; exists {
		return fmt.Errorf("failed to append booking %s: %w", booking.ID, ErrAlreadyExists)
	}
	r.ids[booking.ID] = struct{}{}
	r.bookings = append(r.bookings, *booking)
	return nil
}

// ListByOwner は指定メールアドレスの予約を追加順に返す。
func (r *MemoryBookingRepo) ListByOwner(_ context.Context, ownerEmail string) ([]*model.Booking, error) {
	owner := strings.TrimSpace(ownerEmail)
	results := make([]*model.Booking, 0)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.bookings {
		if strings.EqualFold(r.bookings[i].OwnerEmail, owner) {
			b := r.bookings[i]
			results = append(results, &b)
		}
	}
	return results, nil
}

// Len は台帳の総件数を返す。テスト用。
func (r *MemoryBookingRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bookings)
}

// compile-time interface check
var _ BookingRepository = (*MemoryBookingRepo)(nil)
