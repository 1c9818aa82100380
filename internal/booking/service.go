// Package booking は配車予約の作成と一覧取得を提供する。
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/ridebook/internal/fare"
	"github.com/hitoshi/ridebook/internal/metrics"
	"github.com/hitoshi/ridebook/internal/model"
	"github.com/hitoshi/ridebook/internal/repository"
)

// Service は予約に関するビジネスロジックを提供する。
type Service struct {
	repo    repository.BookingRepository
	metrics metrics.MetricsCollector
	now     func() time.Time
}

// NewService はServiceを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(repo repository.BookingRepository, collector metrics.MetricsCollector) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		repo:    repo,
		metrics: collector,
		now:     time.Now,
	}
}

// Book は運賃を算出して予約を台帳に追加する。
// 出発地・目的地が空白のみ、または距離が有限の正数でない場合はInvalidInputを返し、何も追加しない。
func (s *Service) Book(ctx context.Context, ownerEmail, source, destination string, distanceKm float64) (*model.Booking, error) {
	source = strings.TrimSpace(source)
	destination = strings.TrimSpace(destination)

	if err := validate(source, destination, distanceKm); err != nil {
		return nil, err
	}

	b := &model.Booking{
		ID:          uuid.New().String(),
		OwnerEmail:  ownerEmail,
		Source:      source,
		Destination: destination,
		DistanceKm:  distanceKm,
		Fare:        fare.Compute(distanceKm),
		CreatedAt:   s.now(),
	}

	if err := s.repo.Append(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to append booking: %w", err)
	}

	s.metrics.RecordBooking(b.Fare)
	slog.Info("booking created",
		slog.String("booking_id", b.ID),
		slog.String("email", ownerEmail),
		slog.Float64("distance_km", distanceKm),
		slog.Float64("fare", b.Fare),
	)
	return b, nil
}

// List は指定アカウントの予約を作成順に返す。該当がない場合は空スライスを返す。
func (s *Service) List(ctx context.Context, ownerEmail string) ([]*model.Booking, error) {
	bookings, err := s.repo.ListByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func validate(source, destination string, distanceKm float64) error {
	if source == "" || destination == "" {
		return model.NewInvalidInputError(model.MsgBookingFieldsRequired)
	}
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm <= 0 {
		return model.NewInvalidInputError(model.MsgBookingFieldsRequired)
	}
	return nil
}
