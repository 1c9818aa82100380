package model

import "time"

// Booking は配車予約の記録を表す。
// 台帳への追加後は変更・削除されない。
type Booking struct {
	ID          string
	OwnerEmail  string
	Source      string
	Destination string
	DistanceKm  float64
	Fare        float64
	CreatedAt   time.Time
}
