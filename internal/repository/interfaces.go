// Package repository はデータ永続化のインターフェースとプロセス内メモリ実装を定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/ridebook/internal/model"
)

// ErrAlreadyExists は一意キーが既に存在する場合に返される。
var ErrAlreadyExists = errors.New("already exists")

// AccountRepository はアカウントデータの保存インターフェース。
type AccountRepository interface {
	// Create はアカウントを作成する。
	// 同じメールアドレス（大文字小文字を区別しない）が存在する場合はErrAlreadyExistsを返す。
	// 存在確認と挿入は不可分に行う。
	Create(ctx context.Context, account *model.Account) error

	// FindByEmail はメールアドレスでアカウントを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
}

// SessionRepository はセッションデータの保存インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。同じトークンが存在する場合はErrAlreadyExistsを返す。
	Create(ctx context.Context, session *model.Session) error
	// FindByToken は指定トークンのセッションを取得する。見つからない場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	// DeleteByToken は指定トークンのセッションを削除する。存在しない場合も成功とする。
	DeleteByToken(ctx context.Context, token string) error
}

// BookingRepository は予約台帳の保存インターフェース。
// 追加のみをサポートし、更新・削除は提供しない。
type BookingRepository interface {
	// Append は予約を台帳の末尾に追加する。同じIDが存在する場合はErrAlreadyExistsを返す。
	Append(ctx context.Context, booking *model.Booking) error

	// ListByOwner は指定メールアドレス（大文字小文字を区別しない）の予約を追加順に返す。
	// 該当がない場合は空スライスを返す。
	ListByOwner(ctx context.Context, ownerEmail string) ([]*model.Booking, error)
}
