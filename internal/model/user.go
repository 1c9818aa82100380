// Package model はドメインモデルを定義する。
package model

import "time"

// Account は登録済みのサービス利用ユーザーを表す。
// Emailは正規化（前後の空白除去・小文字化）済みの値を保持し、一意キーとして扱う。
// 登録後は変更・削除されない。
type Account struct {
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Session はログインセッションを表す。
// 1アカウントにつき複数のセッションが同時に存在してよい。
type Session struct {
	Token        string
	AccountEmail string
	CreatedAt    time.Time
}
