package auth

import "github.com/google/uuid"

// TokenGenerator はセッショントークンを生成するインターフェース。
// 生成される文字列は第三者が推測できないものでなければならない。
type TokenGenerator interface {
	Generate() (string, error)
}

// UUIDTokenGenerator はランダム（v4）UUIDをトークンとして生成する。
// uuid.NewRandomはcrypto/randを読み取る。
type UUIDTokenGenerator struct{}

// Generate は新しいトークンを生成する。
func (UUIDTokenGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var _ TokenGenerator = UUIDTokenGenerator{}
