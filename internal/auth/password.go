package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch はパスワードがハッシュと一致しない場合に返される。
var ErrPasswordMismatch = errors.New("password mismatch")

// PasswordHasher はパスワードの一方向ハッシュ化と照合を行うインターフェース。
type PasswordHasher interface {
	// Hash はパスワードのハッシュを生成する。
	Hash(password string) ([]byte, error)
	// Compare はハッシュとパスワードを照合する。一致しない場合はErrPasswordMismatchを返す。
	Compare(hash []byte, password string) error
}

// BcryptHasher はbcryptを使用したPasswordHasher。
// bcryptは72バイトを超える入力を受け付けないため、SHA-256の16進表現（64バイト）をbcryptに渡す。
// パスワード長に上限はない。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptHasherを生成する。
// costがbcryptの許容範囲外の場合はbcrypt.DefaultCostを使用する。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash はパスワードのbcryptハッシュを生成する。
func (h *BcryptHasher) Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(prehash(password), h.cost)
}

// Compare はbcryptハッシュとパスワードを照合する。
func (h *BcryptHasher) Compare(hash []byte, password string) error {
	err := bcrypt.CompareHashAndPassword(hash, prehash(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	dst := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(dst, sum[:])
	return dst
}

var _ PasswordHasher = (*BcryptHasher)(nil)
