// Package model はドメインモデルを定義する。
package model

import "time"

// ロール定数。JWTのroleクレームおよび認可判定に使用する。
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User はサービス利用ユーザーを表す。
// PasswordHash にはbcryptハッシュを格納し、平文パスワードは保持しない。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin はユーザーが管理者ロールを持つかどうかを返す。
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
