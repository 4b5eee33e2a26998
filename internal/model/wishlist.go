// Package model はドメインモデルを定義する。
package model

import "time"

// WishlistEntry はユーザーの「読みたい本」リストの1件を表す。
// 同一ユーザー・同一蔵書の組は高々1件に保たれる。
type WishlistEntry struct {
	ID        string
	UserID    string
	BookID    string
	CreatedAt time.Time
}
