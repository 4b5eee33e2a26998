// Package model はドメインモデルを定義する。
package model

import "time"

// Review は蔵書に対するユーザーレビューを表す。
// Comment は保存前にサニタイズ済みのテキストを保持する。
type Review struct {
	ID        string
	UserID    string
	BookID    string
	Rating    int // 1〜5
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
