// Package model はドメインモデルを定義する。
package model

import "time"

// Book は蔵書を表す。
// Available は「現在貸出可能かどうか」を示す単一コピー前提のフラグで、
// 貸出エンジンが唯一の書き込み主体となる。
// AvailableNumber は在庫数を記録する管理用フィールドであり、
// 貸出エンジンは参照・更新しない。
type Book struct {
	ID              string
	Name            string
	Category        string
	Author          string
	PublishingHouse string
	Description     string
	CoverURL        string
	Available       bool
	AvailableNumber int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CategoryCount はカテゴリごとの蔵書数を表す。
type CategoryCount struct {
	Category string
	Count    int
}
