// Package model はドメインモデルを定義する。
package model

import "time"

// Loan は貸出記録を表す。
// ReturnDate が nil の間はオープンな貸出であり、対象の Book は貸出不可となる。
// ReturnDate と Book.Available の書き込みは貸出エンジンのみが行う。
type Loan struct {
	ID         string
	UserID     string
	BookID     string
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LoanStatus は貸出の状態を表す読み取り時の導出ラベル。
// 永続化はされず、毎回 Status で再計算される。
type LoanStatus string

const (
	// LoanStatusActive は返却期限内のオープンな貸出。
	LoanStatusActive LoanStatus = "active"
	// LoanStatusExpired は返却期限を過ぎたオープンな貸出。
	LoanStatusExpired LoanStatus = "expired"
	// LoanStatusReturned は返却済みの貸出。
	LoanStatusReturned LoanStatus = "returned"
)

// IsOpen は貸出がオープン（未返却）かどうかを返す。
func (l *Loan) IsOpen() bool {
	return l.ReturnDate == nil
}

// Status は基準日における貸出状態を導出する。
// 返却済みなら returned、返却期限（日付単位）を過ぎていれば expired、
// それ以外は active を返す。副作用はない。
func (l *Loan) Status(today time.Time) LoanStatus {
	if l.ReturnDate != nil {
		return LoanStatusReturned
	}
	if DateOf(l.DueDate).Before(DateOf(today)) {
		return LoanStatusExpired
	}
	return LoanStatusActive
}

// DateOf は時刻を日付（その日の00:00:00）に切り詰める。
// 期限判定は時刻ではなく日付単位で行う。
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
