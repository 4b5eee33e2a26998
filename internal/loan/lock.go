package loan

import "sync"

// bookLockTable は蔵書IDごとの排他制御を提供する。
// 「貸出可否の確認→フラグ反転」はcheck-then-actの競合を起こすため、
// 同一蔵書に対する貸出・返却・期限切れ処理は同じロックで直列化する。
// エントリは参照カウントで管理し、待機者がいなくなった時点でテーブルから外す。
type bookLockTable struct {
	mu    sync.Mutex
	locks map[string]*bookLock
}

type bookLock struct {
	mu   sync.Mutex
	refs int
}

// newBookLockTable はbookLockTableを生成する。
func newBookLockTable() *bookLockTable {
	return &bookLockTable{
		locks: make(map[string]*bookLock),
	}
}

// Acquire は指定蔵書のロックを取得し、解放用の関数を返す。
// 同じ蔵書IDに対する呼び出しは直列化され、異なる蔵書IDは互いにブロックしない。
func (t *bookLockTable) Acquire(bookID string) (release func()) {
	t.mu.Lock()
	entry, ok := t.locks[bookID]
	if !ok {
		entry = &bookLock{}
		t.locks[bookID] = entry
	}
	entry.refs++
	t.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		t.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(t.locks, bookID)
		}
		t.mu.Unlock()
	}
}
