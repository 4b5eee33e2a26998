// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, loan, catalog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidArgument   = "INVALID_ARGUMENT"
	ErrCodeBookNotFound      = "BOOK_NOT_FOUND"
	ErrCodeLoanNotFound      = "LOAN_NOT_FOUND"
	ErrCodeBookUnavailable   = "BOOK_UNAVAILABLE"
	ErrCodeDuplicateLoan     = "DUPLICATE_LOAN"
	ErrCodeLoanLimitExceeded = "LOAN_LIMIT_EXCEEDED"
	ErrCodeInconsistentState = "INCONSISTENT_STATE"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInvalidCreds      = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken        = "EMAIL_TAKEN"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeWishlistDuplicate = "WISHLIST_DUPLICATE"
	ErrCodeWishlistNotFound  = "WISHLIST_NOT_FOUND"
	ErrCodeReviewNotFound    = "REVIEW_NOT_FOUND"
	ErrCodeInvalidRating     = "INVALID_RATING"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
)

// NewInvalidArgumentError は不正な入力値エラーを生成する。
func NewInvalidArgumentError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidArgument,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "リクエストの内容を確認してください。",
	}
}

// NewBookNotFoundError は蔵書未検出エラーを生成する。
func NewBookNotFoundError(bookID string) *APIError {
	return &APIError{
		Code:     ErrCodeBookNotFound,
		Message:  fmt.Sprintf("指定された蔵書が見つかりません: %s", bookID),
		Category: "catalog",
		Action:   "蔵書IDを確認してください。",
	}
}

// NewLoanNotFoundError は貸出記録未検出エラーを生成する。
func NewLoanNotFoundError(loanID string) *APIError {
	return &APIError{
		Code:     ErrCodeLoanNotFound,
		Message:  fmt.Sprintf("指定された貸出記録が見つかりません: %s", loanID),
		Category: "loan",
		Action:   "貸出IDを確認してください。",
	}
}

// NewBookUnavailableError は貸出中の蔵書を借りようとした場合のエラーを生成する。
func NewBookUnavailableError(bookID string) *APIError {
	return &APIError{
		Code:     ErrCodeBookUnavailable,
		Message:  fmt.Sprintf("この蔵書は現在貸出中です: %s", bookID),
		Category: "loan",
		Action:   "返却されるまでお待ちいただくか、読みたい本リストに追加してください。",
	}
}

// NewDuplicateLoanError は同一蔵書の二重貸出エラーを生成する。
func NewDuplicateLoanError(bookID string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateLoan,
		Message:  fmt.Sprintf("この蔵書はすでに借りています: %s", bookID),
		Category: "loan",
		Action:   "現在の貸出一覧を確認してください。",
	}
}

// NewLoanLimitExceededError は貸出上限エラーを生成する。
func NewLoanLimitExceededError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeLoanLimitExceeded,
		Message:  fmt.Sprintf("貸出数が上限（%d冊）に達しています。", limit),
		Category: "loan",
		Action:   "借りている本を返却してから、新しい本を借りてください。",
	}
}

// NewInconsistentStateError はデータ整合性違反を検出した場合のエラーを生成する。
// システム内部の不具合を示すため、握りつぶさず必ず表面化させる。
func NewInconsistentStateError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeInconsistentState,
		Message:  fmt.Sprintf("データの整合性エラーが発生しました: %s", detail),
		Category: "system",
		Action:   "管理者にお問い合わせください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メールアドレスの存在有無を区別しないメッセージを返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCreds,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスはすでに登録されています。",
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewWishlistDuplicateError は読みたい本リストへの重複追加エラーを生成する。
func NewWishlistDuplicateError(bookID string) *APIError {
	return &APIError{
		Code:     ErrCodeWishlistDuplicate,
		Message:  fmt.Sprintf("この蔵書はすでに読みたい本リストに追加されています: %s", bookID),
		Category: "catalog",
		Action:   "読みたい本リストを確認してください。",
	}
}

// NewWishlistNotFoundError は読みたい本リストのエントリが見つからない場合のエラーを生成する。
func NewWishlistNotFoundError(entryID string) *APIError {
	return &APIError{
		Code:     ErrCodeWishlistNotFound,
		Message:  fmt.Sprintf("指定されたエントリが見つかりません: %s", entryID),
		Category: "catalog",
		Action:   "読みたい本リストを確認してください。",
	}
}

// NewReviewNotFoundError はレビューが見つからない場合のエラーを生成する。
func NewReviewNotFoundError(reviewID string) *APIError {
	return &APIError{
		Code:     ErrCodeReviewNotFound,
		Message:  fmt.Sprintf("指定されたレビューが見つかりません: %s", reviewID),
		Category: "catalog",
		Action:   "レビューIDを確認してください。",
	}
}

// NewInvalidRatingError は評価値が範囲外の場合のエラーを生成する。
func NewInvalidRatingError(rating int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRating,
		Message:  fmt.Sprintf("無効な評価値です: %d", rating),
		Category: "validation",
		Action:   "評価は1から5の整数で指定してください。",
	}
}
