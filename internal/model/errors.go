// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// バックエンド呼び出しの失敗時には発生元のHTTPステータスを保持する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, donation, profile, system
	Action   string // ユーザー向け対処方法
	Status   int    // バックエンドのHTTPステータス（ローカル検証エラーでは0）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUpstream          = "UPSTREAM_ERROR"
	ErrCodeFoodItemRequired  = "FOOD_ITEM_REQUIRED"
	ErrCodeQuantityInvalid   = "QUANTITY_INVALID"
	ErrCodeUnitInvalid       = "UNIT_INVALID"
	ErrCodeCityRequired      = "CITY_REQUIRED"
	ErrCodeDistrictRequired  = "DISTRICT_REQUIRED"
	ErrCodeExpiryRequired    = "EXPIRY_DATE_REQUIRED"
	ErrCodeExpiryNotFuture   = "EXPIRY_DATE_NOT_FUTURE"
	ErrCodeNameRequired      = "NAME_REQUIRED"
	ErrCodeOrgFieldsRequired = "ORGANIZATION_FIELDS_REQUIRED"
	ErrCodeRoleRequired      = "ROLE_REQUIRED"
	ErrCodeRoleInvalid       = "ROLE_INVALID"
	ErrCodeLoginFailed       = "LOGIN_FAILED"
	ErrCodeActionInProgress  = "ACTION_IN_PROGRESS"
	ErrCodeAvatarURLBlocked  = "AVATAR_URL_BLOCKED"
)

// NewUpstreamError はバックエンドAPI呼び出し失敗のエラーを生成する。
// messageにはサーバーが返したメッセージを渡す。空の場合、呼び出し元は
// 操作固有のフォールバックメッセージに置き換える。
func NewUpstreamError(status int, message string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstream,
		Message:  message,
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
		Status:   status,
	}
}

// NewFoodItemRequiredError は食品名未入力のエラーを生成する。
func NewFoodItemRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeFoodItemRequired,
		Message:  "食品名を入力してください。",
		Category: "validation",
		Action:   "寄付する食品の名前を入力してください。",
	}
}

// NewQuantityInvalidError は数量が不正な場合のエラーを生成する。
func NewQuantityInvalidError(quantity int) *APIError {
	return &APIError{
		Code:     ErrCodeQuantityInvalid,
		Message:  fmt.Sprintf("数量は0より大きい必要があります: %d", quantity),
		Category: "validation",
		Action:   "1以上の数量を入力してください。",
	}
}

// NewUnitInvalidError は単位が許可リスト外の場合のエラーを生成する。
func NewUnitInvalidError(unit string) *APIError {
	return &APIError{
		Code:     ErrCodeUnitInvalid,
		Message:  fmt.Sprintf("無効な単位です: %s", unit),
		Category: "validation",
		Action:   "people、kg、pieces、packets、boxes、liters のいずれかを指定してください。",
	}
}

// NewCityRequiredError は市区未入力のエラーを生成する。
func NewCityRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeCityRequired,
		Message:  "市区を入力してください。",
		Category: "validation",
		Action:   "受け渡し場所の市区を入力してください。",
	}
}

// NewDistrictRequiredError は地区未入力のエラーを生成する。
func NewDistrictRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeDistrictRequired,
		Message:  "地区を入力してください。",
		Category: "validation",
		Action:   "受け渡し場所の地区を入力してください。",
	}
}

// NewExpiryRequiredError は賞味期限未入力のエラーを生成する。
func NewExpiryRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeExpiryRequired,
		Message:  "賞味期限を入力してください。",
		Category: "validation",
		Action:   "食品の賞味期限を指定してください。",
	}
}

// NewExpiryNotFutureError は賞味期限が未来でない場合のエラーを生成する。
func NewExpiryNotFutureError() *APIError {
	return &APIError{
		Code:     ErrCodeExpiryNotFuture,
		Message:  "賞味期限は現在より後の日時である必要があります。",
		Category: "validation",
		Action:   "未来の日付を指定してください。",
	}
}

// NewNameRequiredError は氏名未入力のエラーを生成する。
func NewNameRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeNameRequired,
		Message:  "氏名を入力してください。",
		Category: "validation",
		Action:   "プロフィールに氏名を入力してください。",
	}
}

// NewOrgFieldsRequiredError は受取団体の必須フィールド未入力のエラーを生成する。
func NewOrgFieldsRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeOrgFieldsRequired,
		Message:  "団体名と認可番号を入力してください。",
		Category: "validation",
		Action:   "受取団体は団体名と認可番号の両方が必要です。",
	}
}

// NewRoleRequiredError はロール未選択のエラーを生成する。
func NewRoleRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeRoleRequired,
		Message:  "ロールを選択してください。",
		Category: "auth",
		Action:   "寄付者または受取団体のいずれかを選択してください。",
	}
}

// NewRoleInvalidError は未知のロールが指定された場合のエラーを生成する。
func NewRoleInvalidError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeRoleInvalid,
		Message:  fmt.Sprintf("無効なロールです: %s", role),
		Category: "auth",
		Action:   "donor または recipient を指定してください。",
	}
}

// NewLoginFailedError はログイン失敗のエラーを生成する。
// サーバー供給のメッセージがある場合はそれを優先する。
func NewLoginFailedError(serverMessage string) *APIError {
	msg := serverMessage
	if msg == "" {
		msg = "ログインに失敗しました。"
	}
	return &APIError{
		Code:     ErrCodeLoginFailed,
		Message:  msg,
		Category: "auth",
		Action:   "再度サインインをお試しください。",
	}
}

// NewActionInProgressError は同一出品への操作が処理中の場合のエラーを生成する。
// 排他は出品単位であり、他の出品への操作は並行して許可される。
func NewActionInProgressError(donationID string) *APIError {
	return &APIError{
		Code:     ErrCodeActionInProgress,
		Message:  fmt.Sprintf("この出品への操作は処理中です: %s", donationID),
		Category: "donation",
		Action:   "処理が完了するまでお待ちください。",
	}
}

// NewAvatarURLBlockedError はアバター取得先URLがブロックされた場合のエラーを生成する。
func NewAvatarURLBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeAvatarURLBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されている画像URLのみ指定できます。",
	}
}

// AsAPIError はエラー連鎖からAPIErrorを取り出す。見つからない場合はnilを返す。
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// WithFallbackMessage はAPIErrorのメッセージが空の場合にfallbackを補う。
// サーバー供給のメッセージがある場合はそのまま維持される。
func WithFallbackMessage(err error, fallback string) error {
	if apiErr := AsAPIError(err); apiErr != nil && apiErr.Message == "" {
		apiErr.Message = fallback
	}
	return err
}

// UserMessage はエラーからユーザー向けメッセージを導出する。
// サーバー供給のメッセージを優先し、空の場合はfallbackを使用する。
func UserMessage(err error, fallback string) string {
	if apiErr := AsAPIError(err); apiErr != nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
