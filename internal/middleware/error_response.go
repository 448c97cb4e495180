package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iamyatin-14/connectfood/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのJSONエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteAPIError はエラーを統一フォーマットで書き込む。
// APIErrorの場合はその内容とステータスを使用し、それ以外は500として扱う。
// fallbackMessageはメッセージが空の場合に補われる。
func WriteAPIError(w http.ResponseWriter, err error, fallbackMessage string) {
	apiErr := model.AsAPIError(err)
	if apiErr == nil {
		WriteInternalServerError(w)
		return
	}

	if apiErr.Message == "" {
		apiErr.Message = fallbackMessage
	}

	status := statusForAPIError(apiErr)
	WriteErrorResponse(w, status, apiErr)
}

// statusForAPIError はAPIErrorからHTTPステータスを導出する。
// バックエンド由来のエラーは発生元ステータスを透過し、
// ローカル検証エラーはカテゴリに応じたステータスを使う。
func statusForAPIError(apiErr *model.APIError) int {
	if apiErr.Status != 0 {
		return apiErr.Status
	}
	switch apiErr.Code {
	case model.ErrCodeActionInProgress:
		return http.StatusConflict
	case model.ErrCodeLoginFailed:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}
