// Package gateway はConnectFoodバックエンドAPIへのHTTPクライアントを提供する。
// すべてのドメインサービスは本パッケージ経由でバックエンドと通信する。
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/iamyatin-14/connectfood/internal/metrics"
	"github.com/iamyatin-14/connectfood/internal/model"
)

// maxErrorBodySize はエラーレスポンスボディの最大読み取りサイズ。
const maxErrorBodySize = 64 * 1024

// Client はバックエンドAPIのクライアント。
// リクエストごとにベアラートークンを付与し、レスポンスを統一エラー形式に正規化する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
// baseURLは末尾スラッシュなしのAPIベースURL（例: http://localhost:5454/api）。
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		metrics:    collector,
		baseURL:    baseURL,
	}
}

// errorBody はバックエンドが返すエラーレスポンスの形式。
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Get はGETリクエストを実行し、レスポンスJSONをoutにデコードする。
// queryがnilでない場合はクエリ文字列として付与する。
func (c *Client) Get(ctx context.Context, token, path string, query url.Values, out any) error {
	return c.do(ctx, token, http.MethodGet, path, query, nil, out)
}

// Post はJSONボディ付きのPOSTリクエストを実行する。
func (c *Client) Post(ctx context.Context, token, path string, body, out any) error {
	return c.do(ctx, token, http.MethodPost, path, nil, body, out)
}

// Put はPUTリクエストを実行する。bodyがnilの場合はボディなしで送信する。
func (c *Client) Put(ctx context.Context, token, path string, body, out any) error {
	return c.do(ctx, token, http.MethodPut, path, nil, body, out)
}

// Delete はDELETEリクエストを実行する。レスポンスボディは破棄される。
func (c *Client) Delete(ctx context.Context, token, path string) error {
	return c.do(ctx, token, http.MethodDelete, path, nil, nil, nil)
}

// do はHTTPリクエストを組み立てて実行する。
// 2xx以外のステータスはmodel.APIErrorに正規化して返す。
// ステータスとメッセージ以外のエラー詳細はログにのみ残す。
func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordUpstreamLatency(time.Since(start))
	if err != nil {
		c.metrics.RecordUpstreamFailure("network")
		c.logger.Error("バックエンドAPIの呼び出しに失敗しました",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("バックエンドAPIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamRequest(method, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := c.decodeErrorMessage(resp.Body)
		c.logger.Error("バックエンドAPIがエラーステータスを返しました",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
		)
		return model.NewUpstreamError(resp.StatusCode, message)
	}

	if out == nil {
		// ボディを読み捨ててコネクションを再利用可能にする
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.RecordUpstreamFailure("decode")
		c.logger.Error("バックエンドAPIのレスポンスのパースに失敗しました",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return nil
}

// decodeErrorMessage はエラーレスポンスからサーバー供給のメッセージを取り出す。
// JSONでない、またはメッセージフィールドがない場合は空文字列を返す。
func (c *Client) decodeErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}
