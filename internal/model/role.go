// Package model はドメインモデルを定義する。
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role は利用者の役割を表す閉じた列挙型。
// バックエンドは "donor" と "DONOR" のように大文字小文字が揺れた表現を返すため、
// 正規化はAPI境界（ParseRole / UnmarshalJSON）で1回だけ行い、
// アプリケーション内部では常に小文字の正準表現のみを扱う。
type Role string

const (
	// RoleDonor は余剰食品を出品する寄付者。
	RoleDonor Role = "donor"
	// RoleRecipient は出品を回収する受取団体。
	RoleRecipient Role = "recipient"
)

// ParseRole は外部表現のロール文字列を正準表現に正規化する。
// 未知のロールはエラーを返す。
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleDonor):
		return RoleDonor, nil
	case string(RoleRecipient):
		return RoleRecipient, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// UnmarshalJSON はJSONデコード時にロールを正規化する。
// 空文字列は未設定として許容する（プロフィール未取得時など）。
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*r = ""
		return nil
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Valid はロールが正準表現の既知の値であるかを返す。
func (r Role) Valid() bool {
	return r == RoleDonor || r == RoleRecipient
}

// DashboardPath はロールに対応するダッシュボードのパスを返す。
func (r Role) DashboardPath() string {
	if r == RoleRecipient {
		return "/recipient-dashboard"
	}
	return "/donor-dashboard"
}
