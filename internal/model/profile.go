package model

import "time"

// Profile はバックエンドが返す利用者プロフィールを表す。
// profileComplete はバックエンドが算出する導出値であり、
// クライアント側で再計算してはならない（常に最新の取得値を信頼する）。
type Profile struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             Role   `json:"role"`
	ProfilePicture   string `json:"profilePicture"`
	PhoneNumber      string `json:"phoneNumber"`
	Address          string `json:"address"`
	OrganizationName string `json:"organizationName"`
	// LicenseNumber は受取団体のみが持つ認可番号。
	LicenseNumber   string     `json:"licenseNumber"`
	ProfileComplete bool       `json:"profileComplete"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`

	// 活動カウンタ。寄付者は作成数、受取団体は回収数を表す。
	TotalDonations  int64 `json:"totalDonations"`
	TotalItems      int64 `json:"totalItems"`
	ActiveDonations int64 `json:"activeDonations"`
}

// ProfileUpdate はプロフィール更新リクエストの部分フィールド集合。
// 空フィールドは送信されず、バックエンド側で未変更として扱われる。
type ProfileUpdate struct {
	Name             string `json:"name,omitempty"`
	PhoneNumber      string `json:"phoneNumber,omitempty"`
	Address          string `json:"address,omitempty"`
	ProfilePicture   string `json:"profilePicture,omitempty"`
	OrganizationName string `json:"organizationName,omitempty"`
	LicenseNumber    string `json:"licenseNumber,omitempty"`
}

// Stats は活動統計エンドポイントのレスポンスを表す。
type Stats struct {
	TotalDonations  int64 `json:"totalDonations"`
	TotalItems      int64 `json:"totalItems"`
	ActiveDonations int64 `json:"activeDonations"`
	Role            Role  `json:"role"`
}
