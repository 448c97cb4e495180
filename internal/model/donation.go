package model

import "time"

// 表示ステータスラベル。優先順位は Status を参照。
const (
	StatusCollected          = "Collected"
	StatusCollectionInitiate = "Collection Initiated"
	StatusAvailable          = "Available"
)

// Action は受取団体が出品に対して実行できる操作を表す。
// 出品のライフサイクルフラグから一意に導出され、同時に提示される操作は
// 常に高々1つである。
type Action string

const (
	// ActionInitiate は回収開始操作。両フラグが未設定のときのみ提示される。
	ActionInitiate Action = "initiate"
	// ActionCollect は回収完了操作。回収開始済みかつ未回収のときのみ提示される。
	ActionCollect Action = "collect"
	// ActionNone は操作なし。回収完了後は状態遷移を提示しない。
	ActionNone Action = ""
)

// Donation は食品の出品を表す。
// 状態は単調に遷移する: collected は collectionInitiated を含意し、
// collected が真になった後の遷移は存在しない。
// クライアントはフラグを決してローカルで書き換えず、各操作後に
// サーバーが返すレコードのみを状態の典拠とする。
type Donation struct {
	ID                  string     `json:"id"`
	DonorEmail          string     `json:"donorEmail,omitempty"`
	DonorName           string     `json:"donorName,omitempty"`
	FoodItem            string     `json:"foodItem"`
	Description         string     `json:"description,omitempty"`
	Quantity            int        `json:"quantity"`
	Unit                string     `json:"unit"`
	City                string     `json:"city"`
	District            string     `json:"district"`
	Address             string     `json:"address,omitempty"`
	ExpiryDate          *time.Time `json:"expiryDate,omitempty"`
	SpecialInstructions string     `json:"specialInstructions,omitempty"`

	Collected           bool       `json:"collected"`
	CollectionInitiated bool       `json:"collectionInitiated"`
	InitiatedBy         string     `json:"initiatedBy,omitempty"`
	InitiatedAt         *time.Time `json:"initiatedAt,omitempty"`
	CollectedBy         string     `json:"collectedBy,omitempty"`
	CollectedAt         *time.Time `json:"collectedAt,omitempty"`
	CreatedAt           *time.Time `json:"createdAt,omitempty"`
}

// Status はライフサイクルフラグから表示ステータスラベルを導出する。
// 優先順位: collected → collectionInitiated → それ以外。
// 他のフィールドの値には依存しない。
func (d *Donation) Status() string {
	if d.Collected {
		return StatusCollected
	}
	if d.CollectionInitiated {
		return StatusCollectionInitiate
	}
	return StatusAvailable
}

// NextAction は受取団体に提示する操作をフラグから導出する。
func (d *Donation) NextAction() Action {
	if d.Collected {
		return ActionNone
	}
	if d.CollectionInitiated {
		return ActionCollect
	}
	return ActionInitiate
}

// Units は出品の数量単位として許可される値。
var Units = []string{"people", "kg", "pieces", "packets", "boxes", "liters"}

// ValidUnit は単位が許可リストに含まれるかを返す。
func ValidUnit(unit string) bool {
	for _, u := range Units {
		if u == unit {
			return true
		}
	}
	return false
}

// DonationDraft は出品作成リクエストのフィールド集合。
// ローカル検証（donation.ValidateDraft）を通過した後にのみ送信される。
type DonationDraft struct {
	FoodItem            string     `json:"foodItem"`
	Description         string     `json:"description,omitempty"`
	Quantity            int        `json:"quantity"`
	Unit                string     `json:"unit"`
	City                string     `json:"city"`
	District            string     `json:"district"`
	Address             string     `json:"address,omitempty"`
	ExpiryDate          *time.Time `json:"expiryDate,omitempty"`
	SpecialInstructions string     `json:"specialInstructions,omitempty"`
}

// DonationFilters は受取団体向け公開出品一覧の絞り込み条件。
// ゼロ値のフィールドはクエリパラメータとして送信されず、制約を課さない。
type DonationFilters struct {
	City        string
	District    string
	MinQuantity int
}
