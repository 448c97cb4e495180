package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iamyatin-14/connectfood/internal/controller"
	"github.com/iamyatin-14/connectfood/internal/middleware"
	"github.com/iamyatin-14/connectfood/internal/model"
)

// ViewRegistry はセッションごとのダッシュボードビューを提供するインターフェース。
// controller.Registryの部分集合として定義する。
type ViewRegistry interface {
	DonorView(token string) *controller.DonorView
	RecipientView(token string) *controller.RecipientView
	Drop(token string)
}

// DonationHandler は出品関連のHTTPハンドラー。
// 状態はコントローラーのビューが保持し、ハンドラーはリクエストの変換のみを行う。
type DonationHandler struct {
	views ViewRegistry
}

// NewDonationHandler はDonationHandlerを生成する。
func NewDonationHandler(views ViewRegistry) *DonationHandler {
	return &DonationHandler{views: views}
}

// donationResponse は出品のAPIレスポンス。
// ライフサイクルフラグから導出した表示ステータスと次の操作を含む。
type donationResponse struct {
	model.Donation
	Status     string       `json:"status"`
	NextAction model.Action `json:"nextAction"`
}

// donorDashboardResponse は寄付者ダッシュボードのAPIレスポンス。
type donorDashboardResponse struct {
	Profile         *model.Profile     `json:"profile"`
	Stats           *model.Stats       `json:"stats"`
	Donations       []donationResponse `json:"donations"`
	RequiresProfile bool               `json:"requiresProfile"`
}

// donationListResponse は出品一覧のAPIレスポンス。
type donationListResponse struct {
	Donations       []donationResponse `json:"donations"`
	RequiresProfile bool               `json:"requiresProfile,omitempty"`
}

// DonorDashboard は寄付者ダッシュボードの表示データを返す。
// プロフィール未完了の場合はrequiresProfileのみ真で返り、
// クライアント側がプロフィール入力ページへ誘導する。
// GET /app/donations
func (h *DonationHandler) DonorDashboard(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeUnauthenticated(w)
		return
	}

	dashboard, err := h.views.DonorView(sess.Token).Refresh(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, err, "ダッシュボードの取得に失敗しました。")
		return
	}

	writeJSON(w, http.StatusOK, donorDashboardResponse{
		Profile:         dashboard.Profile,
		Stats:           dashboard.Stats,
		Donations:       toDonationResponses(dashboard.Donations),
		RequiresProfile: dashboard.RequiresProfile,
	})
}

// Create は出品を作成し、再取得した一覧を返す。
// プロフィール未完了が検出された場合は作成を行わず、requiresProfileを返して
// クライアント側がプロフィール入力ページへ誘導する。
// POST /app/donations
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeUnauthenticated(w)
		return
	}

	var draft model.DonationDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	list, requiresProfile, err := h.views.DonorView(sess.Token).Create(r.Context(), draft)
	if err != nil {
		middleware.WriteAPIError(w, err, "出品の作成に失敗しました。")
		return
	}
	if requiresProfile {
		writeJSON(w, http.StatusOK, donationListResponse{RequiresProfile: true})
		return
	}

	writeJSON(w, http.StatusCreated, donationListResponse{Donations: toDonationResponses(list)})
}

// Update は自分の出品を更新し、再取得した一覧を返す。
// PUT /app/donations/{id}
func (h *DonationHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeUnauthenticated(w)
		return
	}

	var draft model.DonationDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	id := chi.URLParam(r, "id")
	list, err := h.views.DonorView(sess.Token).Update(r.Context(), id, draft)
	if err != nil {
		middleware.WriteAPIError(w, err, "出品の更新に失敗しました。")
		return
	}

	writeJSON(w, http.StatusOK, donationListResponse{Donations: toDonationResponses(list)})
}

// Delete は自分の出品を削除し、再取得した一覧を返す。
// DELETE /app/donations/{id}
func (h *DonationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeUnauthenticated(w)
		return
	}

	id := chi.URLParam(r, "id")
	list, err := h.views.DonorView(sess.Token).Delete(r.Context(), id)
	if err != nil {
		middleware.WriteAPIError(w, err, "出品の削除に失敗しました。")
		return
	}

	writeJSON(w, http.StatusOK, donationListResponse{Donations: toDonationResponses(list)})
}

// Live は公開中の出品一覧を絞り込み条件付きで返す。
// 絞り込み条件はクエリパラメータから読み取り、ビューに反映してから再取得する。
// 古いレスポンスの破棄はビューの逐次番号ガードが行う。
// GET /app/donations/live?city=&district=&minQuantity=
func (h *DonationHandler) Live(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeUnauthenticated(w)
		return
	}

	view := h.views.RecipientView(sess.Token)
	view.SetFilters(filtersFromQuery(r))

	list, err := view.Refresh(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, err, "公開出品一覧の取得に失敗しました。")
		return
	}

	writeJSON(w, http.StatusOK, donationListResponse{Donations: toDonationResponses(list)})
}

// Received は自分が回収した出品の一覧を返す。
// GET /app/donations/received
func (h *DonationHandler) Received(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeUnauthenticated(w)
		return
	}

	list, err := h.views.RecipientView(sess.Token).Received(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, err, "回収済み一覧の取得に失敗しました。")
		return
	}

	writeJSON(w, http.StatusOK, donationListResponse{Donations: toDonationResponses(list)})
}

// Initiate は回収開始を宣言し、再取得した最新のレコードを返す。
// 同一出品への操作が処理中の場合は409を返す。
// PUT /app/donations/{id}/initiate
func (h *DonationHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeUnauthenticated(w)
		return
	}

	id := chi.URLParam(r, "id")
	d, err := h.views.RecipientView(sess.Token).Initiate(r.Context(), id)
	if err != nil {
		middleware.WriteAPIError(w, err, "回収開始に失敗しました。")
		return
	}

	writeJSON(w, http.StatusOK, toDonationResponse(*d))
}

// Collect は回収完了を宣言し、再取得した最新のレコードを返す。
// PUT /app/donations/{id}/collect
func (h *DonationHandler) Collect(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeUnauthenticated(w)
		return
	}

	id := chi.URLParam(r, "id")
	d, err := h.views.RecipientView(sess.Token).Collect(r.Context(), id)
	if err != nil {
		middleware.WriteAPIError(w, err, "回収完了に失敗しました。")
		return
	}

	writeJSON(w, http.StatusOK, toDonationResponse(*d))
}

// filtersFromQuery はクエリパラメータから絞り込み条件を構築する。
// minQuantityは未指定または不正な場合にデフォルトの1を使用する。
func filtersFromQuery(r *http.Request) model.DonationFilters {
	q := r.URL.Query()
	filters := model.DonationFilters{
		City:        q.Get("city"),
		District:    q.Get("district"),
		MinQuantity: 1,
	}
	if v := q.Get("minQuantity"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filters.MinQuantity = n
		}
	}
	return filters
}

// toDonationResponse はmodel.DonationからAPIレスポンスに変換する。
func toDonationResponse(d model.Donation) donationResponse {
	return donationResponse{
		Donation:   d,
		Status:     d.Status(),
		NextAction: d.NextAction(),
	}
}

// toDonationResponses は出品一覧をAPIレスポンスに変換する。
func toDonationResponses(list []model.Donation) []donationResponse {
	out := make([]donationResponse, len(list))
	for i, d := range list {
		out[i] = toDonationResponse(d)
	}
	return out
}
