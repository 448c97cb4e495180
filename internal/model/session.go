package model

// Session はクライアント側に保持するログインセッションを表す。
// トークンはバックエンドが発行する不透明なベアラー資格情報であり、
// クライアントは中身を解釈しない。
// 不変条件: Token が存在するとき、かつそのときに限り Role が存在する。
// セッションストアは本構造体を単一オブジェクトとして原子的に読み書きすることで
// この不変条件を保証する。
type Session struct {
	Token string
	Role  Role
}

// IsAuthenticated はセッションが認証済みかを返す。
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Token != "" && s.Role.Valid()
}
