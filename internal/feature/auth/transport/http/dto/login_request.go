package dto

// LoginReq は/loginエンドポイントのリクエストボディを表します。
// 必須フィールドとメール形式のバリデーションを含みます。
// PublicComputerがtrueの場合、セッションの有効期間が短縮されます。
type LoginReq struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required"`
	PublicComputer bool   `json:"public_computer"`
}
