// Package dto defines data transfer objects for the messages feature's HTTP transport layer.
package dto

// SendReq は/messagesエンドポイントのリクエストボディを表します。
// 送信者フィールドは存在しません。送信者は常にセッションから決まります。
type SendReq struct {
	Recipient string `json:"recipient" binding:"required,email"`
	Subject   string `json:"subject" binding:"max=200"`
	Body      string `json:"body" binding:"required,max=10000"`
}
