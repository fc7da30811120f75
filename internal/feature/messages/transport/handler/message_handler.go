// Package handler はmessagesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	authmw "bluemind_backend/internal/feature/auth/transport/middleware"
	"bluemind_backend/internal/feature/messages/domain/entity"
	"bluemind_backend/internal/feature/messages/transport/http/dto"
	"bluemind_backend/internal/feature/messages/usecase"
)

// MessageUsecase はメッセージ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type MessageUsecase interface {
	Send(ctx context.Context, senderID uint, recipientEmail, subject, body string) (*entity.Message, error)
	Inbox(ctx context.Context, userID uint, limit int) ([]entity.Message, error)
	View(ctx context.Context, userID uint, messageID string) (*entity.Message, error)
	Delete(ctx context.Context, userID uint, messageID string) error
}

// MessagesHandler はメッセージのHTTPリクエストを処理します。
// すべてのエンドポイントは認証ミドルウェアの背後に置かれ、
// 操作対象のユーザーIDはginコンテキストから取得します。
type MessagesHandler struct {
	uc MessageUsecase
}

// NewMessagesHandler は指定されたusecaseでMessagesHandlerの新しいインスタンスを生成します。
func NewMessagesHandler(uc MessageUsecase) *MessagesHandler {
	return &MessagesHandler{uc: uc}
}

// Send はメッセージ送信APIエンドポイントを処理します。
// - 宛先ユーザーが存在しない場合は404を返却
// - 成功時は201と新規メッセージIDを返却
func (h *MessagesHandler) Send(c *gin.Context) {
	var req dto.SendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("send validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}

	senderID := c.GetUint(authmw.ContextUserID)
	message, err := h.uc.Send(c.Request.Context(), senderID, req.Recipient, req.Subject, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrRecipientNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorRes{Error: "recipient not found"})
		case errors.Is(err, usecase.ErrEmptyBody),
			errors.Is(err, usecase.ErrBodyTooLong),
			errors.Is(err, usecase.ErrSubjectTooLong):
			c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: err.Error()})
		default:
			slog.Error("send failed", "error", err, "sender_id", senderID)
			c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal error"})
		}
		return
	}

	slog.Info("message sent", "message_id", message.ID, "sender_id", senderID)
	c.JSON(http.StatusCreated, dto.SendRes{ID: message.ID})
}

// Inbox は受信トレイAPIエンドポイントを処理します。
// 認証済みユーザー宛のメッセージを新しい順に返します。
//
// エンドポイント例:
// GET /inbox?limit=50
func (h *MessagesHandler) Inbox(c *gin.Context) {
	userID := c.GetUint(authmw.ContextUserID)
	// 未指定・不正な値はusecase側でデフォルトに丸められる
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	messages, err := h.uc.Inbox(c.Request.Context(), userID, limit)
	if err != nil {
		slog.Error("inbox failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal error"})
		return
	}

	out := make([]dto.MessageRes, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageRes(&m))
	}
	c.JSON(http.StatusOK, out)
}

// View は1件取得APIエンドポイントを処理します。
// 受信者以外からの参照は存在有無を問わず404です。
func (h *MessagesHandler) View(c *gin.Context) {
	userID := c.GetUint(authmw.ContextUserID)
	messageID := c.Param("id")

	message, err := h.uc.View(c.Request.Context(), userID, messageID)
	if err != nil {
		if errors.Is(err, usecase.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorRes{Error: "message not found"})
			return
		}
		slog.Error("view failed", "error", err, "user_id", userID, "message_id", messageID)
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, toMessageRes(message))
}

// Delete は受信者本人によるメッセージ削除APIエンドポイントを処理します。
func (h *MessagesHandler) Delete(c *gin.Context) {
	userID := c.GetUint(authmw.ContextUserID)
	messageID := c.Param("id")

	if err := h.uc.Delete(c.Request.Context(), userID, messageID); err != nil {
		if errors.Is(err, usecase.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorRes{Error: "message not found"})
			return
		}
		slog.Error("delete failed", "error", err, "user_id", userID, "message_id", messageID)
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func toMessageRes(m *entity.Message) dto.MessageRes {
	return dto.MessageRes{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Subject:     m.Subject,
		Body:        m.Body,
		CreatedAt:   m.CreatedAt,
		ReadAt:      m.ReadAt,
	}
}
