package handler

import (
	"time"

	midsec "EduTalk/middleware/security"
	"EduTalk/tools/errs"

	"github.com/gin-gonic/gin"
)

type sendTextBody struct {
	Content     string `json:"content"`
	ClientMsgID string `json:"client_msg_id"`
}

func (h *Handler) SendText(c *gin.Context) {
	var body sendTextBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, errs.ErrArgs.WrapMsg("invalid body"))
		return
	}
	msg, err := h.svc.SendText(c.Request.Context(),
		c.Param("chatId"), midsec.CurrentUserID(c), body.Content, body.ClientMsgID)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "Message sent", msg)
}

func (h *Handler) SendAttachment(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, errs.ErrArgs.WrapMsg("file is required"))
		return
	}
	msg, err := h.svc.SendAttachment(c.Request.Context(),
		c.Param("chatId"), midsec.CurrentUserID(c), fh,
		c.PostForm("caption"), c.PostForm("client_msg_id"))
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "Message sent", msg)
}

func (h *Handler) FetchMessages(c *gin.Context) {
	page, limit := pageParams(c, 50)
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fail(c, errs.ErrArgs.WrapMsg("before must be RFC3339"))
			return
		}
		before = &t
	}
	msgs, total, err := h.svc.FetchMessages(c.Request.Context(),
		c.Param("chatId"), midsec.CurrentUserID(c), page, limit, before)
	if err != nil {
		fail(c, err)
		return
	}
	okPaged(c, msgs, pageOf(page, limit, total))
}

type editBody struct {
	Content string `json:"content"`
}

func (h *Handler) EditMessage(c *gin.Context) {
	var body editBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, errs.ErrArgs.WrapMsg("invalid body"))
		return
	}
	msg, err := h.svc.EditMessage(c.Request.Context(),
		c.Param("messageId"), midsec.CurrentUserID(c), body.Content)
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "Message updated", msg)
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	purged, err := h.svc.DeleteMessage(c.Request.Context(),
		c.Param("messageId"), midsec.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "Message deleted", gin.H{"purged": purged})
}

func (h *Handler) ClearChat(c *gin.Context) {
	err := h.svc.ClearChat(c.Request.Context(), c.Param("chatId"), midsec.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "Chat cleared", nil)
}
