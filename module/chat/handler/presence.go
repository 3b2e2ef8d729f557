package handler

import (
	midsec "EduTalk/middleware/security"
	"EduTalk/tools/errs"

	"github.com/gin-gonic/gin"
)

type presenceBody struct {
	IsOnline *bool `json:"is_online"`
}

func (h *Handler) SetPresence(c *gin.Context) {
	var body presenceBody
	if err := c.ShouldBindJSON(&body); err != nil || body.IsOnline == nil {
		fail(c, errs.ErrArgs.WrapMsg("is_online is required"))
		return
	}
	p, err := h.svc.SetPresence(c.Request.Context(), midsec.CurrentUserID(c), *body.IsOnline)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, p)
}

func (h *Handler) GetPresence(c *gin.Context) {
	p, err := h.svc.GetPresence(c.Request.Context(), c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{
		"user_id":   c.Param("userId"),
		"is_online": p.IsOnline,
		"last_seen": p.LastSeen,
	})
}
