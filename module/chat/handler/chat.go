package handler

import (
	midsec "EduTalk/middleware/security"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetOrCreateChat(c *gin.Context) {
	view, isNew, err := h.svc.GetOrCreateChat(c.Request.Context(), midsec.CurrentUserID(c), c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	if isNew {
		created(c, "Chat created", view)
		return
	}
	ok(c, view)
}

func (h *Handler) ListChats(c *gin.Context) {
	page, limit := pageParams(c, 20)
	views, total, err := h.svc.ListChats(c.Request.Context(), midsec.CurrentUserID(c), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	okPaged(c, views, pageOf(page, limit, total))
}

func (h *Handler) UnreadTotal(c *gin.Context) {
	n, err := h.svc.UnreadTotal(c.Request.Context(), midsec.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"unread_count": n})
}
