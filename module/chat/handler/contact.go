package handler

import (
	midsec "EduTalk/middleware/security"
	"EduTalk/module/chat/service"
	"EduTalk/tools/errs"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AddContact(c *gin.Context) {
	var in service.AddContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, errs.ErrArgs.WrapMsg("invalid body"))
		return
	}
	id, contact, err := h.svc.AddContact(c.Request.Context(), midsec.CurrentUserID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "Contact added", gin.H{"id": id, "contact": contact})
}

func (h *Handler) ListContacts(c *gin.Context) {
	out, err := h.svc.ListContacts(c.Request.Context(), midsec.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

func (h *Handler) SearchUsers(c *gin.Context) {
	out, err := h.svc.SearchUsers(c.Request.Context(), midsec.CurrentUserID(c), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

func (h *Handler) ToggleFavorite(c *gin.Context) {
	fav, err := h.svc.ToggleFavorite(c.Request.Context(), midsec.CurrentUserID(c), c.Param("contactId"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"is_favorite": fav})
}

func (h *Handler) RemoveContact(c *gin.Context) {
	err := h.svc.RemoveContact(c.Request.Context(), midsec.CurrentUserID(c), c.Param("contactId"))
	if err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "Contact removed", nil)
}
