package handler

import (
	"net/http"
	"strconv"

	"EduTalk/logger"
	mid "EduTalk/middleware"
	"EduTalk/module/chat/service"
	"EduTalk/tools/errs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the messaging service over /api/chat. Every route is
// authenticated; the caller is always the verified bearer subject.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func Register(r gin.IRouter, h *Handler) {
	g := r.Group("/api/chat")
	auth := mid.RouteOpt{IsAuth: true}

	mid.POST(g, "/contacts/add", h.AddContact, auth)
	mid.GET(g, "/contacts", h.ListContacts, auth)
	mid.GET(g, "/contacts/search", h.SearchUsers, auth)
	mid.PUT(g, "/contacts/:contactId/favorite", h.ToggleFavorite, auth)
	mid.DELETE(g, "/contacts/:contactId", h.RemoveContact, auth)

	mid.GET(g, "/with/:userId", h.GetOrCreateChat, auth)
	mid.GET(g, "/list", h.ListChats, auth)
	mid.GET(g, "/unread/count", h.UnreadTotal, auth)

	mid.POST(g, "/:chatId/message", h.SendText, auth)
	mid.POST(g, "/:chatId/file", h.SendAttachment, auth)
	mid.GET(g, "/:chatId/messages", h.FetchMessages, auth)
	mid.DELETE(g, "/:chatId/clear", h.ClearChat, auth)
	mid.PUT(g, "/message/:messageId", h.EditMessage, auth)
	mid.DELETE(g, "/message/:messageId", h.DeleteMessage, auth)

	mid.POST(g, "/online", h.SetPresence, auth)
	mid.GET(g, "/online/:userId", h.GetPresence, auth)
}

type pagination struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func pageOf(page, limit, total int64) pagination {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func okMsg(c *gin.Context, msg string, data any) {
	body := gin.H{"success": true, "message": msg}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

func created(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": msg, "data": data})
}

func okPaged(c *gin.Context, data any, p pagination) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": p})
}

func fail(c *gin.Context, err error) {
	codeErr, known := errs.Unpack(err)
	if !known {
		logger.Error("request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
		codeErr = errs.ErrInternalServer
	}
	msg := codeErr.Msg
	if codeErr.Detail != "" {
		msg = codeErr.Detail
	}
	c.JSON(errs.HTTPStatus(codeErr.Code), gin.H{
		"success": false,
		"message": msg,
		"code":    codeErr.Code,
	})
}

func pageParams(c *gin.Context, defLimit int64) (int64, int64) {
	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", defLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func queryInt64(c *gin.Context, key string, def int64) int64 {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
