package security

import (
	"net/http"
	"strings"

	"EduTalk/tools/errs"
	jwtlib "EduTalk/tools/security"

	"github.com/gin-gonic/gin"
)

// CtxUserIDKey is where the verified subject lands in the gin context.
const CtxUserIDKey = "currentUserID"

type Options struct {
	JWT jwtlib.Options
}

// Middleware resolves the bearer credential and aborts with 401 when
// it is missing, malformed or expired.
func Middleware(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader("Authorization"))
		if strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = strings.TrimSpace(token[len("bearer "):])
		}
		if token == "" {
			abortWith(c, errs.ErrTokenNotExist)
			return
		}

		userID, err := jwtlib.Verify(opts.JWT, token)
		if err != nil {
			if codeErr, ok := errs.Unpack(err); ok {
				abortWith(c, codeErr)
			} else {
				abortWith(c, errs.ErrTokenInvalid)
			}
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}

// CurrentUserID reads the subject set by Middleware.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(CtxUserIDKey)
	s, _ := v.(string)
	return s
}

func abortWith(c *gin.Context, e errs.CodeError) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": e.Msg,
		"code":    e.Code,
	})
}
