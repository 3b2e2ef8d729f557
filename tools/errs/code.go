package errs

import "net/http"

// Stable business codes: 5xx server, 1xxx general request faults,
// 15xx token.
const (
	ServerInternalError = 500

	ArgsError           = 1001
	NoPermissionError   = 1002
	DuplicateKeyError   = 1003
	RecordNotFoundError = 1004

	TokenExpiredError   = 1501
	TokenInvalidError   = 1503
	TokenNotExistError  = 1507
)

var (
	ErrInternalServer = NewCodeError(ServerInternalError, "server error")
	ErrArgs           = NewCodeError(ArgsError, "args error")
	ErrNoPermission   = NewCodeError(NoPermissionError, "no permission")
	ErrDuplicateKey   = NewCodeError(DuplicateKeyError, "duplicate record")
	ErrRecordNotFound = NewCodeError(RecordNotFoundError, "record not found")

	ErrTokenExpired  = NewCodeError(TokenExpiredError, "token expired")
	ErrTokenInvalid  = NewCodeError(TokenInvalidError, "token invalid")
	ErrTokenNotExist = NewCodeError(TokenNotExistError, "token required")
)

// HTTPStatus maps a business code to the transport status. Unknown
// codes are treated as internal faults.
func HTTPStatus(code int) int {
	switch code {
	case ArgsError:
		return http.StatusBadRequest
	case NoPermissionError:
		return http.StatusForbidden
	case DuplicateKeyError:
		return http.StatusConflict
	case RecordNotFoundError:
		return http.StatusNotFound
	case TokenExpiredError, TokenInvalidError, TokenNotExistError:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
