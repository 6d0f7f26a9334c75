package errs

// Error codes are grouped by concern: 1xxx auth, 2xxx request
// validation, 3xxx storage, 9xxx catch-all.
const (
	UnknownCode = 9000

	TokenMissingCode = 1001
	TokenInvalidCode = 1002
	TokenExpiredCode = 1003

	ArgsErrorCode    = 2001
	RecordExistsCode = 3001
	RecordMissCode   = 3002
	NoPermissionCode = 3003
	StoreErrorCode   = 3004
)

var (
	ErrTokenMissing = NewCodeError(TokenMissingCode, "token missing")
	ErrTokenInvalid = NewCodeError(TokenInvalidCode, "token invalid")
	ErrTokenExpired = NewCodeError(TokenExpiredCode, "token expired")

	ErrArgs         = NewCodeError(ArgsErrorCode, "bad request")
	ErrRecordExists = NewCodeError(RecordExistsCode, "record already exists")
	ErrRecordMiss   = NewCodeError(RecordMissCode, "record not found")
	ErrNoPermission = NewCodeError(NoPermissionCode, "no permission")
	ErrStore        = NewCodeError(StoreErrorCode, "storage unavailable")

	ErrInternal = NewCodeError(UnknownCode, "internal error")
)
