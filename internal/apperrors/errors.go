package apperrors

// ErrorCode is the machine readable code carried by every failed client response.
type ErrorCode string

const (
	ErrCodeNetworkError    ErrorCode = "NETWORK_ERROR"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeCSRFError       ErrorCode = "CSRF_ERROR"
	ErrCodeValidationError ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	ErrCodeAPIError        ErrorCode = "API_ERROR"
)

// FromStatus maps a non-2xx HTTP status to an error code.
// 403 responses are refined to ErrCodeCSRFError by the caller once the message is known.
func FromStatus(status int) ErrorCode {
	switch status {
	case 400:
		return ErrCodeValidationError
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeNotFound
	default:
		return ErrCodeAPIError
	}
}
