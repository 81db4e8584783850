package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrRoleDenied       ErrCode = "ROLE_DENIED"
	ErrWrongUniversity  ErrCode = "WRONG_UNIVERSITY"
	ErrAccountSuspended ErrCode = "ACCOUNT_SUSPENDED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidOption  ErrCode = "INVALID_ANSWER_OPTION"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Quiz sessions ─────────────────────────────────────────────────
	ErrNoSession          ErrCode = "NO_SESSION"
	ErrSessionNotStarted  ErrCode = "SESSION_NOT_STARTED"
	ErrSessionNotActive   ErrCode = "SESSION_NOT_ACTIVE"
	ErrSessionTerminal    ErrCode = "SESSION_ALREADY_FINISHED"
	ErrUnknownQuestion    ErrCode = "UNKNOWN_QUESTION"
	ErrQuestionSetMissing ErrCode = "QUESTION_SET_MISSING"

	// ─── Licensing ─────────────────────────────────────────────────────
	ErrNoLicensePackage  ErrCode = "NO_ACTIVE_LICENSE_PACKAGE"
	ErrLicensesExhausted ErrCode = "LICENSES_EXHAUSTED"
	ErrEmailTaken        ErrCode = "EMAIL_ALREADY_REGISTERED"
	ErrUsernameTaken     ErrCode = "USERNAME_ALREADY_TAKEN"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionActive:
		return "You are already signed in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrRoleDenied:
		return "Your role does not allow this action."
	case ErrWrongUniversity:
		return "This resource belongs to another university."
	case ErrAccountSuspended:
		return "This university account is suspended."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidOption:
		return "The selected answer must be one of A, B, C or D."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Quiz sessions ─────────────────────────────────────────────────
	case ErrNoSession:
		return "No quiz session is available for you right now."
	case ErrSessionNotStarted:
		return "The quiz session has not been started yet."
	case ErrSessionNotActive:
		return "The quiz session is not active."
	case ErrSessionTerminal:
		return "The quiz session has already finished."
	case ErrUnknownQuestion:
		return "The question does not belong to this quiz."
	case ErrQuestionSetMissing:
		return "No questions are available for this quiz."

	// ─── Licensing ─────────────────────────────────────────────────────
	case ErrNoLicensePackage:
		return "No active license package was found for this university."
	case ErrLicensesExhausted:
		return "No licenses remain in the active package."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrUsernameTaken:
		return "This username is already taken."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
