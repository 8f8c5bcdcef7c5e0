package httputil

// Machine-readable error codes returned alongside error messages so
// clients can branch without parsing human-facing text.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeValidationFailed   = "validation_failed"
	CodeInternalError      = "internal_error"
	CodeTooManyRequests    = "too_many_requests"
	CodeCooldownActive     = "cooldown_active"

	CodeMissingAuth         = "missing_authentication"
	CodeInvalidAuthHeader   = "invalid_auth_header"
	CodeInvalidToken        = "invalid_token"
	CodeTokenExpired        = "token_expired"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeAccountNotConfirmed = "account_not_confirmed"
	CodeAlreadyConfirmed    = "already_confirmed"

	CodeEmailAlreadyExists = "email_already_exists"
	CodeUserNotFound       = "user_not_found"
	CodeProjectNotFound    = "project_not_found"
	CodeTaskNotFound       = "task_not_found"
	CodeNoteNotFound       = "note_not_found"
	CodeCodeNotFound       = "code_not_found"

	CodeInvalidAction = "invalid_action"
	CodeManagerOnTeam = "manager_cannot_join_team"
	CodeAlreadyOnTeam = "already_on_team"
	CodeNotOnTeam     = "not_on_team"
	CodeInvalidStatus = "invalid_status"
)
