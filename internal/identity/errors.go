// Package identity authenticates guardians. Two providers exist: a local
// email/password provider and an OIDC verifier for external issuers. Both
// yield the opaque account identity the rest of the system keys on.
package identity

import "fmt"

// AuthCode classifies authentication failures. Auth errors are never fatal:
// they surface as short human-readable messages and the user retries by
// re-submitting the form.
type AuthCode string

const (
	CodeInvalidCredential AuthCode = "invalid_credential"
	CodeEmailInUse        AuthCode = "email_in_use"
	CodeWeakPassword      AuthCode = "weak_password"
	CodeInvalidEmail      AuthCode = "invalid_email"
	CodePopupClosed       AuthCode = "popup_closed"
	CodeUnknown           AuthCode = "unknown"
)

// AuthError carries a classification code plus the message shown to the user.
type AuthError struct {
	Code    AuthCode
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s: %s", e.Code, e.Message)
}

func authErr(code AuthCode, msg string) *AuthError {
	return &AuthError{Code: code, Message: msg}
}

// AsAuthError unwraps err into an AuthError, mapping unrecognized errors to
// CodeUnknown so handlers always have something presentable.
func AsAuthError(err error) *AuthError {
	if ae, ok := err.(*AuthError); ok {
		return ae
	}
	return authErr(CodeUnknown, "something went wrong, please try again")
}
