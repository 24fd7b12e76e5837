// Package errors provides custom error types and definitions for the application.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the caller's fault,
// and they return HTTP Status 400, 401, 403, 404 or 409, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the
// current last 4XXX or 5XXX. If you notice there's a gap, that code was used in
// the past for some error (not anymore) and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	// Authentication errors (401/403)
	ErrUnauthorized       = Error{Code: 40001, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("authentication required"), LogLevel: "info"}
	ErrNotAdministrator   = Error{Code: 40002, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("caller is not the administrator"), LogLevel: "info"}
	ErrInvalidSignature   = Error{Code: 40003, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("signature verification failed"), LogLevel: "info"}
	ErrChallengeNotValid  = Error{Code: 40004, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("challenge unknown or expired"), LogLevel: "info"}

	// Validation errors (400)
	ErrMalformedBody         = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON request body")}
	ErrMalformedURLParam     = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid URL parameter")}
	ErrEmptyPollTitle        = Error{Code: 40007, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("poll title is empty")}
	ErrNoChoices             = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("no choices provided")}
	ErrBlankChoiceLabel      = Error{Code: 40009, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("choice label is blank")}
	ErrChoiceIndexOutOfRange = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("choice index out of range")}
	ErrEmptyWhitelist        = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("whitelist is empty")}
	ErrInvalidIdentity       = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid identity address")}
	ErrInvalidData           = Error{Code: 40013, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid data provided")}

	// Lifecycle errors (409)
	ErrElectionActive    = Error{Code: 40014, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election is active")}
	ErrElectionNotActive = Error{Code: 40015, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election is not active")}

	// Start preconditions (400)
	ErrNoVoters = Error{Code: 40016, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("no whitelisted voters")}

	// Vote rejections (403/409)
	ErrNotWhitelisted = Error{Code: 40017, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("identity is not whitelisted"), LogLevel: "info"}
	ErrAlreadyVoted   = Error{Code: 40018, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("identity already voted in this election"), LogLevel: "info"}

	// Server errors (500) - These should be used sparingly and only for true internal errors
	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: failed to process response"), LogLevel: "error"}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: operation failed"), LogLevel: "error"}
	ErrInternalStorageError       = Error{Code: 50003, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: storage operation failed"), LogLevel: "error"}
)
