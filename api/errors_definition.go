//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400 or 404 (or even 204), whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX.
// If you notice there's a gap, DON'T fill it in; that code was used in the past and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	ErrResourceNotFound      = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody         = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrMalformedPoolVersion  = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed pool version")}
	ErrMalformedParam        = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed URL parameter")}
	ErrActionNotFound        = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("action not found")}
	ErrInvalidProof          = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid proof")}
	ErrNullifierReused       = Error{Code: 40009, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("nullifier already consumed")}
	ErrStaleRoot             = Error{Code: 40010, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("stale registry root")}
	ErrBindingMismatch       = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("action binding mismatch")}
	ErrDepositsClosed        = Error{Code: 40012, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("pool is redeem-only")}
	ErrMixWindowNotElapsed   = Error{Code: 40013, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("note still inside the mix window")}
	ErrStrictModeViolation   = Error{Code: 40014, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("strict mode violation")}
	ErrUnauthorized          = Error{Code: 40015, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("caller is not the admin")}
	ErrActionAlreadySettled  = Error{Code: 40016, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("action already settled")}
	ErrMalformedCallerHeader = Error{Code: 40017, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed caller address header")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrExecutorUnavailable        = Error{Code: 50003, HTTPstatus: http.StatusServiceUnavailable, Err: fmt.Errorf("executor failure, retry later")}
)
