package aminokit

import (
	"errors"
	"fmt"
)

var (
	// ErrHandshakeFailed is returned after every gateway handshake attempt failed.
	ErrHandshakeFailed = errors.New("websocket handshake failed")
	// ErrIPTemporaryBan is returned for 403 responses without a JSON body.
	ErrIPTemporaryBan = errors.New("ip temporarily banned (403 forbidden)")
	// ErrHTMLResponse is returned for any other response without a JSON body.
	ErrHTMLResponse = errors.New("unexpected non-JSON response")

	ErrNotLoggedIn     = errors.New("not logged in")
	ErrNoCommunity     = errors.New("no community selected")
	ErrInvalidDeviceID = errors.New("invalid device id")
	ErrInvalidSID      = errors.New("invalid sid")
	ErrInvalidSecret   = errors.New("invalid secret")
)

// Service errors, matched against APIError with errors.Is.
var (
	ErrUnsupportedService       = errors.New("unsupported service")
	ErrFileTooLarge             = errors.New("file too large")
	ErrInvalidRequest           = errors.New("invalid request")
	ErrInvalidSession           = errors.New("invalid session")
	ErrAccessDenied             = errors.New("access denied")
	ErrUnexistentData           = errors.New("unexistent data")
	ErrActionNotAllowed         = errors.New("action not allowed")
	ErrServiceUnderMaintenance  = errors.New("service under maintenance")
	ErrMessageNeeded            = errors.New("message needed")
	ErrInvalidAccountOrPassword = errors.New("invalid account or password")
	ErrAccountDisabled          = errors.New("account disabled")
	ErrInvalidEmail             = errors.New("invalid email")
	ErrInvalidPassword          = errors.New("invalid password")
	ErrEmailAlreadyTaken        = errors.New("email already taken")
	ErrAccountDoesntExist       = errors.New("account does not exist")
	ErrInvalidDevice            = errors.New("invalid device")
	ErrTooManyRequests          = errors.New("too many requests")
	ErrCantFollowYourself       = errors.New("cannot follow yourself")
	ErrUserUnavailable          = errors.New("user unavailable")
	ErrYouAreBanned             = errors.New("you are banned")
	ErrUserNotMemberOfCommunity = errors.New("user is not a member of the community")
	ErrRequestRejected          = errors.New("request rejected")
	ErrActivateAccount          = errors.New("account must be activated")
	ErrCantLeaveCommunity       = errors.New("cannot leave community")
	ErrAccountDeleted           = errors.New("account deleted")
	ErrVerificationRequired     = errors.New("verification required")
	ErrNoLongerExists           = errors.New("requested object no longer exists")
)

var statusErrors = map[int]error{
	100:  ErrUnsupportedService,
	102:  ErrFileTooLarge,
	103:  ErrInvalidRequest,
	104:  ErrInvalidRequest,
	105:  ErrInvalidSession,
	106:  ErrAccessDenied,
	107:  ErrUnexistentData,
	110:  ErrActionNotAllowed,
	111:  ErrServiceUnderMaintenance,
	113:  ErrMessageNeeded,
	200:  ErrInvalidAccountOrPassword,
	210:  ErrAccountDisabled,
	213:  ErrInvalidEmail,
	214:  ErrInvalidPassword,
	215:  ErrEmailAlreadyTaken,
	216:  ErrAccountDoesntExist,
	218:  ErrInvalidDevice,
	219:  ErrTooManyRequests,
	221:  ErrCantFollowYourself,
	225:  ErrUserUnavailable,
	229:  ErrYouAreBanned,
	230:  ErrUserNotMemberOfCommunity,
	235:  ErrRequestRejected,
	238:  ErrActivateAccount,
	239:  ErrCantLeaveCommunity,
	246:  ErrAccountDeleted,
	270:  ErrVerificationRequired,
	1600: ErrNoLongerExists,
}

// StatusError returns the sentinel error for a service status code, or nil.
func StatusError(code int) error {
	return statusErrors[code]
}

// APIError is a service error reported in a JSON response body.
type APIError struct {
	HTTPStatus int
	// Code is the "api:statuscode" field of the body.
	Code int
	// Message is the "api:message" field of the body.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amino api error %d (http %d): %s", e.Code, e.HTTPStatus, e.Message)
}

// Unwrap returns the sentinel matching Code so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	return StatusError(e.Code)
}

// TransportError is a failure below the service protocol: a response that is
// not JSON, or a request that never got a response.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("amino transport error: %v", e.Err)
	}
	return fmt.Sprintf("amino transport error (http %d): %v", e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
