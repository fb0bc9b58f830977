package connector

import "errors"

// ErrServiceUnavailable means the call could not reach the backing service
// at all (connection refused, timeout, or the liveness pinger already knows
// it is down). Callers must treat this differently from ErrNotFound: an
// outage must never be reported to a client as "no such user".
var ErrServiceUnavailable = errors.New("connector: service unavailable")

// ErrNotFound means the service was reached and affirmatively said the
// entity does not exist.
var ErrNotFound = errors.New("connector: not found")

// ErrInvalidCredentials means the user service reached and rejected the
// supplied username/password pair.
var ErrInvalidCredentials = errors.New("connector: invalid credentials")
