package codec

import "errors"

// Sentinel errors for protocol-fatal conditions (see error taxonomy in
// the design notes: bad magic and oversize frames close the socket).
var (
	ErrBadMagic       = errors.New("codec: bad magic byte")
	ErrOversizeBody   = errors.New("codec: body exceeds maximum size")
	ErrMalformedFrame = errors.New("codec: malformed frame")
	ErrUnknownOpcode  = errors.New("codec: unknown opcode")
	ErrTruncated      = errors.New("codec: truncated payload")
)
