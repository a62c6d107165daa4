// Package errs collects the sentinel error kinds named by the remote-signer
// protocol core, so callers can use errors.Is instead of matching strings.
package errs

import "errors"

// Input validation.
var (
	ErrInvalidHex        = errors.New("invalid hex encoding")
	ErrWrongKeyLength    = errors.New("wrong key length")
	ErrMalformedURI      = errors.New("malformed connection uri")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrMissingParameters = errors.New("missing parameters")
)

// Crypto.
var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrNotOnCurve        = errors.New("point is not on the curve")
	ErrAuthFail          = errors.New("nip-44 mac authentication failed")
	ErrPaddingError      = errors.New("invalid nip-44 padding")
	ErrMalformedPayload  = errors.New("malformed encrypted payload")
)

// Protocol.
var (
	ErrUnknownMethod    = errors.New("unknown method")
	ErrRequestNotPending = errors.New("request is not pending")
	ErrSessionNotFound  = errors.New("session not found")
)

// Transport.
var (
	ErrRelayUnavailable   = errors.New("relay unavailable")
	ErrSubscriptionTimeout = errors.New("subscription timeout")
)

// Policy.
var (
	ErrUserRejected = errors.New("user rejected request")
)
