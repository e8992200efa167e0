// Package jwt implements a minimal HS256 JSON Web Token codec.
//
// The package intentionally supports a single signing algorithm configured
// at construction time. Tokens are tamper-evident: the signature covers the
// header and every claims field, and verification uses a constant-time
// comparison. Expiry is a logical check performed at parse time via the
// claims' Valid method — callers can distinguish ErrExpiredToken from the
// ErrInvalidToken/ErrInvalidSignature family to produce differentiated
// user-facing messages.
package jwt
