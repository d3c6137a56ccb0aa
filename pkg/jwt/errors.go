package jwt

import "errors"

var (
	ErrEmptySecret      = errors.New("jwt: empty signing secret")
	ErrInvalidToken     = errors.New("jwt: invalid token")
	ErrExpiredToken     = errors.New("jwt: token expired")
	ErrInvalidSignature = errors.New("jwt: invalid token signature")
	ErrUnexpectedMethod = errors.New("jwt: unexpected signing method")
	ErrGenerationFailed = errors.New("jwt: failed to sign token")
)
