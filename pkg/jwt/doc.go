// Package jwt issues and verifies HS256-signed JSON Web Tokens.
//
// It wraps [github.com/golang-jwt/jwt/v5] with a small service that fixes the
// signing method, issuer and token lifetime:
//
//	svc, err := jwt.New(os.Getenv("JWT_SECRET"), jwt.WithIssuer("rpcgate"), jwt.WithTTL(time.Hour))
//	if err != nil {
//		return err
//	}
//
//	token, err := svc.Generate(&MyClaims{RegisteredClaims: svc.RegisteredClaims("user-123")})
//
//	var claims MyClaims
//	if err := svc.Parse(token, &claims); err != nil {
//		// errors.Is(err, jwt.ErrExpiredToken), errors.Is(err, jwt.ErrInvalidSignature), ...
//	}
package jwt
