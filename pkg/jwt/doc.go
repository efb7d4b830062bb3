// Package jwt signs and validates the RS256 access tokens of the Cigno Platform.
//
// # Token Generation
//
//	service, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "./keys/private.pem",
//	    Issuer:         "cigno-platform",
//	    ExpirationMins: 60,
//	})
//
//	token, err := service.Sign(jwt.Claims{UserID: user.ID, Email: user.Email, Role: "user"})
//
// # Token Validation
//
//	claims, err := service.Validate(token)
//	if errors.Is(err, jwt.ErrTokenExpired) {
//	    // ask the client to log in again
//	}
//
// Keys are generated with GenerateKeyPair or openssl. A service built from a
// public key alone validates tokens but cannot sign them.
package jwt
