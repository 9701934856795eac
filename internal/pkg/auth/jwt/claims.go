package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for linkhub sessions.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the stable user ID. It survives renames, so it is the only identity the server trusts.
	ID string `json:"id"`

	// Username is the name at issue time, for logs and display only.
	Username string `json:"username"`
}
