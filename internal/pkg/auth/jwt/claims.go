package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims carried by a dmchat identity token.
// The token is stateless: there is no server-side session or revocation
// list, so the claims alone prove who the bearer is.
type Payload struct {
	// StandardClaims embeds the JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer), used for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// Name is the unique user name of the token subject. Every gated REST
	// request and every realtime join derives its caller identity from
	// this field after signature verification.
	Name string `json:"name"`
}
