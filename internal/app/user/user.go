/*
Package user implements the credential store: durable user records with
hashed secrets, registration with atomic name uniqueness, and credential
verification.
*/
package user

// User is a registered account. The password hash never leaves the package
// boundary in any serialized form.
type User struct {
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
}

// Summary is the client-visible projection of a user, stripped of all
// secret material. The contact list is a list of these.
type Summary struct {
	Name string `json:"name"`
}
