package domain

import "time"

const ProviderGoogle = "google"

// Credential is how an account proves its identity. It is sealed: the only
// implementations are PasswordCredential and ExternalCredential.
type Credential interface {
	credential()
}

// PasswordCredential belongs to a locally registered account.
type PasswordCredential struct {
	Hash string
}

// ExternalCredential belongs to an account created through identity
// federation. It carries no password and cannot be used on the password path.
type ExternalCredential struct {
	Provider string
}

func (PasswordCredential) credential() {}
func (ExternalCredential) credential() {}

// User models an account holder.
type User struct {
	ID         string
	Name       string
	Email      string
	Credential Credential
	ResetToken string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PasswordHash returns the stored hash when the account has a password.
func (u *User) PasswordHash() (string, bool) {
	pc, ok := u.Credential.(PasswordCredential)
	if !ok || pc.Hash == "" {
		return "", false
	}
	return pc.Hash, true
}

// AuthProvider names the way the account signs in: "password" or the
// federated provider id.
func (u *User) AuthProvider() string {
	switch c := u.Credential.(type) {
	case PasswordCredential:
		return "password"
	case ExternalCredential:
		return c.Provider
	default:
		return ""
	}
}

// ExternalIdentity holds the verified claims of a federated assertion.
type ExternalIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}
