/*
auth.go - Shared-password gate

PURPOSE:
  The ledger is a single-team tool; access control is one shared password,
  not per-user accounts. Clients send it in the X-Access-Password header
  and the middleware checks it against a bcrypt hash. With no hash
  configured the gate is open (local/dev use).
*/
package api

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// PasswordGate rejects requests whose X-Access-Password header does not
// match the configured bcrypt hash. An empty hash disables the gate.
func PasswordGate(passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if passwordHash == "" {
				next.ServeHTTP(w, r)
				return
			}
			password := r.Header.Get("X-Access-Password")
			if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
				writeError(w, http.StatusUnauthorized, "Invalid password", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HashPassword produces the bcrypt hash stored in settings.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}
