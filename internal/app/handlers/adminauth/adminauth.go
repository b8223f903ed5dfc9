package adminauth

import (
	"crypto/subtle"
	"net/http"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// NewAdminMiddleware закрывает операторские эндпоинты HTTP Basic-аутентификацией.
// Пароль сравнивается с bcrypt-хэшем из переменной окружения ADMIN_PASSWORD_HASH
func NewAdminMiddleware(username string) func(http.Handler) http.Handler {
	passHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if passHash == "" {
		panic("ADMIN_PASSWORD_HASH is not set")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}
			if subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 {
				unauthorized(w)
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(passHash), []byte(pass)); err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="orders"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
