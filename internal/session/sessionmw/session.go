package sessionmw

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/tallow-shop/internal/session"
)

type contextKey string

const SessionIDKey contextKey = "sessionID"

// CookieName — cookie с токеном сессии корзины
const CookieName = "tallow_session"

// NewSessionMiddleware создает middleware сессии корзины: валидный токен из cookie
// переиспользуется, иначе выпускается новая сессия и cookie перезаписывается.
// Ошибкой отсутствие сессии не считается — аноним получает пустую корзину
func NewSessionMiddleware(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string

			if cookie, err := r.Cookie(CookieName); err == nil {
				if parsed, perr := session.ParseToken(cookie.Value); perr == nil {
					sid = parsed
				}
			}

			if sid == "" {
				sid = uuid.NewString()
				token, err := session.NewToken(sid, ttl)
				if err != nil {
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), SessionIDKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext извлекает идентификатор сессии из контекста
func FromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(SessionIDKey).(string)
	return sid, ok
}
