// Package middleware содержит HTTP middleware сервиса прогрессии.
package middleware

import (
	"crypto/hmac"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// AuthMiddleware проверяет токен доступа из заголовка Authorization.
//
// Пустой токен отключает проверку: локальная установка работает без аутентификации.
type AuthMiddleware struct {
	token []byte
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware с указанным токеном.
func NewAuthMiddleware(token string) *AuthMiddleware {
	return &AuthMiddleware{
		token: []byte(token),
	}
}

// Enabled сообщает, требуется ли токен для доступа к API.
func (a *AuthMiddleware) Enabled() bool {
	return len(a.token) > 0
}

// Middleware пропускает запрос дальше только при совпадении bearer-токена.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok || !hmac.Equal([]byte(token), a.token) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="moneywise"`)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
