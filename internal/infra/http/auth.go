package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

// Claims — полезная нагрузка токена доступа.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity возвращает идентичность пользователя. user_id приоритетнее sub.
func (c Claims) Identity() domain.AccountIdentity {
	id := c.UserID
	if id == "" {
		id = c.Subject
	}
	return domain.AccountIdentity{UserID: id, Email: c.Email, FullName: c.Name}
}

// AccountEnsurer создаёт запись пользователя при первом обращении.
type AccountEnsurer interface {
	EnsureAccount(ctx context.Context, id domain.AccountIdentity) (domain.Account, error)
}

type accountKey struct{}

// WithAccount кладёт учётную запись в контекст.
func WithAccount(ctx context.Context, acc domain.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, acc)
}

// AccountFromContext достаёт учётную запись аутентифицированного пользователя.
func AccountFromContext(ctx context.Context) (domain.Account, bool) {
	acc, ok := ctx.Value(accountKey{}).(domain.Account)
	return acc, ok
}

var errMissingToken = errors.New("missing bearer token")

// JWTAuthMiddleware проверяет подпись HS256 токена из заголовка Authorization.
func JWTAuthMiddleware(secret []byte, accounts AccountEnsurer, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ParseToken(secret, r.Header.Get("Authorization"))
			if err != nil {
				writeAuthError(w, "invalid or missing token")
				return
			}
			ident := claims.Identity()
			if ident.UserID == "" {
				writeAuthError(w, "token has no subject")
				return
			}
			acc, err := accounts.EnsureAccount(r.Context(), ident)
			if err != nil {
				logger.Error().Err(err).Str("user_id", ident.UserID).Msg("не удалось получить учётную запись")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "failed to load account", "code": "internal_error"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), acc)))
		})
	}
}

// ParseToken разбирает значение заголовка "Bearer <token>".
func ParseToken(secret []byte, header string) (Claims, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return Claims{}, errMissingToken
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// IssueToken подписывает токен для пользователя.
func IssueToken(secret []byte, ident domain.AccountIdentity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: ident.UserID,
		Email:  ident.Email,
		Name:   ident.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": "unauthorized"})
}
