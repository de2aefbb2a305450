package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

type stubEnsurer struct {
	got domain.AccountIdentity
	err error
}

func (s *stubEnsurer) EnsureAccount(_ context.Context, id domain.AccountIdentity) (domain.Account, error) {
	s.got = id
	if s.err != nil {
		return domain.Account{}, s.err
	}
	return domain.Account{UserID: id.UserID, Email: id.Email, AccountType: domain.AccountTypeFree}, nil
}

func TestJWTAuthMiddleware(t *testing.T) {
	secret := []byte("secret")
	valid, err := IssueToken(secret, domain.AccountIdentity{UserID: "u1", Email: "a@b.c"}, time.Hour)
	if err != nil {
		t.Fatalf("не удалось выпустить токен: %v", err)
	}
	foreign, _ := IssueToken([]byte("other"), domain.AccountIdentity{UserID: "u1"}, time.Hour)
	expired, _ := IssueToken(secret, domain.AccountIdentity{UserID: "u1"}, -time.Hour)

	tests := []struct {
		name   string
		header string
		err    error
		want   int
	}{
		{name: "валидный токен", header: "Bearer " + valid, want: http.StatusOK},
		{name: "без заголовка", header: "", want: http.StatusUnauthorized},
		{name: "чужая подпись", header: "Bearer " + foreign, want: http.StatusUnauthorized},
		{name: "истёкший", header: "Bearer " + expired, want: http.StatusUnauthorized},
		{name: "ошибка хранилища", header: "Bearer " + valid, err: errors.New("db down"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ensurer := &stubEnsurer{err: tt.err}
			var seen domain.Account
			h := JWTAuthMiddleware(secret, ensurer, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = AccountFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("ожидали %d, получили %d", tt.want, rec.Code)
			}
			if tt.want == http.StatusOK && seen.UserID != "u1" {
				t.Fatalf("в контексте нет пользователя: %+v", seen)
			}
		})
	}
}

func TestClaimsIdentityFallsBackToSubject(t *testing.T) {
	var c Claims
	c.Subject = "sub-1"
	if got := c.Identity().UserID; got != "sub-1" {
		t.Fatalf("ожидали sub-1, получили %q", got)
	}
	c.UserID = "uid"
	if got := c.Identity().UserID; got != "uid" {
		t.Fatalf("ожидали uid, получили %q", got)
	}
}
