package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestMintAndVerifyAdminToken(t *testing.T) {
	token, err := MintAdminToken("s3cret", "ops@pawshearts", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := VerifyAdminToken("s3cret", token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "ops@pawshearts" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := VerifyAdminToken("other", token); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestVerifyAdminTokenRejectsExpiredAndNonAdmin(t *testing.T) {
	expired, err := MintAdminToken("s3cret", "ops", time.Minute, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := VerifyAdminToken("s3cret", expired); err == nil {
		t.Fatalf("expected expired token to fail")
	}

	viewer := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, _ := viewer.SignedString([]byte("s3cret"))
	if _, err := VerifyAdminToken("s3cret", signed); err == nil {
		t.Fatalf("expected viewer role to fail")
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{Role: RoleAdmin})
	signed, _ = noExp.SignedString([]byte("s3cret"))
	if _, err := VerifyAdminToken("s3cret", signed); err == nil {
		t.Fatalf("expected token without exp to fail")
	}
}

func TestAdminOnly(t *testing.T) {
	var subject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	token, _ := MintAdminToken("s3cret", "ops", time.Hour, time.Now())

	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{name: "open when secret empty", secret: "", want: http.StatusNoContent},
		{name: "missing header", secret: "s3cret", want: http.StatusUnauthorized},
		{name: "wrong scheme", secret: "s3cret", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "bad token", secret: "s3cret", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid token", secret: "s3cret", header: "Bearer " + token, want: http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			subject = ""
			req := httptest.NewRequest(http.MethodPost, "/v1/pins", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			AdminOnly(tc.secret)(next).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if tc.want == http.StatusUnauthorized && !strings.Contains(rec.Body.String(), `"code":"unauthorized"`) {
				t.Fatalf("unexpected body %s", rec.Body.String())
			}
			if tc.name == "valid token" && subject != "ops" {
				t.Fatalf("subject = %q", subject)
			}
		})
	}
}
