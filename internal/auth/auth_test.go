package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "rideshare-test"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue(User{ID: "u1", Name: "Ada", Email: "ada@example.com"}, testIssuer, testKey, time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := Parse(pair.AccessToken, testKey, testIssuer)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "u1" || claims.Type != TypeAccess || claims.Name != "Ada" {
		t.Fatalf("claims = %+v", claims)
	}
	if u := claims.User(); u.ID != "u1" || u.Email != "ada@example.com" || u.Picture != "" {
		t.Fatalf("user = %+v", u)
	}

	refresh, err := Parse(pair.RefreshToken, testKey, testIssuer)
	if err != nil || refresh.Type != TypeRefresh {
		t.Fatalf("refresh = %+v, err = %v", refresh, err)
	}
	if !pair.RefreshExp.After(pair.AccessExp) {
		t.Fatal("refresh token should outlive access token")
	}
}

func TestParseRejects(t *testing.T) {
	pair, err := Issue(User{ID: "u1"}, testIssuer, testKey, time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(pair.AccessToken, "other-key", testIssuer); err == nil {
		t.Fatal("wrong key accepted")
	}
	if _, err := Parse(pair.AccessToken, testKey, "someone-else"); err == nil {
		t.Fatal("wrong issuer accepted")
	}
	expired, err := Issue(User{ID: "u1"}, testIssuer, testKey, -time.Minute, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(expired.AccessToken, testKey, testIssuer); err == nil {
		t.Fatal("expired token accepted")
	}
	if _, err := Issue(User{}, testIssuer, testKey, time.Minute, time.Hour); err == nil {
		t.Fatal("empty subject accepted")
	}
}

func TestUserAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", UserAuth(testKey, testIssuer), func(c *gin.Context) {
		claims, _ := ClaimsFrom(c)
		c.String(http.StatusOK, claims.Subject)
	})

	pair, err := Issue(User{ID: "u42"}, testIssuer, testKey, time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"refresh token", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"access token", "bearer " + pair.AccessToken, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			if tc.status == http.StatusOK && w.Body.String() != "u42" {
				t.Fatalf("body = %q", w.Body.String())
			}
		})
	}
}
