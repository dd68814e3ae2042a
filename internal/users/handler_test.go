package users

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	sharedauth "resume-feedback/internal/shared/auth"
	"resume-feedback/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T) (*gin.Engine, *sharedauth.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := sharedauth.NewTokens("test-secret", "dev", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	h := NewHandler(newTestService(), tokens, false)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterPublicRoutes(api)
	protected := api.Group("")
	protected.Use(middleware.Auth(tokens))
	h.RegisterRoutes(protected)
	return r, tokens
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSignUpIssuesSessionUsableForMe(t *testing.T) {
	r, tokens := newTestRouter(t)

	rec := postJSON(r, "/api/v1/auth/signup", map[string]string{"email": "ada@example.com", "name": "Ada", "password": "correct-horse"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var out sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := tokens.Verify(out.Token)
	if err != nil {
		t.Fatalf("token should verify: %v", err)
	}
	if claims.UserID() != out.User.ID {
		t.Fatalf("token subject %q != user %q", claims.UserID(), out.User.ID)
	}
	if cookies := rec.Result().Cookies(); len(cookies) == 0 || cookies[0].Name != middleware.SessionCookie {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	me := httptest.NewRecorder()
	r.ServeHTTP(me, req)
	if me.Code != http.StatusOK {
		t.Fatalf("expected 200 from /me, got %d", me.Code)
	}
}

func TestSignInRejectsBadPassword(t *testing.T) {
	r, _ := newTestRouter(t)
	postJSON(r, "/api/v1/auth/signup", map[string]string{"email": "ada@example.com", "password": "correct-horse"})

	rec := postJSON(r, "/api/v1/auth/signin", map[string]string{"email": "ada@example.com", "password": "nope-nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = postJSON(r, "/api/v1/auth/signin", map[string]string{"email": "ada@example.com", "password": "correct-horse"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSignUpDuplicateEmailConflicts(t *testing.T) {
	r, _ := newTestRouter(t)
	body := map[string]string{"email": "ada@example.com", "password": "correct-horse"}
	postJSON(r, "/api/v1/auth/signup", body)

	rec := postJSON(r, "/api/v1/auth/signup", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestSignOutRequiresSessionAndClearsCookie(t *testing.T) {
	r, tokens := newTestRouter(t)

	rec := postJSON(r, "/api/v1/auth/signout", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}

	token, err := tokens.Sign(sharedauth.NewClaims("user-1", "", "", ""))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	out := httptest.NewRecorder()
	r.ServeHTTP(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", out.Code)
	}
	cookies := out.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %v", cookies)
	}
}
