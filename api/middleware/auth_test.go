package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/satriaputra/tokopos-backend/pkg/auth"
	"github.com/satriaputra/tokopos-backend/pkg/config"
	"github.com/satriaputra/tokopos-backend/pkg/enums"
)

func jwtConfigForTest() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "middleware-secret",
		Issuer:            "tokopos-test",
		ExpirationMinutes: 15,
	}
}

func TestAuthMiddlewareSeedsContext(t *testing.T) {
	cfg := jwtConfigForTest()
	userID := uuid.New()
	storeID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:  userID,
		StoreID: storeID,
		Role:    enums.MemberRoleCashier,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var gotUser, gotStore, gotRole string
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotStore = StoreIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotUser != userID.String() {
		t.Fatalf("unexpected user id %q", gotUser)
	}
	if gotStore != storeID.String() {
		t.Fatalf("unexpected store id %q", gotStore)
	}
	if gotRole != string(enums.MemberRoleCashier) {
		t.Fatalf("unexpected role %q", gotRole)
	}
}

func TestAuthMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	cfg := jwtConfigForTest()
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	missing := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, missing)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing header got %d", resp.Code)
	}

	forged := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	forged.Header.Set("Authorization", "Bearer not-a-token")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, forged)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token got %d", resp.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	allowed := RequireRoles(nil, enums.MemberRoleOwner, enums.MemberRoleAdmin)

	run := func(role string) int {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/transactions/x/status", nil)
		if role != "" {
			req = req.WithContext(WithRole(req.Context(), role))
		}
		resp := httptest.NewRecorder()
		allowed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(resp, req)
		return resp.Code
	}

	if code := run(string(enums.MemberRoleAdmin)); code != http.StatusNoContent {
		t.Fatalf("admin should pass, got %d", code)
	}
	if code := run(string(enums.MemberRoleCashier)); code != http.StatusForbidden {
		t.Fatalf("cashier should be forbidden, got %d", code)
	}
	if code := run(""); code != http.StatusUnauthorized {
		t.Fatalf("missing role should be unauthorized, got %d", code)
	}
}
