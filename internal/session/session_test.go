package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a client connected to the test Valkey.
// Skips the test if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests to isolate from dev data.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func sessionCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("expected session cookie to be set")
	return nil
}

func TestSessionCreateAndGet(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)

	w := httptest.NewRecorder()
	ctx := context.Background()

	data := &Data{
		UserID:       uuid.New(),
		Email:        "test@session.local",
		DisplayName:  "Test User",
		IsAdmin:      true,
		TwoFAPending: false,
	}

	sessionID, err := store.Create(ctx, w, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sessionID == "" {
		t.Error("expected non-empty session ID")
	}

	cookie := sessionCookieFrom(t, w)
	if cookie.Value != sessionID {
		t.Errorf("cookie value: got %q, want session ID %q", cookie.Value, sessionID)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie SameSite: got %v, want LaxMode", cookie.SameSite)
	}
	if cookie.Secure {
		t.Error("cookie should not be Secure when store is not secure")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	got, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected session data, got nil")
	}
	if got.UserID != data.UserID {
		t.Errorf("UserID: got %v, want %v", got.UserID, data.UserID)
	}
	if got.Email != data.Email || got.DisplayName != data.DisplayName {
		t.Errorf("payload mismatch: %+v", got)
	}
	if !got.IsAdmin || got.TwoFAPending {
		t.Errorf("flags mismatch: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set by Create")
	}
}

func TestSessionSecureCookie(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, true)

	w := httptest.NewRecorder()
	if _, err := store.Create(context.Background(), w, &Data{UserID: uuid.New()}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !sessionCookieFrom(t, w).Secure {
		t.Error("cookie should be Secure when the store is secure")
	}
}

func TestSessionGetWithoutCookie(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	got, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil session without cookie, got %+v", got)
	}
}

func TestSessionGetUnknownID(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "does-not-exist"})

	got, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown session ID, got %+v", got)
	}
}

func TestSessionUpdate(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)
	ctx := context.Background()

	w := httptest.NewRecorder()
	data := &Data{
		UserID:       uuid.New(),
		Email:        "pending@session.local",
		TwoFAPending: true,
	}
	if _, err := store.Create(ctx, w, data); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/2fa/verify", nil)
	req.AddCookie(sessionCookieFrom(t, w))

	data.TwoFAPending = false
	if err := store.Update(ctx, req, data); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.Get(ctx, req)
	if err != nil || got == nil {
		t.Fatalf("Get after Update: %v", err)
	}
	if got.TwoFAPending {
		t.Error("TwoFAPending should be cleared after Update")
	}

	t.Run("update without cookie fails", func(t *testing.T) {
		bare := httptest.NewRequest(http.MethodPost, "/", nil)
		if err := store.Update(ctx, bare, data); err == nil {
			t.Error("expected error updating without a session cookie")
		}
	})
}

func TestSessionDestroy(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)
	ctx := context.Background()

	w := httptest.NewRecorder()
	if _, err := store.Create(ctx, w, &Data{UserID: uuid.New()}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	cookie := sessionCookieFrom(t, w)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)

	w2 := httptest.NewRecorder()
	if err := store.Destroy(ctx, w2, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	// The cookie is expired on the response.
	cleared := sessionCookieFrom(t, w2)
	if cleared.MaxAge != -1 {
		t.Errorf("cleared cookie MaxAge: got %d, want -1", cleared.MaxAge)
	}

	got, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get after Destroy: %v", err)
	}
	if got != nil {
		t.Errorf("session should be gone, got %+v", got)
	}

	t.Run("destroy without cookie is a no-op", func(t *testing.T) {
		bare := httptest.NewRequest(http.MethodPost, "/logout", nil)
		if err := store.Destroy(ctx, httptest.NewRecorder(), bare); err != nil {
			t.Errorf("Destroy without cookie: %v", err)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, err := generateID()
	if err != nil {
		t.Fatalf("generateID: %v", err)
	}
	b, err := generateID()
	if err != nil {
		t.Fatalf("generateID: %v", err)
	}

	if len(a) != idLength*2 {
		t.Errorf("ID length: got %d, want %d hex chars", len(a), idLength*2)
	}
	if a == b {
		t.Error("consecutive IDs should differ")
	}
}
