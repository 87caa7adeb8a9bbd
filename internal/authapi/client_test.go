package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestServer serves handler and returns a client pointed at it.
func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 0)
}

func TestLogin_Success(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %s", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body["email"] != "alice@example.com" || body["password"] != "secret-123" {
			t.Errorf("unexpected body %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","expires_in":3600}`))
	})

	resp, err := client.Login(context.Background(), "alice@example.com", "secret-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AccessToken != "tok-1" {
		t.Errorf("expected tok-1, got %s", resp.AccessToken)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("expected 3600, got %d", resp.ExpiresIn)
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
	})

	_, err := client.Login(context.Background(), "alice@example.com", "wrong")
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if !apiErr.Unauthorized() {
		t.Errorf("expected unauthorized, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Unauthorized" {
		t.Errorf("expected message from error field, got %q", apiErr.Message)
	}
}

func TestLogin_MissingToken(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
	})

	if _, err := client.Login(context.Background(), "a@example.com", "x"); !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}

func TestRegister_Success(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/register" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "Alice" {
			t.Errorf("expected name Alice, got %q", body["name"])
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"status": "success",
			"user": {"id": 7, "name": "Alice", "email": "alice@example.com", "created_at": "2024-05-01T10:00:00Z"},
			"authorization": {"token": "tok-reg", "type": "bearer"}
		}`))
	})

	resp, err := client.Register(context.Background(), "Alice", "alice@example.com", "secret-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Authorization.Token != "tok-reg" {
		t.Errorf("expected tok-reg, got %s", resp.Authorization.Token)
	}
	if resp.User == nil || resp.User.ID != 7 || resp.User.Email != "alice@example.com" {
		t.Errorf("unexpected user %+v", resp.User)
	}
	if resp.User.CreatedAt == nil {
		t.Error("expected created_at to be parsed")
	}
}

func TestRegister_ValidationError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":{"email":["The email has already been taken."]}}`))
	})

	_, err := client.Register(context.Background(), "Alice", "taken@example.com", "secret-123")
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if !apiErr.IsValidation() {
		t.Errorf("expected validation error, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "The email has already been taken." {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestMe_SendsBearerToken(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/auth/me" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected bearer header, got %q", got)
		}
		_, _ = w.Write([]byte(`{"id": 1, "name": "Alice", "email": "alice@example.com", "role": "admin"}`))
	})

	user, err := client.Me(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Name != "Alice" {
		t.Errorf("expected Alice, got %s", user.Name)
	}
}

func TestMe_ServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Me(context.Background(), "tok-1")
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "" {
		t.Errorf("expected no message for a plain-text body, got %q", apiErr.Message)
	}
	if apiErr.Body != "boom" {
		t.Errorf("expected raw body kept, got %q", apiErr.Body)
	}
}

func TestMe_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := New(srv.URL, 0)
	srv.Close()

	_, err := client.Me(context.Background(), "tok-1")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if _, ok := AsError(err); ok {
		t.Error("transport failures must not look like upstream responses")
	}
}
