package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/ridebook/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn func(ctx context.Context, name, email, password string) error
	loginFn    func(ctx context.Context, email, password string) (*model.Session, *model.Account, error)
	logoutFn   func(ctx context.Context, token string) error
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) error {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password)
	}
	return nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.Session, *model.Account, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil, model.NewInvalidCredentialsError()
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

// --- テストヘルパー ---

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

// decodeBody はレスポンスボディのJSONオブジェクトをデコードするヘルパー。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v\nraw: %s", err, w.Body.String())
	}
	return result
}

// --- Register ---

func TestAuthHandler_Register_Success(t *testing.T) {
	var gotName, gotEmail, gotPassword string
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, name, email, password string) error {
			gotName, gotEmail, gotPassword = name, email, password
			return nil
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/register",
		jsonBody(t, map[string]string{"name": "Alice", "email": "alice@x.com", "password": "pw"}))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["success"] != "Registered" {
		t.Errorf("success = %v, want %q", body["success"], "Registered")
	}
	if gotName != "Alice" || gotEmail != "alice@x.com" || gotPassword != "pw" {
		t.Errorf("service received (%q, %q, %q)", gotName, gotEmail, gotPassword)
	}
}

func TestAuthHandler_Register_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"入力不足", model.NewInvalidInputError("All fields required"), http.StatusBadRequest, "All fields required"},
		{"メール重複", model.NewDuplicateEmailError(), http.StatusBadRequest, "Email already registered"},
		{"内部エラー", errors.New("disk full"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				registerFn: func(ctx context.Context, name, email, password string) error {
					return tt.err
				},
			}
			h := NewAuthHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/register",
				jsonBody(t, map[string]string{"name": "Alice", "email": "alice@x.com", "password": "pw"}))
			w := httptest.NewRecorder()

			h.Register(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if body := decodeBody(t, w); body["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", body["error"], tt.wantError)
			}
		})
	}
}

func TestAuthHandler_Register_MalformedBody_Returns400(t *testing.T) {
	called := false
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, name, email, password string) error {
			called = true
			return nil
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if body := decodeBody(t, w); body["error"] != "All fields required" {
		t.Errorf("error = %v, want %q", body["error"], "All fields required")
	}
	if called {
		t.Error("service should not be called for malformed body")
	}
}

// --- Login ---

func TestAuthHandler_Login_Success_ReturnsTokenAndName(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.Session, *model.Account, error) {
			return &model.Session{Token: "tok-1", AccountEmail: "alice@x.com"},
				&model.Account{Name: "Alice", Email: "alice@x.com"}, nil
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/login",
		jsonBody(t, map[string]string{"email": "alice@x.com", "password": "pw"}))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["token"] != "tok-1" {
		t.Errorf("token = %v, want %q", body["token"], "tok-1")
	}
	if body["name"] != "Alice" {
		t.Errorf("name = %v, want %q", body["name"], "Alice")
	}
}

func TestAuthHandler_Login_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"入力不足", model.NewInvalidInputError("Email and password needed"), http.StatusBadRequest, "Email and password needed"},
		{"認証情報不一致", model.NewInvalidCredentialsError(), http.StatusUnauthorized, "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				loginFn: func(ctx context.Context, email, password string) (*model.Session, *model.Account, error) {
					return nil, nil, tt.err
				},
			}
			h := NewAuthHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/login",
				jsonBody(t, map[string]string{"email": "alice@x.com", "password": "bad"}))
			w := httptest.NewRecorder()

			h.Login(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if body := decodeBody(t, w); body["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", body["error"], tt.wantError)
			}
		})
	}
}

func TestAuthHandler_Login_MalformedBody_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte("[]")))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if body := decodeBody(t, w); body["error"] != "Email and password needed" {
		t.Errorf("error = %v, want %q", body["error"], "Email and password needed")
	}
}

// --- Logout ---

func TestAuthHandler_Logout_AlwaysSucceeds(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		logoutErr error
		wantToken string
	}{
		{"トークンあり", "tok-1", nil, "tok-1"},
		{"Bearer接頭辞", "Bearer tok-1", nil, "tok-1"},
		{"トークンなし", "", nil, ""},
		{"ストア障害", "tok-1", errors.New("store down"), "tok-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken string
			svc := &mockAuthService{
				logoutFn: func(ctx context.Context, token string) error {
					gotToken = token
					return tt.logoutErr
				},
			}
			h := NewAuthHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/logout", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			h.Logout(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if body := decodeBody(t, w); body["success"] != "Logged out" {
				t.Errorf("success = %v, want %q", body["success"], "Logged out")
			}
			if gotToken != tt.wantToken {
				t.Errorf("token = %q, want %q", gotToken, tt.wantToken)
			}
		})
	}
}
