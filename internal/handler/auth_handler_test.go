package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/libman/internal/auth"
	"github.com/hitoshi/libman/internal/model"
)

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFunc func(ctx context.Context, email, password, name string) (*model.User, error)
	loginFunc    func(ctx context.Context, email, password string) (*auth.LoginResult, error)
	meFunc       func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, email, password, name)
	}
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	if m.meFunc != nil {
		return m.meFunc(ctx, userID)
	}
	return nil, nil
}

// TestAuthHandler_Register は登録成功のレスポンスを検証する。
func TestAuthHandler_Register(t *testing.T) {
	service := &mockAuthService{
		registerFunc: func(ctx context.Context, email, password, name string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, Name: name, Role: model.RoleUser}, nil
		},
	}
	h := NewAuthHandler(service)

	body := `{"email":"taro@example.com","password":"password123","name":"太郎"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp userResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}
	if resp.Email != "taro@example.com" || resp.Role != model.RoleUser {
		t.Errorf("resp = %+v", resp)
	}
	// パスワードハッシュが露出していないこと
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("レスポンスにパスワード関連フィールドが含まれている")
	}
}

// TestAuthHandler_Register_EmailTaken はメール重複で409が返ることを検証する。
func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	service := &mockAuthService{
		registerFunc: func(ctx context.Context, email, password, name string) (*model.User, error) {
			return nil, model.NewEmailTakenError()
		},
	}
	h := NewAuthHandler(service)

	body := `{"email":"taro@example.com","password":"password123","name":"太郎"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

// TestAuthHandler_Register_InvalidBody は不正なJSONで400が返ることを検証する。
func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{invalid")))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestAuthHandler_Login はログイン成功のレスポンスを検証する。
func TestAuthHandler_Login(t *testing.T) {
	service := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (*auth.LoginResult, error) {
			return &auth.LoginResult{
				Token: "signed-token",
				User:  &model.User{ID: "user-1", Email: email, Role: model.RoleUser},
			}, nil
		},
	}
	h := NewAuthHandler(service)

	body := `{"email":"taro@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp loginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}
	if resp.Token != "signed-token" {
		t.Errorf("token = %q, want signed-token", resp.Token)
	}
	if resp.User.ID != "user-1" {
		t.Errorf("user.id = %q, want user-1", resp.User.ID)
	}
}

// TestAuthHandler_Login_InvalidCredentials は認証失敗で401が返ることを検証する。
func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	service := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (*auth.LoginResult, error) {
			return nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(service)

	body := `{"email":"taro@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
