package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, input ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func newAuthContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, input ports.RegisterInput) (*domain.User, error) {
			if input.Email != "jean.dupont@example.com" || input.Role != domain.RoleStudent {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.User{
				ID:        "user_1",
				FirstName: input.FirstName,
				LastName:  input.LastName,
				Email:     input.Email,
				Role:      input.Role,
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newAuthContext(http.MethodPost, "/auth/register",
		`{"first_name":"Jean","last_name":"Dupont","email":"jean.dupont@example.com","password":"pass12345","role":"student"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response, got %v", resp)
	}
	if user["email"] != "jean.dupont@example.com" || user["role"] != "student" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not serialize")
	}
}

func TestAuthHandler_Register_ValidationFailures(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("service must not be called on invalid input")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	tests := []struct {
		name string
		body string
	}{
		{"bad email", `{"first_name":"Jean","last_name":"Dupont","email":"nope","password":"pass12345","role":"student"}`},
		{"short password", `{"first_name":"Jean","last_name":"Dupont","email":"a@b.fr","password":"short","role":"student"}`},
		{"unknown role", `{"first_name":"Jean","last_name":"Dupont","email":"a@b.fr","password":"pass12345","role":"root"}`},
		{"missing last name", `{"first_name":"Jean","email":"a@b.fr","password":"pass12345","role":"student"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newAuthContext(http.MethodPost, "/auth/register", tc.body)
			err := h.Register(c)
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
				t.Fatalf("want 400 HTTPError, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newAuthContext(http.MethodPost, "/auth/register",
		`{"first_name":"Jean","last_name":"Dupont","email":"a@b.fr","password":"pass12345","role":"student"}`)

	// Domain errors pass through to the central error handler untouched.
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("want ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (string, *domain.User, error) {
			if email != "jean.dupont@example.com" || password != "pass12345" {
				t.Fatalf("unexpected credentials: %s", email)
			}
			return "signed-token", &domain.User{ID: "user_1", Email: email, Role: domain.RoleStudent}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newAuthContext(http.MethodPost, "/auth/login",
		`{"email":"jean.dupont@example.com","password":"pass12345"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "signed-token" {
		t.Fatalf("token missing from response: %v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newAuthContext(http.MethodPost, "/auth/login",
		`{"email":"jean.dupont@example.com","password":"wrong"}`)

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}
