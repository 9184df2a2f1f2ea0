// internal/platform/users.go
package platform

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// User — запись пользователя в backend'е.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserRequest повторяет админскую форму создания пользователя.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserRequest несёт только изменяемые поля; nil-указатели в payload
// не попадают.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

// CurrentUser возвращает собственную запись аутентифицированного пользователя.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &u)
	return u, err
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.do(ctx, http.MethodGet, "/users/", nil, nil, &users)
	return users, err
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (User, error) {
	var u User
	err := c.do(ctx, http.MethodPost, "/users/", nil, req, &u)
	return u, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (User, error) {
	var u User
	err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, req, &u)
	return u, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
}
