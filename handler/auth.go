package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"inkwell/domain"
	"inkwell/store"
)

var errUnauthorized = errors.New("missing or invalid admin session")

// adminUser identifies the administrator resolved from a request's session
// cookie. Handlers obtain one before touching the post store.
type adminUser struct {
	ID    string
	Email string
}

// adminSession resolves the Authorization cookie to the administrator, or
// fails with errUnauthorized. Any account other than the configured admin is
// rejected even when its token is valid.
func (h *Handler) adminSession(c echo.Context) (adminUser, error) {
	if h.JWTSecret == "" {
		return adminUser{}, errUnauthorized
	}

	cookie, err := c.Cookie("Authorization")
	if err != nil {
		return adminUser{}, errUnauthorized
	}

	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		// SigningMethodHMAC implements the HMAC-SHA family of signing methods.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(h.JWTSecret), nil
	})
	if err != nil {
		return adminUser{}, errUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return adminUser{}, errUnauthorized
	}

	expiration, ok := claims["expiration"].(float64)
	if !ok || time.Now().After(time.Unix(int64(expiration), 0)) {
		return adminUser{}, errUnauthorized
	}

	userID, _ := claims["userID"].(string)
	email, _ := claims["email"].(string)
	if userID == "" || h.AdminEmail == "" || email != h.AdminEmail {
		return adminUser{}, errUnauthorized
	}

	return adminUser{ID: userID, Email: email}, nil
}

// rejectUnauthorized sends browsers to the login form and gives everything
// else a plain 401.
func rejectUnauthorized(c echo.Context) error {
	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML) {
		return c.Redirect(http.StatusFound, "/login")
	}

	return echo.NewHTTPError(http.StatusUnauthorized, "admin session required")
}

func (h *Handler) Login(c echo.Context) error {
	formUsername := c.FormValue("username")
	formPassword := c.FormValue("password")

	if len(formUsername) == 0 || len(formPassword) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	user, storedHash, err := h.Users.GetByUsername(c.Request().Context(), formUsername)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "wrong username or password")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(formPassword)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "wrong username or password")
	}

	cookie, err := authorizationCookie(user.ID, user.Email, h.JWTSecret)
	if err != nil {
		return err
	}

	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/posts/admin")
}

func (h *Handler) NewUser(c echo.Context) error {
	if h.Environment != "dev" && !h.EnableSignup {
		return echo.NewHTTPError(http.StatusForbidden, "sign up has been disabled")
	}

	user := domain.User{
		ID:       uuid.NewString(),
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
	}
	password := c.FormValue("password")
	if user.Username == "" || password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := h.Users.Create(c.Request().Context(), user, string(hashedPassword)); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return echo.NewHTTPError(http.StatusConflict, "username already taken")
		}
		return err
	}

	cookie, err := authorizationCookie(user.ID, user.Email, h.JWTSecret)
	if err != nil {
		return err
	}

	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/posts/admin")
}

func (h *Handler) Logout(c echo.Context) error {
	cookie := new(http.Cookie)
	cookie.Name = "Authorization"
	cookie.Value = ""
	cookie.Path = "/"
	cookie.Expires = time.Now().Add(-1 * time.Second)

	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/")
}

func authorizationCookie(id, email, secret string) (*http.Cookie, error) {
	if secret == "" {
		return nil, errors.New("missing secret")
	}

	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["userID"] = id
	claims["email"] = email
	exp := time.Now().Add(time.Hour * 24 * 7)
	claims["expiration"] = exp.Unix()
	signedData, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	cookie := new(http.Cookie)
	cookie.Name = "Authorization"
	cookie.Value = signedData
	cookie.Expires = exp
	cookie.Path = "/"
	cookie.HttpOnly = true

	return cookie, nil
}
