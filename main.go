package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/acme/autocert"
	_ "modernc.org/sqlite"

	"inkwell/handler"
	"inkwell/store"
)

const DEV_ENV = "dev"
const PRO_ENV = "pro"

func main() {
	env := os.Getenv("ENV")
	if env == "" {
		env = PRO_ENV
	}

	fmt.Println("Running database schema migrations...")
	db, err := setupDB()
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No database schema migration ran. Database schema already in latest version")
		} else {
			fmt.Printf("Error during database schema migration: %v", err)
		}
	}
	JWTSecret, err := fetchSecret(env)
	if err != nil {
		panic(err)
	}
	adminEmail, err := fetchAdminEmail(env)
	if err != nil {
		panic(err)
	}

	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	h := handler.Handler{
		Posts:        store.NewPostStore(db),
		Users:        store.NewUserStore(db),
		JWTSecret:    JWTSecret,
		AdminEmail:   adminEmail,
		EnableSignup: os.Getenv("ENABLE_SIGNUP") == "true",
		Environment:  env,
	}

	// Public surface
	e.GET("/posts/:slug", h.GetPost)
	e.POST("/login", h.Login)
	e.POST("/signup", h.NewUser)
	e.GET("/logout", h.Logout)

	// Admin surface: the JWT middleware bounces anonymous requests early,
	// the handlers still resolve the session themselves to check the admin
	// identity.
	admin := e.Group("/posts/admin", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(JWTSecret),
		TokenLookup: "cookie:Authorization",
	}))
	admin.GET("", h.AdminListPosts)
	admin.GET("/:slug", h.AdminGetPost)
	admin.POST("/:slug", h.AdminSubmitPost)

	e.HTTPErrorHandler = customHTTPErrorHandler
	addr := os.Getenv("ADDRESS_LISTEN")
	if env == DEV_ENV && addr == "" {
		addr = ":8080"
	}

	if addr != "" {
		e.Logger.Fatal(e.Start(addr))
	} else {
		// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
		e.AutoTLSManager.Cache = autocert.DirCache("/var/www/.cache")
		if onlyHost := os.Getenv("WHITELIST_HOST"); onlyHost != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(onlyHost)
		}
		e.Pre(middleware.HTTPSRedirect())
		e.Logger.Fatal(e.StartAutoTLS(":443"))
	}
}

func fetchSecret(env string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" && env == DEV_ENV {
		secret = "unsecure"
	}
	if secret == "" {
		return "", errors.New("no secret defined")
	}
	return secret, nil
}

func fetchAdminEmail(env string) (string, error) {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" && env == DEV_ENV {
		email = "admin@localhost"
	}
	if email == "" {
		return "", errors.New("ADMIN_EMAIL is not set")
	}
	return email, nil
}

func setupDB() (*sql.DB, error) {
	dbDriver := os.Getenv("DB_DRIVER")
	dataSourceName := os.Getenv("DB_URL")

	if dbDriver == "" {
		dbDriver = "sqlite"
	}

	var db *sql.DB
	var err error
	var driver database.Driver
	if dbDriver == "sqlite" {
		if dataSourceName == "" {
			dataSourceName = "./inkwell.db?_pragma=foreign_keys(1)"
		}
		db, err = sql.Open(dbDriver, dataSourceName)
		if err != nil {
			return nil, err
		}
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
		if err != nil {
			return nil, err
		}
	}
	m, err := migrate.NewWithDatabaseInstance(
		"file://db/migrations",
		dbDriver, driver)
	if err != nil {
		return nil, err
	}

	err = m.Up()

	return db, err
}

func customHTTPErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := http.StatusText(code)
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		message = fmt.Sprintf("%v", he.Message)
	}
	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}
	if c.Response().Committed {
		return
	}
	if err := c.JSON(code, map[string]string{"message": message}); err != nil {
		c.Logger().Error(err)
	}
}
