package database

import (
	"net/url"
	"strconv"

	"github.com/nileshgupta/stocklens/internal/config"
)

// BuildConnString renders a PostgreSQL URL from config. Credentials are
// escaped through url.UserPassword, so passwords may carry any
// characters.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}
