package middleware

import "github.com/labstack/echo/v4"

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c echo.Context) string {
	s, _ := c.Get(CtxUserID).(string)
	return s
}

// Email returns the e-mail claim of the access token, if any.
func Email(c echo.Context) string {
	s, _ := c.Get(CtxEmail).(string)
	return s
}

func Role(c echo.Context) string {
	s, _ := c.Get(CtxRole).(string)
	return s
}

// identityKey names the caller in rate-limit keys: the user id, or "anon".
func identityKey(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}
