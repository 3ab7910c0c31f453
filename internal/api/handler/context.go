package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxUserID extracts the user id injected by the Auth middleware. An
// empty id means the middleware did not run on this route; reject with
// 401 before touching any service.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get("userId").(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}
