// Package handler defines the HTTP handlers for the API.  Handlers bind
// and validate request bodies, own the database transactions for
// multi-statement mutations, and translate repository sentinels into
// HTTP status codes.
package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/letmebeesther/plan-prove/internal/certify"
    "github.com/letmebeesther/plan-prove/internal/repository"
)

// getUserID extracts the authenticated user id stored by the JWT
// middleware.  Numeric JSON claims decode as float64, so every plausible
// representation is handled.
func getUserID(c echo.Context) (uint64, error) {
    switch t := c.Get("user_id").(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// parseID parses a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || n == 0 {
        return 0, false
    }
    return n, true
}

// pageParams reads ?page and ?page_size with sane bounds.
func pageParams(c echo.Context) (page, pageSize int) {
    page, _ = strconv.Atoi(c.QueryParam("page"))
    if page < 1 {
        page = 1
    }
    pageSize, _ = strconv.Atoi(c.QueryParam("page_size"))
    if pageSize < 1 || pageSize > 100 {
        pageSize = 20
    }
    return page, pageSize
}

// repoError maps repository sentinels onto HTTP responses.  Anything
// unrecognized becomes a 500 with the supplied fallback message.
func repoError(c echo.Context, err error, fallback string) error {
    switch {
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    case errors.Is(err, repository.ErrInvalidState):
        return c.JSON(http.StatusConflict, echo.Map{"error": "invalid state"})
    case errors.Is(err, repository.ErrLimitExceeded):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "limit exceeded"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}

// certifyError maps certification failures onto HTTP responses, falling
// back to repoError for the store sentinels that bubble through the
// certification service.
func certifyError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, certify.ErrMissingFile),
        errors.Is(err, certify.ErrEmptyContent),
        errors.Is(err, certify.ErrIncompleteAPIReference):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, certify.ErrTypeNotAllowed),
        errors.Is(err, certify.ErrDisallowedDomain):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
    case errors.Is(err, certify.ErrEmailNotVerified):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "email code verification failed"})
    case errors.Is(err, certify.ErrUploadTimeout):
        return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "evidence upload timed out"})
    case errors.Is(err, certify.ErrUploadFailed):
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "evidence upload failed"})
    }
    return repoError(c, err, "certification failed")
}
