package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error bodies carry a single human-readable "detail" string.
type apiError struct {
	Code   int    `json:"-"`
	Detail string `json:"detail"`
}

func newAPIError(code int, detail string) apiError {
	return apiError{
		Code:   code,
		Detail: detail,
	}
}

func (e apiError) Error() string {
	return e.Detail
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, err)
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(detail string) apiError {
	return newAPIError(http.StatusBadRequest, detail)
}

func newUnauthorizedError(detail string) apiError {
	return newAPIError(http.StatusUnauthorized, detail)
}

func newForbiddenError(detail string) apiError {
	return newAPIError(http.StatusForbidden, detail)
}

func newNotFoundError(detail string) apiError {
	return newAPIError(http.StatusNotFound, detail)
}

func newConflictError(detail string) apiError {
	return newAPIError(http.StatusConflict, detail)
}
