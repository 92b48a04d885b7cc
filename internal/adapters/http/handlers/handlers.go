package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/globedrop/ngo-directory/internal/adapters/http/dto"
)

// forward hands err to the error handler middleware. Untyped errors are
// wrapped so every failure reaches it as a *dto.APIError.
func forward(c *gin.Context, err error) {
	_ = c.Error(dto.AsAPIError(err))
}

func badBody(err error) *dto.APIError {
	return dto.NewBadInputError(http.StatusUnprocessableEntity, map[string]string{"message": err.Error()})
}

// scope tags the request logger via with and keeps the enriched context on
// the request, so the error handler logs the same attributes.
func scope(c *gin.Context, with func(context.Context, string) context.Context, id string) context.Context {
	ctx := with(c.Request.Context(), id)
	c.Request = c.Request.WithContext(ctx)

	return ctx
}

// chain drops a nil guard from a handler list.
func chain(guard gin.HandlerFunc, handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	if guard == nil {
		return handlers
	}

	return append([]gin.HandlerFunc{guard}, handlers...)
}

// Root handles GET /.
func Root(c *gin.Context) {
	c.String(http.StatusOK, "NGO Directory App")
}
