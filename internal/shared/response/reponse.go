package response

import (
	"net/http"

	"cinenacional-backend/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

// Page is the list envelope. ItemsKey renames "data" when set.
type Page struct {
	Items      any
	ItemsKey   string
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// Body renders the page as a JSON object.
func (p Page) Body() gin.H {
	key := p.ItemsKey
	if key == "" {
		key = "data"
	}
	return gin.H{
		key:          p.Items,
		"total":      p.Total,
		"page":       p.Page,
		"limit":      p.Limit,
		"totalPages": p.TotalPages,
	}
}

// Success responses
func JSON(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error renders err using the apperror taxonomy. Unknown errors become a generic 500.
func Error(c *gin.Context, err error) {
	appErr := apperror.From(err)
	c.AbortWithStatusJSON(appErr.Status, Body(appErr))
}

// Body builds the error JSON, merging Extra fields at the top level.
func Body(appErr *apperror.Error) gin.H {
	body := gin.H{"error": appErr.Message}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	for k, v := range appErr.Extra {
		if k == "error" || k == "details" {
			continue
		}
		body[k] = v
	}
	return body
}
