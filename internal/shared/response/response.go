package response

import (
	"github.com/gin-gonic/gin"
)

// PageMeta describes an offset/limit page.
type PageMeta struct {
	Skip  int64 `json:"skip"`
	Limit int64 `json:"limit"`
	Count int   `json:"count"`
}

func NewPageMeta(skip, limit int64, count int) PageMeta {
	return PageMeta{
		Skip:  skip,
		Limit: limit,
		Count: count,
	}
}

type ApiEnvelope struct {
	Ok    bool      `json:"ok"`
	Data  any       `json:"data"`
	Meta  *PageMeta `json:"meta,omitempty"`
	Error any       `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data interface{}, meta *PageMeta) {
	c.JSON(status, ApiEnvelope{
		Ok:   true,
		Data: data,
		Meta: meta,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details interface{}) {
	c.JSON(status, ApiEnvelope{
		Ok: false,
		Error: map[string]interface{}{
			"code":    errorCode,
			"message": message,
			"details": details,
		},
	})
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, errorCode string, message string) {
	Error(c, status, errorCode, message, nil)
	c.Abort()
}
