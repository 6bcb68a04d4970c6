// Package response renders the JSON envelopes returned by every endpoint.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devcamper-api/internal/domain/query"
)

type Envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

type ListEnvelope[T any] struct {
	Success    bool              `json:"success"`
	Count      int               `json:"count"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
	Data       []T               `json:"data"`
}

type TokenEnvelope struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// OK writes {success:true, data}.
func OK[T any](c *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Envelope[T]{Success: true, Data: data})
}

// List writes {success:true, count, data} for a plain collection.
func List[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, ListEnvelope[T]{Success: true, Count: len(items), Data: items})
}

// Paged writes the advanced-results envelope.
func Paged(c *gin.Context, res *query.Result) {
	p := res.Pagination
	c.JSON(http.StatusOK, ListEnvelope[query.Record]{
		Success:    true,
		Count:      res.Count,
		Pagination: &p,
		Data:       res.Data,
	})
}

func Token(c *gin.Context, status int, token string) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, TokenEnvelope{Success: true, Token: token})
}

func Fail(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Success: false, Error: message})
}
