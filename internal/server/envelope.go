package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// The JSON envelopes below are part of the public contract. Field order is
// load-bearing for clients that diff raw bodies, so structs keep the exact
// declaration order the wire format documents.

type apiError struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Success bool   `json:"success"`
}

func errorMessage(msg string) apiError {
	return apiError{Message: msg, Status: "error", Success: false}
}

type apiDoc struct {
	Usage   string `json:"usage"`
	Status  string `json:"status"`
	Success bool   `json:"success"`
}

// serveDoc answers GET probes on upload endpoints with a usage blurb
// instead of a method error.
func serveDoc(usage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, apiDoc{Usage: usage, Status: "ok", Success: true})
	}
}

type uploadedInfo struct {
	Size int    `json:"size"`
	MIME string `json:"mime"`
}

// epoch renders a timestamp as fractional seconds since the Unix epoch.
func epoch(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
