package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type pongResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Uptime  float64 `json:"uptime"`
	Success bool    `json:"success"`
}

type workerInfoResponse struct {
	Status  string  `json:"status"`
	UID     string  `json:"uid"`
	Uptime  float64 `json:"uptime"`
	Country string  `json:"country"`
	Region  string  `json:"region"`
	Success bool    `json:"success"`
}

func (s *Server) handleHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, pongResponse{
		Status:  "ok",
		Message: "pong",
		Uptime:  s.uptime(),
		Success: true,
	})
}

// handleHello reports which worker answered, useful when several instances
// sit behind one load balancer.
func (s *Server) handleHello(c *gin.Context) {
	c.JSON(http.StatusOK, workerInfoResponse{
		Status:  "ok",
		UID:     s.cfg.Worker.UID,
		Uptime:  s.uptime(),
		Country: s.cfg.Worker.Country,
		Region:  s.cfg.Worker.Region,
		Success: true,
	})
}
