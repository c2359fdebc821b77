package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"imgd/internal/network"
	"imgd/internal/observability"
)

// userIPResponse intentionally has no status field. The ipv4/ipv6 pointers
// serialize as null for whichever family the client did not arrive on.
type userIPResponse struct {
	IP            string  `json:"ip"`
	IPv4          *string `json:"ipv4"`
	IPv6          *string `json:"ipv6"`
	IPv4Available bool    `json:"ipv4_available"`
	IPv6Available bool    `json:"ipv6_available"`
	Success       bool    `json:"success"`
}

type resolveResponse struct {
	TTL         float64  `json:"ttl"`
	Answers     []string `json:"answers"`
	Nameservers []string `json:"nameservers"`
	Status      string   `json:"status"`
	Success     bool     `json:"success"`
}

func (s *Server) handleIP(c *gin.Context) {
	client := network.ExtractClientIP(c.Request.RemoteAddr, c.GetHeader("X-Forwarded-For"))
	c.JSON(http.StatusOK, userIPResponse{
		IP:            client.IP,
		IPv4:          client.IPv4,
		IPv6:          client.IPv6,
		IPv4Available: client.IPv4Available,
		IPv6Available: client.IPv6Available,
		Success:       true,
	})
}

func (s *Server) handleResolve(c *gin.Context) {
	domain := strings.TrimSpace(c.Query("domain"))
	if domain == "" {
		c.JSON(http.StatusBadRequest, errorMessage(`Required parameter "domain" is missing or empty`))
		return
	}

	ctx, span := s.obs.Tracer.StartSpan(c.Request.Context(), observability.SpanResolve)
	res, err := s.resolver.Resolve(ctx, domain)
	span.End()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorMessage("Unable to resolve the specified domain: "+domain))
		return
	}

	status := "ok"
	if len(res.Answers) == 0 {
		status = "error"
	}
	c.JSON(http.StatusOK, resolveResponse{
		TTL:         res.TTL.Seconds(),
		Answers:     res.Answers,
		Nameservers: res.Nameservers,
		Status:      status,
		Success:     true,
	})
}
