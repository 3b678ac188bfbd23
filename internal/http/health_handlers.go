package http

import (
	"context"
	nethttp "net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

const aliveText = "Giveaway Bot is alive!"

type healthHandlers struct {
	service string
	checks  map[string]ReadyCheck
}

func (h *healthHandlers) register(r gin.IRouter) {
	r.GET("/", h.alive)
	r.GET("/health", h.health)
	r.GET("/live", func(c *gin.Context) { c.Status(nethttp.StatusOK) })
	r.GET("/ready", h.ready)
}

// alive is the keep-alive endpoint pinged by uptime monitors.
func (h *healthHandlers) alive(c *gin.Context) {
	c.String(nethttp.StatusOK, aliveText)
}

func (h *healthHandlers) health(c *gin.Context) {
	c.JSON(nethttp.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"service":   h.service,
	})
}

func (h *healthHandlers) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			c.JSON(nethttp.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   name + " unavailable",
				"details": err.Error(),
			})
			return
		}
	}

	c.JSON(nethttp.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"service":   h.service,
	})
}
