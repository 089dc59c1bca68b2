package routes

import (
	"github.com/gofiber/fiber/v2"

	"scandiary/internal/api/handlers"
)

type Config struct {
	App         *fiber.App
	ScanHandler handlers.ScanHandler
}

func (c *Config) Setup() {
	c.App.Get("/api/v1/health", c.ScanHandler.Health)
	c.Scans()
}

func (c *Config) Scans() {
	scans := c.App.Group("/api/v1/scans")
	{
		scans.Post("", c.ScanHandler.ManualScan)
		scans.Get("", c.ScanHandler.RecentScans)
		scans.Get("/review", c.ScanHandler.PendingReview)
	}
}
