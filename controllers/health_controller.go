package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	Store Pinger
	// Cache is nil when the hierarchy cache is disabled.
	Cache Pinger
}

func NewHealthController(store, cache Pinger) *HealthController {
	return &HealthController{Store: store, Cache: cache}
}

// Health fails with 503 when the store is down. A failing cache is reported
// but does not fail the check, reads fall back to the store.
func (hc *HealthController) Health(ctx *fiber.Ctx) error {
	if err := hc.Store.Ping(ctx.UserContext()); err != nil {
		return err
	}

	cache := "disabled"
	if hc.Cache != nil {
		cache = "up"
		if err := hc.Cache.Ping(ctx.UserContext()); err != nil {
			cache = "down"
		}
	}
	return respond(ctx, fiber.StatusOK, "ok", fiber.Map{
		"database": "up",
		"cache":    cache,
	})
}
