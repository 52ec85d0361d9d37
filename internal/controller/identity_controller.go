package controller

import (
	"browser-connector-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// Signature is the fixed token the extension matches against before it
// trusts anything on this port.
const Signature = "mcp-browser-connector-24x7"

type IIdentityController interface {
	RegisterRoutes(r fiber.Router)
	Identity(ctx *fiber.Ctx) error
}

type identityController struct {
	name    string
	version string
}

func NewIdentityController(name, version string) IIdentityController {
	return &identityController{name: name, version: version}
}

func (c *identityController) RegisterRoutes(r fiber.Router) {
	r.Get("/.identity", c.Identity)
}

func (c *identityController) Identity(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.IdentityResponse{
		Signature: Signature,
		Name:      c.name,
		Version:   c.version,
	})
}
