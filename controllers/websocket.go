package controllers

import (
	"routeerp_go/middleware"
	"routeerp_go/services"
	"routeerp_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type WebSocketController struct {
	hub  *websocket.Hub
	auth *services.AuthService
}

func NewWebSocketController(hub *websocket.Hub, auth *services.AuthService) *WebSocketController {
	return &WebSocketController{hub: hub, auth: auth}
}

// Upgrade rejects plain HTTP requests before the websocket handshake and
// resolves ?token= to a live session.
func (wsc *WebSocketController) Upgrade(c *fiber.Ctx) error {
	if !fiberws.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
			"error": "Use the WebSocket endpoint: ws://<host>/ws?token=YOUR_JWT",
		})
	}

	claims, err := middleware.ParseToken(c.Query("token"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	session, err := wsc.auth.Session(c.UserContext(), claims.ID)
	if err != nil || !session.User.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired or logged out"})
	}

	c.Locals("ws_user_id", session.User.ID)
	c.Locals("ws_role", session.User.Role)
	return c.Next()
}

// WebSocketHandler connects an upgraded connection to the hub
func (wsc *WebSocketController) WebSocketHandler() fiber.Handler {
	return fiberws.New(func(c *fiberws.Conn) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("WebSocket handler panic")
			}
		}()

		userID, _ := c.Locals("ws_user_id").(string)
		role, _ := c.Locals("ws_role").(string)
		if userID == "" {
			c.Close()
			return
		}
		wsc.hub.ServeFiberWS(c, userID, role)
	})
}

// GetWebSocketStats returns WebSocket connection statistics (admin only)
func (wsc *WebSocketController) GetWebSocketStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"connected_clients": wsc.hub.GetClientCount(),
		"status":            "active",
	})
}
