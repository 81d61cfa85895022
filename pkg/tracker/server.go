package tracker

import (
	"context"

	"github.com/fleetlive/fleetlive/pkg/fleet"
	"github.com/fleetlive/fleetlive/pkg/http_server"
	"github.com/fleetlive/fleetlive/pkg/registry"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Server hosts the tracking websocket endpoint plus a small read-only
// HTTP surface over the vehicle registry.
type Server struct {
	hub      *Hub
	updater  *Updater
	registry registry.Registry
	config   *Config
	events   EventPublisher
}

func NewServer(vehicleRegistry registry.Registry, config *Config, eventPublisher EventPublisher) *Server {
	hub := NewHub()

	return &Server{
		hub:      hub,
		updater:  NewUpdater(vehicleRegistry, hub, eventPublisher),
		registry: vehicleRegistry,
		config:   config,
		events:   eventPublisher,
	}
}

func (server *Server) SetupServer(listen string) error {
	webApp := fiber.New()
	webApp.Use(http_server.NewLogger())

	group := webApp.Group("/core")

	group.Get("version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"version": "v0.1",
		})
	})

	group.Get("/vehicles", server.listVehicles)

	webApp.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	webApp.Get("/ws/fleet", websocket.New(server.handleTracking))

	return webApp.Listen(listen)
}

func (server *Server) listVehicles(c *fiber.Ctx) error {
	vehicles, err := server.registry.ListAllVehicles(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list vehicles")
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not read the vehicle registry",
		})
	}

	positionMessages := make([]fleet.PositionMessage, 0, len(vehicles))
	for _, vehicle := range vehicles {
		positionMessages = append(positionMessages, vehicle.PositionMessage())
	}

	return c.JSON(positionMessages)
}

// handleTracking runs for the lifetime of one websocket connection.
func (server *Server) handleTracking(conn *websocket.Conn) {
	topic, ok := server.config.ResolveTopic(conn.Query("topic"))
	if !ok {
		log.Warn().Str("topic", conn.Query("topic")).Msg("Rejecting session for unknown topic")
		conn.Close()
		return
	}

	session := NewSession(conn, topic, server.hub, server.updater, server.registry, server.events)
	session.Run()
}
