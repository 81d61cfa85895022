package tracker

import (
	"github.com/fleetlive/fleetlive/pkg/database"
	"github.com/fleetlive/fleetlive/pkg/events"
	"github.com/fleetlive/fleetlive/pkg/redis_client"
	"github.com/fleetlive/fleetlive/pkg/registry"
	"github.com/fleetlive/fleetlive/pkg/stats"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "tracker",
		Usage: "Live fleet position tracking over websockets",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the tracking server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:  "topics",
						Value: "",
						Usage: "topics config yaml (defaults to a single fleet-tracking topic)",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					eventPublisher := EventPublisher(nil)
					if err := redis_client.Connect(); err != nil {
						log.Warn().Err(err).Msg("Redis unavailable, event publishing disabled")
					} else {
						if err := events.SetupPublisher(); err != nil {
							return err
						}
						eventPublisher = events.Publish

						go stats.StartStatsServer()
					}

					config, err := LoadConfig(c.String("topics"))
					if err != nil {
						return err
					}

					server := NewServer(registry.NewMongoRegistry(), config, eventPublisher)

					return server.SetupServer(c.String("listen"))
				},
			},
		},
	}
}
