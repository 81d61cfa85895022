package events

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fleetlive/fleetlive/pkg/redis_client"
	"github.com/fleetlive/fleetlive/pkg/stats"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Fleet event queue processing",
		Subcommands: []*cli.Command{
			{
				Name:  "consumer",
				Usage: "run the fleet events consumer",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					StartConsumers()

					go stats.StartStatsServer()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
		},
	}
}
