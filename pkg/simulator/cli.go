package simulator

import (
	"time"

	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "simulator",
		Usage: "Simulated bus clients for exercising the tracker",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "drive a simulated bus along its configured route",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Value: "ws://localhost:8080/ws/fleet",
						Usage: "tracker websocket endpoint",
					},
					&cli.StringFlag{
						Name:     "bus",
						Usage:    "bus number to simulate",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "interval",
						Value: 2 * time.Second,
						Usage: "delay between position reports",
					},
					&cli.IntFlag{
						Name:  "steps",
						Value: 50,
						Usage: "number of position reports along the route",
					},
				},
				Action: func(c *cli.Context) error {
					simulator := &Simulator{
						URL:      c.String("url"),
						Bus:      c.String("bus"),
						Interval: c.Duration("interval"),
						Steps:    c.Int("steps"),
					}

					return simulator.Run()
				},
			},
			{
				Name:  "watch",
				Usage: "observe and pretty-print fleet broadcasts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Value: "ws://localhost:8080/ws/fleet",
						Usage: "tracker websocket endpoint",
					},
				},
				Action: func(c *cli.Context) error {
					return Watch(c.String("url"))
				},
			},
		},
	}
}
