package registry

import (
	"github.com/fleetlive/fleetlive/pkg/database"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "registry",
		Usage: "Manage the vehicle registry",
		Subcommands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "upsert vehicle records from yaml seed files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "directory",
						Value: "data/vehicles/",
						Usage: "directory containing vehicle seed yaml files",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					return Seed(NewMongoRegistry(), c.String("directory"))
				},
			},
		},
	}
}
