// Package seed upserts embedded development fixtures so a fresh database has
// a school, a route with stops, a roster, and a vehicle to drive.
package seed

import (
	"bytes"
	"embed"

	"github.com/rs/zerolog/log"
	"github.com/schooltrack/schooltrack/pkg/database"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var seedFiles embed.FS

func Insert() {
	entries, err := seedFiles.ReadDir("data")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read seed data directory")
	}

	for _, entry := range entries {
		log.Debug().Str("path", entry.Name()).Msg("Loading seed file")

		seedYaml, err := seedFiles.ReadFile("data/" + entry.Name())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read seed file")
		}

		decoder := yaml.NewDecoder(bytes.NewReader(seedYaml))

		for {
			var definition seedDefinition
			if decoder.Decode(&definition) != nil {
				break
			}

			definition.Upsert()
		}
	}
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Development fixture management",
		Subcommands: []*cli.Command{
			{
				Name:  "insert",
				Usage: "upsert the embedded seed records",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					Insert()

					return nil
				},
			},
		},
	}
}
