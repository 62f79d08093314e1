package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/loxone-integration/cmd"
)

func main() {
	app := &cli.App{
		Name:   "loxone-lights",
		Usage:  "bridges Loxone miniserver lights to Home Assistant",
		Action: cmd.LightsCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "structure-file",
				EnvVars: []string{"STRUCTURE_FILE"},
				Usage:   "path to the miniserver structure file (LoxAPP3.json)",
			},
			&cli.StringFlag{
				Name:    "relay-url",
				EnvVars: []string{"RELAY_URL"},
				Usage:   "websocket url of the event relay",
			},
			&cli.BoolFlag{
				Name:    "relay-insecure",
				EnvVars: []string{"RELAY_INSECURE_SKIP_VERIFY"},
				Value:   false,
			},
			&cli.StringFlag{
				Name:    "mqtt-host",
				EnvVars: []string{"MQTT_HOST"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-user",
				EnvVars: []string{"MQTT_USER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-pass",
				EnvVars: []string{"MQTT_PASS"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "database-url",
				EnvVars: []string{"DATABASE_URL"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "migrations-folder",
				EnvVars: []string{"MIGRATIONS_FOLDER"},
				Value:   "migrations",
			},
			&cli.StringFlag{
				Name:    "http-addr",
				EnvVars: []string{"HTTP_ADDR"},
				Value:   "0.0.0.0:8000",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
