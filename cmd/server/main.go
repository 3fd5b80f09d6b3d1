package main

import (
	"crash_backend/internal/app"
	"flag"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the game config")
	flag.Parse()

	app.Must(app.NewApp(*configPath))
}
