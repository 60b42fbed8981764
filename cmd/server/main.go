package main

import (
	"context"
	"log"

	"github.com/hlf20010508/transfery/internal/server"
	"github.com/hlf20010508/transfery/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
