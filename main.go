package main

import (
	"github.com/apartrent/apartment-service/config"
	"github.com/apartrent/apartment-service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}
