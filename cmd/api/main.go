package main

import (
	"log"

	"goflare.io/loyalty/config"
)

func main() {

	appConfig, err := config.ProvideApplicationConfig()
	if err != nil {
		log.Fatal(err)
	}

	server, err := InitializeLoyaltyService(appConfig)
	if err != nil {
		log.Fatal(err)
	}

	if err = server.Run(appConfig.Server.Address); err != nil {
		log.Fatal(err.Error())
	}

}
