package main

import (
	"log"

	"github.com/crte-ams/ticket-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
