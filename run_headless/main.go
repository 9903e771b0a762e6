package main

import (
	"log"
	"os"

	"github.com/angelini/generals/headless"
)

func main() {
	if err := headless.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
