package main

import (
	"context"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/angelini/generals/battle"
	"github.com/angelini/generals/client"
	"github.com/angelini/generals/headless"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Llongfile)

	if len(os.Args) > 1 && os.Args[1] == "headless" {
		if err := headless.Run(os.Args[1:]); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := headless.LoadConfig("config.toml")
	if err != nil {
		log.Fatal(err)
	}
	resolutionConfig := cfg.UI.Resolution
	log.Printf("%+v", resolutionConfig)

	b, err := battle.Setup(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()
	b.Start(context.Background())

	ebiten.SetWindowSize(resolutionConfig.X, resolutionConfig.Y)
	ebiten.SetWindowTitle("Generals")
	ebiten.SetTPS(cfg.Simulation.TickRate)

	if err := ebiten.RunGame(client.NewGame(b)); err != nil {
		log.Print(err)
	}
}
