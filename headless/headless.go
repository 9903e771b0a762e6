// Package headless runs a battle without a window until interrupted.
package headless

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"

	"github.com/angelini/generals/battle"
	"github.com/angelini/generals/utils"
)

// LoadConfig reads path, falling back to the built-in defaults when the file
// does not exist.
func LoadConfig(path string) (*utils.Config, error) {
	cfg, err := utils.ReadTOML(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("%s not found, using defaults", path)
		return utils.DefaultConfig(), nil
	}
	return cfg, err
}

func Run(args []string) error {
	log.SetFlags(log.LstdFlags | log.Llongfile)
	path := "config.toml"
	if len(args) > 1 {
		path = args[1]
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}

	b, err := battle.Setup(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- b.Run(ctx)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		return err
	case sig := <-sigs:
		log.Printf("terminating: %v", sig)
	}
	cancel()
	return <-errc
}
