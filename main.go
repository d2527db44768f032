package main

import (
	"context"
	"flag"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/duskdawn/mintd/api"
	"github.com/duskdawn/mintd/logger"
	"github.com/duskdawn/mintd/mint"
	"github.com/duskdawn/mintd/store"
)

func main() {
	ctx := context.Background()

	bp := flag.String("d", "~/.mintd/data", "database directory path")
	cp := flag.String("c", "~/.mintd/config.toml", "configuration file path")
	flag.Parse()

	if strings.HasPrefix(*cp, "~/") {
		usr, _ := user.Current()
		*cp = filepath.Join(usr.HomeDir, (*cp)[2:])
	}
	conf, err := mint.Setup(*cp)
	if err != nil {
		panic(err)
	}

	if strings.HasPrefix(*bp, "~/") {
		usr, _ := user.Current()
		*bp = filepath.Join(usr.HomeDir, (*bp)[2:])
	}
	db, err := store.OpenBadger(ctx, *bp)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	engine, err := mint.BuildEngine(db, conf)
	if err != nil {
		panic(err)
	}

	server := api.NewServer(engine, db, conf)
	go func() {
		err := server.Run(ctx)
		log := logger.Logger()
		log.Error().Err(err).Msg("api server stopped")
	}()
	engine.Run(ctx)
}
