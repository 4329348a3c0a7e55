package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/darslik/apps/shared"
	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/storage/database"
)

func main() {
	conf := core.NewConfig()

	logger, err := shared.NewLogger(conf, "admin")
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = db.Ping(); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}

	deps, err := shared.New(context.Background(), conf, logger, db)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up services: %v", err), err)
	}

	// start CLI
	cli := commandLine{
		db:          db,
		out:         os.Stdout,
		usrSvc:      deps.UserSvc,
		providerSvc: deps.ProviderSvc,
		courseGen:   deps.CourseGen,
		assistant:   deps.Assistant,
	}
	code := 0
	if err = cli.run(os.Args[1:]); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		code = 1
	}

	_ = deps.Close()
	_ = db.Close()
	logger.Sync()
	os.Exit(code)
}
