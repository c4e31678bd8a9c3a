package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/postbox/internal/adapters/repository/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var dsn string
	flag.StringVar(&dsn, "d", os.Getenv("DATABASE_URL"), "Database connection string")
	flag.Usage = func() {
		log.Printf("usage: %s [-d dsn] up|down|status|version|redo|reset [args]", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	if dsn == "" {
		log.Fatal("a database connection string is required (-d or DATABASE_URL)")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal(err)
	}

	command := flag.Arg(0)
	if err := postgres.Migrate(ctx, db, command, flag.Args()[1:]...); err != nil {
		log.Fatal(err)
	}

	log.Printf("Migration command %q completed.", command)
}
