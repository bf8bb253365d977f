package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	mongostore "github.com/vladislavdragonenkov/storefront/internal/storage/mongo"
)

const defaultTimeout = 30 * time.Second

// Утилита создаёт индексы MongoDB, на которые опираются инварианты
// хранилища. Запускается перед первым стартом сервиса и после
// добавления новых коллекций.
func main() {
	var (
		uri      string
		database string
	)

	flag.StringVar(&uri, "uri", "", "MongoDB URI (fallback: STOREFRONT_MONGO_URI)")
	flag.StringVar(&database, "db", "storefront", "database name (fallback: STOREFRONT_MONGO_DB)")
	flag.Parse()

	if strings.TrimSpace(uri) == "" {
		uri = strings.TrimSpace(os.Getenv("STOREFRONT_MONGO_URI"))
	}
	if uri == "" {
		fail("STOREFRONT_MONGO_URI (or -uri) is required")
	}
	if v := strings.TrimSpace(os.Getenv("STOREFRONT_MONGO_DB")); v != "" && database == "storefront" {
		database = v
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := mongostore.Open(ctx, uri, database)
	if err != nil {
		fail("open mongo store: %v", err)
	}
	defer func() { _ = store.Close(context.Background()) }()

	if err := store.EnsureIndexes(ctx); err != nil {
		fail("ensure indexes failed: %v", err)
	}

	fmt.Printf("indexes ensured: db=%s\n", database)
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
