// storecheck prints dedup store statistics and the most recent posts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/deusflow/footnews/internal/storage"
)

func main() {
	_ = godotenv.Load()

	driver := flag.String("driver", envOr("STORAGE_DRIVER", storage.DriverSQLite), "sqlite, postgres or bolt")
	path := flag.String("path", envOr("STORAGE_PATH", storage.DefaultPath), "database file for sqlite and bolt")
	limit := flag.Int("n", 5, "number of recent posts to show")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dsn := os.Getenv("DATABASE_URL")
	target := *path
	if *driver == storage.DriverPostgres {
		target = maskPassword(dsn)
	}
	fmt.Printf("🔌 Opening %s store: %s\n\n", *driver, target)

	store, err := storage.Open(ctx, storage.Options{Driver: *driver, Path: *path, DSN: dsn})
	if err != nil {
		log.Fatalf("❌ Failed to open store: %v", err)
	}
	defer store.Close()

	fmt.Println("✅ Store is reachable")

	stats, err := store.Stats(ctx)
	if err != nil {
		log.Printf("⚠️ Failed to get stats: %v", err)
	} else {
		fmt.Println("\n📊 Store statistics:")
		fmt.Printf("  Total posts: %d\n", stats.Total)
		fmt.Printf("  Last 24h:    %d\n", stats.LastDay)

		sources := make([]string, 0, len(stats.BySource))
		for name := range stats.BySource {
			sources = append(sources, name)
		}
		sort.Strings(sources)
		for _, name := range sources {
			fmt.Printf("  %-20s %d\n", name, stats.BySource[name])
		}
	}

	recent, err := store.Recent(ctx, *limit)
	if err != nil {
		log.Printf("⚠️ Failed to get recent posts: %v", err)
		return
	}
	fmt.Printf("\n📰 Recent posts (last %d):\n", *limit)
	if len(recent) == 0 {
		fmt.Println("  (nothing published yet)")
	}
	for i, rec := range recent {
		fmt.Printf("  %d. %s\n", i+1, rec.Title)
		fmt.Printf("     Source: %s | Sent: %s\n", rec.SourceName, rec.PublishedAt.Format("2006-01-02 15:04:05"))
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// maskPassword hides the password part of a connection URL.
func maskPassword(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
