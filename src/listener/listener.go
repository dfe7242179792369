// Event consumer for the DappVotes ledger stream. Tails the redis stream
// and logs every committed mutation; external indexers and device bridges
// follow the same pattern.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ballot-labs/dappvotes/src/api/data"
)

func main() {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://127.0.0.1:6379/0"
	}
	rdb := data.MustRedis(url)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	log.Printf("listening on stream %s", data.StreamEvents)

	lastID := "$"
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := rdb.XRead(ctx, &redis.XReadArgs{
			Streams: []string{data.StreamEvents, lastID},
			Count:   10,
			Block:   5 * time.Second,
		}).Result()

		if err != nil {
			if err != redis.Nil && ctx.Err() == nil {
				log.Printf("read stream: %v", err)
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				logEvent(msg)
			}
		}
	}
}

func logEvent(msg redis.XMessage) {
	event, _ := msg.Values["event"].(string)

	keys := make([]string, 0, len(msg.Values))
	for k := range msg.Values {
		if k != "event" && k != "time" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := msg.Values[k].(string); ok {
			parts = append(parts, k+"="+v)
		}
	}
	log.Printf("%s %s", event, strings.Join(parts, " "))
}
