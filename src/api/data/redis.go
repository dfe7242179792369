package data

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	noncePrefix = "nonce:"

	// StreamEvents carries one entry per committed ledger mutation.
	StreamEvents = "dappvotes.events"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

func SetNonce(ctx context.Context, rdb *redis.Client, addr, nonce string) error {
	return rdb.Set(ctx, noncePrefix+addr, nonce, 5*time.Minute).Err()
}

func GetAndDelNonce(ctx context.Context, rdb *redis.Client, addr string) (string, error) {
	return rdb.GetDel(ctx, noncePrefix+addr).Result()
}

// Publisher emits ledger events onto the redis stream.
type Publisher struct{ rdb *redis.Client }

func NewPublisher(rdb *redis.Client) *Publisher { return &Publisher{rdb: rdb} }

func (p *Publisher) Publish(ctx context.Context, event string, fields map[string]any) error {
	values := map[string]any{"event": event, "time": time.Now().Unix()}
	for k, v := range fields {
		values[k] = v
	}
	_, err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamEvents,
		Values: values,
	}).Result()
	return err
}
