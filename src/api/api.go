package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ballot-labs/dappvotes/src/api/config"
	"github.com/ballot-labs/dappvotes/src/api/data"
	"github.com/ballot-labs/dappvotes/src/api/ledger"
	"github.com/ballot-labs/dappvotes/src/api/types"
	"github.com/ballot-labs/dappvotes/src/api/webserver"
	"gorm.io/gorm"
)

var allModels = []interface{}{
	&types.Poll{}, &types.Contestant{},
	&types.PollVote{}, &types.PollEntry{},
	&types.Voter{},
}

func migrate(db *gorm.DB) {
	err := db.AutoMigrate(allModels...)

	if err == nil {
		return
	}

	log.Printf("auto-migrate failed (%v) - dropping & recreating schema", err)
	_ = db.Migrator().DropTable(
		"voters", "poll_entries", "poll_votes",
		"contestants", "polls",
	)
	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatalf("migrate after drop: %v", err)
	}
}

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	migrate(db)

	rdb := data.MustRedis(cfg.RedisURL)

	lg := ledger.New(ledger.Config{
		LockUpdateAfterVotes: cfg.LockUpdateAfterVotes,
		EnforceVoteWindow:    cfg.EnforceVoteWindow,
		Persist:              data.NewPersister(db),
		Events:               data.NewPublisher(rdb),
	})

	state, err := data.LoadState(db)
	if err != nil {
		log.Fatalf("load state: %v", err)
	}
	lg.Hydrate(state.Polls, state.Contestants, state.Votes, state.Entries, state.Voters)
	log.Printf("ledger hydrated: %d polls, %d voters", len(state.Polls), len(state.Voters))

	router := webserver.New(cfg, lg, rdb)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("DappVotes API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
