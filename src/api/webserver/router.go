package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ballot-labs/dappvotes/src/api/config"
	"github.com/ballot-labs/dappvotes/src/api/ledger"
)

func New(cfg config.Config, lg *ledger.Ledger, rdb *redis.Client) *gin.Engine {
	r := gin.Default()
	attachRoutes(r, cfg, lg, rdb)
	return r
}

func attachRoutes(r *gin.Engine, cfg config.Config, lg *ledger.Ledger, rdb *redis.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(rdb, []byte(cfg.JWTSecret))
	pollH := NewPolls(lg)
	contH := NewContestants(lg)
	voteH := NewVotes(lg)
	voterH := NewVoters(lg)

	limiter := NewRateLimiter(30, time.Minute)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/challenge", authH.Challenge)
		v1.POST("/auth/verify", authH.Verify)

		v1.GET("/polls", pollH.List)
		v1.GET("/polls/count", pollH.Count)
		v1.GET("/polls/:id", pollH.Get)
		v1.GET("/polls/:id/status", pollH.Status)
		v1.GET("/polls/:id/contestants", contH.List)
		v1.GET("/polls/:id/contestants/:cid", contH.Get)
		v1.GET("/polls/:id/voted/:addr", voteH.HasVoted)
		v1.GET("/polls/:id/contested/:addr", voteH.HasContested)

		secured := v1.Use(JWTMiddleware([]byte(cfg.JWTSecret)), RateLimitMiddleware(limiter))
		secured.POST("/polls", pollH.Create)
		secured.PUT("/polls/:id", pollH.Update)
		secured.DELETE("/polls/:id", pollH.Delete)
		secured.POST("/polls/:id/contestants", contH.Register)
		secured.POST("/polls/:id/votes", voteH.Cast)
		secured.POST("/voters", voterH.Register)
	}
}
