package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ballot-labs/dappvotes/src/api/ledger"
)

type Votes struct{ ledger *ledger.Ledger }

func NewVotes(lg *ledger.Ledger) Votes { return Votes{ledger: lg} }

func (h Votes) Cast(c *gin.Context) {
	var req struct {
		ContestantID uint64 `json:"contestantId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	pollID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.ledger.Vote(c.GetString("addr"), pollID, req.ContestantID); err != nil {
		abortLedgerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

func (h Votes) HasVoted(c *gin.Context) {
	pollID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	c.JSON(http.StatusOK, gin.H{"voted": h.ledger.HasVoted(pollID, c.Param("addr"))})
}

func (h Votes) HasContested(c *gin.Context) {
	pollID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	c.JSON(http.StatusOK, gin.H{"contested": h.ledger.HasContested(pollID, c.Param("addr"))})
}
