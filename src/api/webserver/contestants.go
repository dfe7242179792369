package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/ballot-labs/dappvotes/src/api/ledger"
)

type Contestants struct {
	ledger    *ledger.Ledger
	sanitizer *bluemonday.Policy
}

func NewContestants(lg *ledger.Ledger) Contestants {
	return Contestants{ledger: lg, sanitizer: bluemonday.StrictPolicy()}
}

func (h Contestants) Register(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Image string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	pollID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	contestant, err := h.ledger.Contest(c.GetString("addr"), pollID,
		h.sanitizer.Sanitize(req.Name), req.Image)
	if err != nil {
		abortLedgerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": contestant.ID})
}

func (h Contestants) Get(c *gin.Context) {
	pollID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	contestantID, _ := strconv.ParseUint(c.Param("cid"), 10, 64)
	contestant, err := h.ledger.Contestant(pollID, contestantID)
	if err != nil {
		abortLedgerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, contestant)
}

func (h Contestants) List(c *gin.Context) {
	pollID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	contestants, err := h.ledger.Contestants(pollID)
	if err != nil {
		abortLedgerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, contestants)
}
