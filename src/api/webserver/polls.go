package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/ballot-labs/dappvotes/src/api/ledger"
)

type Polls struct {
	ledger    *ledger.Ledger
	sanitizer *bluemonday.Policy
}

func NewPolls(lg *ledger.Ledger) Polls {
	return Polls{ledger: lg, sanitizer: bluemonday.StrictPolicy()}
}

type pollRequest struct {
	Image       string `json:"image" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	StartsAt    int64  `json:"startsAt" binding:"required"`
	EndsAt      int64  `json:"endsAt" binding:"required"`
}

func (h Polls) params(req pollRequest) ledger.PollParams {
	return ledger.PollParams{
		Image:       req.Image,
		Title:       h.sanitizer.Sanitize(req.Title),
		Description: h.sanitizer.Sanitize(req.Description),
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
}

func (h Polls) Create(c *gin.Context) {
	var req pollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	poll, err := h.ledger.CreatePoll(c.GetString("addr"), h.params(req))
	if err != nil {
		abortLedgerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": poll.ID})
}

func (h Polls) Update(c *gin.Context) {
	var req pollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	pollID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	poll, err := h.ledger.UpdatePoll(c.GetString("addr"), pollID, h.params(req))
	if err != nil {
		abortLedgerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

func (h Polls) Delete(c *gin.Context) {
	pollID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.ledger.DeletePoll(c.GetString("addr"), pollID); err != nil {
		abortLedgerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h Polls) Get(c *gin.Context) {
	pollID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	poll, err := h.ledger.Poll(pollID)
	if err != nil {
		abortLedgerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

func (h Polls) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Polls())
}

func (h Polls) Count(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.ledger.PollCount()})
}

func (h Polls) Status(c *gin.Context) {
	pollID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	status, err := h.ledger.PollStatus(pollID)
	if err != nil {
		abortLedgerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
