package webserver

import (
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/blake2b"

	"github.com/ballot-labs/dappvotes/src/api/ledger"
)

// Voters handles the optional biometric enrollment flow: the caller's
// address gets bound to a fingerprint digest. Raw templates never leave
// this handler.
type Voters struct{ ledger *ledger.Ledger }

func NewVoters(lg *ledger.Ledger) Voters { return Voters{ledger: lg} }

func (h Voters) Register(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Fingerprint string `json:"fingerprint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	sum := blake2b.Sum256([]byte(req.Fingerprint))
	digest := "0x" + hex.EncodeToString(sum[:])

	voter, err := h.ledger.RegisterVoter(c.GetString("addr"), req.Name, digest)
	if err != nil {
		abortLedgerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": voter.ID, "address": voter.Address})
}
