package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ballot-labs/dappvotes/src/api/ledger"
)

// abortLedgerErr maps a ledger error kind to its HTTP status.
func abortLedgerErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case ledger.IsValidation(err):
		status = http.StatusBadRequest
	case ledger.IsNotFound(err):
		status = http.StatusNotFound
	case ledger.IsAuthorization(err):
		status = http.StatusForbidden
	case ledger.IsConflict(err):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"err": err.Error()})
}
