// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sensorgrid/ipflow-backend/internal/apperrors"
	"github.com/sensorgrid/ipflow-backend/internal/ledger"
	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

// signingContext builds the signer from the wallet claim the auth middleware
// placed in the request context.
func signingContext(c *gin.Context) ledger.SigningContext {
	wallet, _ := utils.GetWalletFromContext(c)
	return ledger.SigningContext{WalletAddress: wallet}
}

// respondServiceError maps domain errors onto HTTP status codes. Upstream
// error text is passed through untouched so callers see the ledger's own
// rejection messages.
func respondServiceError(c *gin.Context, err error) {
	var walletErr *apperrors.WalletNotConnectedError
	if errors.As(err, &walletErr) {
		utils.ErrorResponse(c, http.StatusPreconditionFailed, "WALLET_NOT_CONNECTED", err.Error(), nil)
		return
	}

	if apperrors.IsValidation(err) {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var ledgerErr *apperrors.LedgerError
	if errors.As(err, &ledgerErr) {
		utils.ErrorResponse(c, http.StatusBadGateway, "LEDGER_ERROR", ledgerErr.Message, nil)
		return
	}

	var storageErr *apperrors.StorageUploadError
	if errors.As(err, &storageErr) {
		utils.ErrorResponse(c, http.StatusBadGateway, "STORAGE_ERROR", err.Error(), nil)
		return
	}

	var fetchErr *apperrors.FetchError
	if errors.As(err, &fetchErr) {
		utils.ErrorResponse(c, http.StatusBadGateway, "FETCH_ERROR", err.Error(), nil)
		return
	}

	utils.InternalErrorResponse(c, err.Error())
}
