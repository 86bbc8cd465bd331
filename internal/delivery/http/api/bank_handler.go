package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"frecks-web/internal/delivery/http/middleware"
	"frecks-web/internal/domain"
	"frecks-web/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type BankHandler struct {
	bankUC domain.BankUsecase
}

// BanksResponse is the success body of GET /api/get-banks.
type BanksResponse struct {
	Banks []domain.Bank `json:"banks" swaggertype:"array,object"`
}

// VerifyAccountResponse is the success body of POST /api/verify-bank-account.
type VerifyAccountResponse struct {
	Verified      bool   `json:"verified"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankID        int    `json:"bank_id"`
}

// NewBankHandler registers the payment-utility routes (public, static CORS).
// mw runs after CORS, so preflights never count against it.
func NewBankHandler(api *gin.RouterGroup, bankUC domain.BankUsecase, mw ...gin.HandlerFunc) {
	handler := &BankHandler{bankUC: bankUC}

	banks := api.Group("/get-banks", withCORS("GET, OPTIONS", mw)...)
	banks.GET("", handler.GetBanks)
	banks.OPTIONS("", preflight)

	verify := api.Group("/verify-bank-account", withCORS("POST, OPTIONS", mw)...)
	verify.POST("", handler.VerifyBankAccount)
	verify.OPTIONS("", preflight)
}

func withCORS(methods string, mw []gin.HandlerFunc) []gin.HandlerFunc {
	return append([]gin.HandlerFunc{middleware.StaticCORS(methods)}, mw...)
}

// preflight is never reached for OPTIONS (StaticCORS answers first) but gives the route a handler.
func preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

// GetBanks godoc
// @Summary      List banks
// @Description  Lists Nigerian banks known to Paystack, excluding inactive ones.
// @Tags         payments
// @Produce      json
// @Success      200  {object}  BanksResponse
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /get-banks [get]
func (h *BankHandler) GetBanks(c *gin.Context) {
	banks, err := h.bankUC.ListBanks(c.Request.Context())
	if err != nil {
		c.Error(asAppError(err, "Failed to fetch banks").With("banks", []domain.Bank{}))
		return
	}
	c.JSON(http.StatusOK, BanksResponse{Banks: banks})
}

// VerifyBankAccount godoc
// @Summary      Verify bank account
// @Description  Resolves the account holder name of a 10-digit account number through Paystack.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      domain.VerifyAccountRequest  true  "Account number and bank code"
// @Success      200      {object}  VerifyAccountResponse
// @Failure      400      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]interface{}
// @Router       /verify-bank-account [post]
func (h *BankHandler) VerifyBankAccount(c *gin.Context) {
	var req domain.VerifyAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err).With("verified", false))
		return
	}

	res, err := h.bankUC.VerifyAccount(c.Request.Context(), &req)
	if err != nil {
		c.Error(asAppError(err, "Failed to verify account").With("verified", false))
		return
	}

	c.JSON(http.StatusOK, VerifyAccountResponse{
		Verified:      true,
		AccountName:   res.AccountName,
		AccountNumber: res.AccountNumber,
		BankID:        res.BankID,
	})
}

// bindError keeps malformed JSON a server error but answers a field of the
// wrong type with the same 400 as a bad value.
func bindError(err error) *apperror.AppError {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return apperror.Internal("Failed to verify account", err)
	}
	if typeErr.Field == "account_number" {
		return apperror.BadRequest("Account number must be exactly 10 digits")
	}
	return apperror.BadRequest("Account number and bank code are required")
}
