package usecase

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"frecks-web/internal/domain"
	"frecks-web/pkg/apperror"
	"frecks-web/pkg/logger"
	"frecks-web/pkg/paystack"
)

const (
	bankCountry         = "nigeria"
	accountNumberLength = 10
)

// gatewayMessages are the client-facing texts for each failure class of one route.
type gatewayMessages struct {
	notConfigured string
	upstream      string
	thrown        string
}

var (
	listBanksMessages = gatewayMessages{
		notConfigured: "Paystack secret key not configured",
		upstream:      "Failed to fetch banks",
		thrown:        "Failed to fetch banks",
	}
	verifyAccountMessages = gatewayMessages{
		notConfigured: "Payment service not configured",
		upstream:      "Could not verify account",
		thrown:        "Failed to verify account",
	}
)

// BankGateway is the subset of the Paystack client the bank usecase needs.
type BankGateway interface {
	ListBanks(ctx context.Context, country string) ([]domain.Bank, error)
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*domain.AccountResolution, error)
}

type bankUsecase struct {
	gateway BankGateway
}

func NewBankUsecase(gateway BankGateway) domain.BankUsecase {
	return &bankUsecase{gateway: gateway}
}

// ListBanks returns the processor's banks minus those explicitly marked inactive.
func (uc *bankUsecase) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	banks, err := uc.gateway.ListBanks(ctx, bankCountry)
	if err != nil {
		return nil, classifyGatewayError(err, listBanksMessages)
	}

	active := make([]domain.Bank, 0, len(banks))
	for _, b := range banks {
		if b.IsActive() {
			active = append(active, b)
		}
	}
	return active, nil
}

// VerifyAccount validates the request locally before any upstream call.
func (uc *bankUsecase) VerifyAccount(ctx context.Context, req *domain.VerifyAccountRequest) (*domain.AccountResolution, error) {
	if strings.TrimSpace(req.AccountNumber) == "" || strings.TrimSpace(req.BankCode) == "" {
		return nil, apperror.BadRequest("Account number and bank code are required")
	}
	if utf8.RuneCountInString(req.AccountNumber) != accountNumberLength {
		return nil, apperror.BadRequest("Account number must be exactly 10 digits")
	}

	res, err := uc.gateway.ResolveAccount(ctx, req.AccountNumber, req.BankCode)
	if err != nil {
		return nil, classifyGatewayError(err, verifyAccountMessages)
	}
	return res, nil
}

// classifyGatewayError maps processor failures onto the error taxonomy:
// missing secret → 500, processor-declared failure → 400, anything else → 500.
func classifyGatewayError(err error, msgs gatewayMessages) error {
	if errors.Is(err, paystack.ErrNotConfigured) {
		logger.Log.Error("paystack secret key missing")
		return apperror.Config(msgs.notConfigured)
	}

	var apiErr *paystack.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = msgs.upstream
		}
		logger.Log.Warn("paystack reported failure", "status", apiErr.StatusCode, "message", apiErr.Message)
		return apperror.Upstream(msg)
	}

	logger.Log.Error("paystack request failed", "error", err)
	return apperror.Internal(msgs.thrown, err)
}
