package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"frecks-web/internal/delivery/http/middleware"
	"frecks-web/internal/domain"
	"frecks-web/internal/usecase"
	"frecks-web/pkg/email"
	"frecks-web/pkg/paystack"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGateway struct {
	banks       []domain.Bank
	err         error
	resolution  *domain.AccountResolution
	resolveHits int
}

func (g *fakeGateway) ListBanks(context.Context, string) ([]domain.Bank, error) {
	return g.banks, g.err
}

func (g *fakeGateway) ResolveAccount(context.Context, string, string) (*domain.AccountResolution, error) {
	g.resolveHits++
	if g.err != nil {
		return nil, g.err
	}
	return g.resolution, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func newTestEngine(gw *fakeGateway, sender *fakeSender) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	api := r.Group("/api")
	NewBankHandler(api, usecase.NewBankUsecase(gw))
	NewEmailHandler(api, usecase.NewNotificationUsecase(sender, validator.New(), func() string { return "hello@frecks.app" }))
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bankList(t *testing.T, raw string) []domain.Bank {
	t.Helper()
	var banks []domain.Bank
	require.NoError(t, json.Unmarshal([]byte(raw), &banks))
	return banks
}

func TestGetBanks(t *testing.T) {
	t.Run("Should relay only active banks", func(t *testing.T) {
		gw := &fakeGateway{banks: bankList(t, `[{"code":"001","active":true},{"code":"002","active":false}]`)}
		w := do(newTestEngine(gw, &fakeSender{}), http.MethodGet, "/api/get-banks", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"banks":[{"code":"001","active":true}]}`, w.Body.String())
	})

	t.Run("Should return empty list with each error class", func(t *testing.T) {
		cases := []struct {
			err  error
			code int
			body string
		}{
			{paystack.ErrNotConfigured, http.StatusInternalServerError, `{"error":"Paystack secret key not configured","banks":[]}`},
			{&paystack.APIError{StatusCode: 401, Message: "Invalid key"}, http.StatusBadRequest, `{"error":"Invalid key","banks":[]}`},
			{errors.New("dial tcp: timeout"), http.StatusInternalServerError, `{"error":"Failed to fetch banks","banks":[]}`},
		}
		for _, tc := range cases {
			w := do(newTestEngine(&fakeGateway{err: tc.err}, &fakeSender{}), http.MethodGet, "/api/get-banks", "")
			assert.Equal(t, tc.code, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		}
	})
}

func TestVerifyBankAccount(t *testing.T) {
	t.Run("Should reject short account numbers without calling processor", func(t *testing.T) {
		gw := &fakeGateway{}
		w := do(newTestEngine(gw, &fakeSender{}), http.MethodPost, "/api/verify-bank-account", `{"account_number":"123","bank_code":"001"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"verified":false,"error":"Account number must be exactly 10 digits"}`, w.Body.String())
		assert.Equal(t, 0, gw.resolveHits)
	})

	t.Run("Should reject missing fields", func(t *testing.T) {
		w := do(newTestEngine(&fakeGateway{}, &fakeSender{}), http.MethodPost, "/api/verify-bank-account", `{"account_number":"0123456789"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"verified":false,"error":"Account number and bank code are required"}`, w.Body.String())
	})

	t.Run("Should relay resolution", func(t *testing.T) {
		gw := &fakeGateway{resolution: &domain.AccountResolution{AccountName: "ADA OBI", AccountNumber: "0123456789", BankID: 9}}
		w := do(newTestEngine(gw, &fakeSender{}), http.MethodPost, "/api/verify-bank-account", `{"account_number":"0123456789","bank_code":"058"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"verified":true,"account_name":"ADA OBI","account_number":"0123456789","bank_id":9}`, w.Body.String())
	})

	t.Run("Should map processor failure to 400", func(t *testing.T) {
		gw := &fakeGateway{err: &paystack.APIError{StatusCode: 422}}
		w := do(newTestEngine(gw, &fakeSender{}), http.MethodPost, "/api/verify-bank-account", `{"account_number":"0123456789","bank_code":"058"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"verified":false,"error":"Could not verify account"}`, w.Body.String())
	})

	t.Run("Should reject wrongly typed fields", func(t *testing.T) {
		cases := []struct {
			body string
			msg  string
		}{
			{`{"account_number":1234567890,"bank_code":"001"}`, "Account number must be exactly 10 digits"},
			{`{"account_number":"0123456789","bank_code":58}`, "Account number and bank code are required"},
			{`["0123456789","058"]`, "Account number and bank code are required"},
		}
		for _, tc := range cases {
			gw := &fakeGateway{}
			w := do(newTestEngine(gw, &fakeSender{}), http.MethodPost, "/api/verify-bank-account", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, tc.body)
			assert.JSONEq(t, `{"verified":false,"error":"`+tc.msg+`"}`, w.Body.String())
			assert.Equal(t, 0, gw.resolveHits)
		}
	})

	t.Run("Should treat unparseable body as thrown error", func(t *testing.T) {
		w := do(newTestEngine(&fakeGateway{}, &fakeSender{}), http.MethodPost, "/api/verify-bank-account", `{oops`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"verified":false,"error":"Failed to verify account"}`, w.Body.String())
	})
}

func TestSendEmail(t *testing.T) {
	t.Run("Should send a welcome email", func(t *testing.T) {
		sender := &fakeSender{}
		w := do(newTestEngine(&fakeGateway{}, sender), http.MethodPost, "/api/send-email", `{"type":"welcome","userName":"Ada","email":"ada@example.com"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"Email sent successfully"}`, w.Body.String())
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "Welcome to Frecks, Ada!", sender.sent[0].Subject)
	})

	t.Run("Should reject welcome without email and not send", func(t *testing.T) {
		sender := &fakeSender{}
		w := do(newTestEngine(&fakeGateway{}, sender), http.MethodPost, "/api/send-email", `{"type":"welcome","userName":"Ada"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Missing required fields for welcome email"}`, w.Body.String())
		assert.Empty(t, sender.sent)
	})

	t.Run("Should reject ticket with missing fields", func(t *testing.T) {
		w := do(newTestEngine(&fakeGateway{}, &fakeSender{}), http.MethodPost, "/api/send-email", `{"type":"ticket","userName":"A","email":"a@b.com"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Missing required fields for ticket email"}`, w.Body.String())
	})

	t.Run("Should reject wrongly typed ticket fields", func(t *testing.T) {
		bodies := []string{
			`{"type":"ticket","userName":"Ada","email":"ada@example.com","eventTitle":"DevFest","eventDate":"Sat","eventLocation":"Lagos","ticketCount":"2","totalAmount":1500,"orderId":"ord_1"}`,
			`{"type":"ticket","userName":"Ada","email":"ada@example.com","eventTitle":"DevFest","eventDate":"Sat","eventLocation":"Lagos","ticketCount":2,"totalAmount":1500,"orderId":12345}`,
		}
		for _, body := range bodies {
			sender := &fakeSender{}
			w := do(newTestEngine(&fakeGateway{}, sender), http.MethodPost, "/api/send-email", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Missing required fields for ticket email"}`, w.Body.String())
			assert.Empty(t, sender.sent)
		}
	})

	t.Run("Should reject unknown types", func(t *testing.T) {
		w := do(newTestEngine(&fakeGateway{}, &fakeSender{}), http.MethodPost, "/api/send-email", `{"type":"promo"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Invalid email type"}`, w.Body.String())
	})

	t.Run("Should map sender failure to 500", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("relay down")}
		w := do(newTestEngine(&fakeGateway{}, sender), http.MethodPost, "/api/send-email", `{"type":"welcome","userName":"Ada","email":"ada@example.com"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to send email"}`, w.Body.String())
	})
}

func TestPreflight(t *testing.T) {
	r := newTestEngine(&fakeGateway{}, &fakeSender{})
	cases := map[string]string{
		"/api/get-banks":           "GET, OPTIONS",
		"/api/verify-bank-account": "POST, OPTIONS",
		"/api/send-email":          "POST, OPTIONS",
	}
	for path, methods := range cases {
		w := do(r, http.MethodOptions, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, methods, w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	}
}
