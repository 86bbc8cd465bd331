package api

import (
	"net/http"

	"frecks-web/internal/delivery/http/response"
	"frecks-web/internal/domain"
	"frecks-web/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	notificationUC domain.NotificationUsecase
}

// SendEmailRequest documents the tagged body; only the fields of the chosen type apply.
type SendEmailRequest struct {
	Type          string  `json:"type" enums:"welcome,ticket"`
	UserName      string  `json:"userName"`
	Email         string  `json:"email"`
	EventTitle    string  `json:"eventTitle,omitempty"`
	EventDate     string  `json:"eventDate,omitempty"`
	EventLocation string  `json:"eventLocation,omitempty"`
	TicketCount   int     `json:"ticketCount,omitempty"`
	TotalAmount   float64 `json:"totalAmount,omitempty"`
	OrderID       string  `json:"orderId,omitempty"`
}

// NewEmailHandler registers the transactional email route.
func NewEmailHandler(api *gin.RouterGroup, notificationUC domain.NotificationUsecase, mw ...gin.HandlerFunc) {
	handler := &EmailHandler{notificationUC: notificationUC}

	send := api.Group("/send-email", withCORS("POST, OPTIONS", mw)...)
	send.POST("", handler.SendEmail)
	send.OPTIONS("", preflight)
}

// SendEmail godoc
// @Summary      Send transactional email
// @Description  Renders the welcome or ticket template and hands it to the mail relay.
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        request  body      SendEmailRequest  true  "Tagged email request"
// @Success      200      {object}  response.Message
// @Failure      400      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]interface{}
// @Router       /send-email [post]
func (h *EmailHandler) SendEmail(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.Error(apperror.Internal("Failed to send email", err))
		return
	}

	if err := h.notificationUC.Dispatch(c.Request.Context(), body); err != nil {
		c.Error(asAppError(err, "Failed to send email"))
		return
	}

	response.Success(c, http.StatusOK, "Email sent successfully")
}
