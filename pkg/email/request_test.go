package email

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	validate := validator.New()

	t.Run("Should decode welcome variant", func(t *testing.T) {
		req, err := Parse([]byte(`{"type":"welcome","userName":"Ada","email":"ada@example.com"}`), validate)
		require.NoError(t, err)
		w, ok := req.(Welcome)
		require.True(t, ok)
		assert.Equal(t, "Ada", w.UserName)
		assert.Equal(t, "ada@example.com", req.Recipient())
		assert.Equal(t, "Welcome to Frecks, Ada!", req.Subject())
	})

	t.Run("Should decode ticket variant", func(t *testing.T) {
		req, err := Parse([]byte(`{"type":"ticket","userName":"Ada","email":"ada@example.com","eventTitle":"DevFest",
			"eventDate":"Sat 8 Nov","eventLocation":"Lagos","ticketCount":2,"totalAmount":1500.5,"orderId":"ord_1"}`), validate)
		require.NoError(t, err)
		tk, ok := req.(Ticket)
		require.True(t, ok)
		assert.Equal(t, 2, tk.TicketCount)
		assert.Equal(t, "Your tickets for DevFest", req.Subject())
	})

	t.Run("Should classify invalid requests", func(t *testing.T) {
		_, err := Parse([]byte(`{"userName":"Ada"}`), validate)
		assert.ErrorIs(t, err, ErrMissingType)

		_, err = Parse([]byte(`{"type":"promo"}`), validate)
		assert.ErrorIs(t, err, ErrUnknownType)

		_, err = Parse([]byte(`{"type":"ticket","userName":"Ada","email":"ada@example.com","ticketCount":0}`), validate)
		var missing *MissingFieldsError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, TypeTicket, missing.Type)
		assert.Contains(t, missing.Fields, "TicketCount")
		assert.Contains(t, missing.Fields, "OrderID")
	})

	t.Run("Should treat wrongly typed fields as missing", func(t *testing.T) {
		cases := map[string]string{
			"string ticket count": `{"type":"ticket","userName":"Ada","email":"ada@example.com","eventTitle":"DevFest",
				"eventDate":"Sat 8 Nov","eventLocation":"Lagos","ticketCount":"2","totalAmount":1500,"orderId":"ord_1"}`,
			"numeric order id": `{"type":"ticket","userName":"Ada","email":"ada@example.com","eventTitle":"DevFest",
				"eventDate":"Sat 8 Nov","eventLocation":"Lagos","ticketCount":2,"totalAmount":1500,"orderId":12345}`,
			"numeric user name": `{"type":"welcome","userName":7,"email":"ada@example.com"}`,
		}
		for name, body := range cases {
			_, err := Parse([]byte(body), validate)
			var missing *MissingFieldsError
			assert.ErrorAs(t, err, &missing, name)
		}

		_, err := Parse([]byte(`{"type":5}`), validate)
		assert.ErrorIs(t, err, ErrUnknownType)

		_, err = Parse([]byte(`[]`), validate)
		assert.ErrorIs(t, err, ErrMissingType)
	})

	t.Run("Should return syntax errors unclassified", func(t *testing.T) {
		_, err := Parse([]byte(`{"type":`), validate)
		require.Error(t, err)
		var missing *MissingFieldsError
		assert.NotErrorAs(t, err, &missing)
		assert.NotErrorIs(t, err, ErrMissingType)
	})
}

func TestRender(t *testing.T) {
	msg, err := Render("Frecks <hello@frecks.app>", Ticket{
		UserName: "Ada", Email: "ada@example.com", EventTitle: "DevFest <Live>",
		EventDate: "Sat 8 Nov", EventLocation: "Lagos", TicketCount: 2, TotalAmount: 1234.5, OrderID: "ord_1",
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Your tickets for DevFest <Live>", msg.Subject)
	assert.Contains(t, msg.HTML, "₦1,234.50")
	assert.Contains(t, msg.HTML, "DevFest &lt;Live&gt;")
	assert.True(t, strings.HasPrefix(msg.HTML, "<!DOCTYPE html>"))
}

func TestFormatNaira(t *testing.T) {
	assert.Equal(t, "₦0.00", FormatNaira(0))
	assert.Equal(t, "₦999.99", FormatNaira(999.99))
	assert.Equal(t, "₦1,000,000.00", FormatNaira(1_000_000))
}

func TestHeaderSafe(t *testing.T) {
	assert.Equal(t, "HiBcc: x@y.z", headerSafe("Hi\r\nBcc: x@y.z"))
}
