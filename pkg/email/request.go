package email

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Type is the wire discriminator of a send-email request.
type Type string

const (
	TypeWelcome Type = "welcome"
	TypeTicket  Type = "ticket"
)

var (
	ErrMissingType = errors.New("email type is required")
	ErrUnknownType = errors.New("invalid email type")
)

// MissingFieldsError lists the required fields absent for a request variant.
type MissingFieldsError struct {
	Type   Type
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields for %s email: %s", e.Type, strings.Join(e.Fields, ", "))
}

// Request is a renderable transactional email. The set of variants is closed:
// a new template is added by declaring a type that implements render.
type Request interface {
	Type() Type
	Recipient() string
	Subject() string
	render(w io.Writer) error
}

type Welcome struct {
	UserName string `json:"userName" validate:"required"`
	Email    string `json:"email" validate:"required"`
}

func (Welcome) Type() Type          { return TypeWelcome }
func (w Welcome) Recipient() string { return w.Email }
func (w Welcome) Subject() string   { return fmt.Sprintf("Welcome to Frecks, %s!", w.UserName) }
func (w Welcome) render(out io.Writer) error {
	return templates.ExecuteTemplate(out, "welcome", w)
}

type Ticket struct {
	UserName      string  `json:"userName" validate:"required"`
	Email         string  `json:"email" validate:"required"`
	EventTitle    string  `json:"eventTitle" validate:"required"`
	EventDate     string  `json:"eventDate" validate:"required"`
	EventLocation string  `json:"eventLocation" validate:"required"`
	TicketCount   int     `json:"ticketCount" validate:"required"`
	TotalAmount   float64 `json:"totalAmount" validate:"required"`
	OrderID       string  `json:"orderId" validate:"required"`
}

func (Ticket) Type() Type          { return TypeTicket }
func (t Ticket) Recipient() string { return t.Email }
func (t Ticket) Subject() string   { return fmt.Sprintf("Your tickets for %s", t.EventTitle) }
func (t Ticket) render(out io.Writer) error {
	return templates.ExecuteTemplate(out, "ticket", t)
}

// wrongType reports a field holding the wrong JSON type as missing, since it
// cannot satisfy the variant.
func wrongType(t Type, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &MissingFieldsError{Type: t, Fields: []string{typeErr.Field}}
	}
	return err
}

// Parse decodes a tagged request body into its variant and checks the
// variant's required fields. A field of the wrong JSON type counts as missing.
// JSON syntax errors are returned unwrapped so callers can tell them apart
// from validation failures.
func Parse(body []byte, validate *validator.Validate) (Request, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, err
		}
		if typeErr.Field == "" {
			return nil, ErrMissingType
		}
		return nil, ErrUnknownType
	}

	var req Request
	switch head.Type {
	case "":
		return nil, ErrMissingType
	case TypeWelcome:
		var w Welcome
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, wrongType(head.Type, err)
		}
		req = w
	case TypeTicket:
		var t Ticket
		if err := json.Unmarshal(body, &t); err != nil {
			return nil, wrongType(head.Type, err)
		}
		req = t
	default:
		return nil, ErrUnknownType
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		missing := &MissingFieldsError{Type: head.Type}
		for _, fe := range verrs {
			missing.Fields = append(missing.Fields, fe.Field())
		}
		return nil, missing
	}
	return req, nil
}
