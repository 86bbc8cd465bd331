package email

import (
	"fmt"
	"html/template"
	"strings"
)

const layoutHead = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #1f2937; background: #f3f4f6; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #7c3aed; color: white; padding: 24px; text-align: center; border-radius: 8px 8px 0 0; }
        .content { padding: 24px; background: #ffffff; }
        .row { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid #e5e7eb; }
        .label { font-weight: bold; color: #4b5563; }
        .button { display: inline-block; background: #7c3aed; color: white; padding: 12px 24px; border-radius: 6px; text-decoration: none; }
        .footer { text-align: center; padding: 20px; color: #9ca3af; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">`

const layoutFoot = `
        <div class="footer">
            <p>&copy; Frecks. You are receiving this email because you have a Frecks account.</p>
        </div>
    </div>
</body>
</html>`

const welcomeTemplate = `{{define "welcome"}}` + layoutHead + `
        <div class="header">
            <h1>Welcome to Frecks!</h1>
        </div>
        <div class="content">
            <p>Hi {{.UserName}},</p>
            <p>Your account ({{.Email}}) is ready. Discover campus events, grab tickets and keep them all in one place.</p>
            <p><a class="button" href="https://frecks.app/">Browse events</a></p>
        </div>` + layoutFoot + `{{end}}`

const ticketTemplate = `{{define "ticket"}}` + layoutHead + `
        <div class="header">
            <h1>Your tickets are confirmed</h1>
        </div>
        <div class="content">
            <p>Hi {{.UserName}}, thanks for your order. Here are your ticket details:</p>
            <div class="row"><span class="label">Event</span><span>{{.EventTitle}}</span></div>
            <div class="row"><span class="label">Date</span><span>{{.EventDate}}</span></div>
            <div class="row"><span class="label">Location</span><span>{{.EventLocation}}</span></div>
            <div class="row"><span class="label">Tickets</span><span>{{.TicketCount}}</span></div>
            <div class="row"><span class="label">Total</span><span>{{naira .TotalAmount}}</span></div>
            <div class="row"><span class="label">Order ID</span><span>{{.OrderID}}</span></div>
            <p>Show the QR code in your Frecks dashboard at the entrance.</p>
        </div>` + layoutFoot + `{{end}}`

var templates = template.Must(
	template.New("email").
		Funcs(template.FuncMap{"naira": FormatNaira}).
		Parse(welcomeTemplate + ticketTemplate),
)

// FormatNaira renders an amount as ₦1,234.50.
func FormatNaira(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "₦" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
