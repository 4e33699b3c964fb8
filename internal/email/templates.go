package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template data for order mails.
type OrderMail struct {
	CustomerName string
	OrderNumber  string
	Status       string
	StatusLine   string
	Total        float64
	TrackingID   string
	Carrier      string
}

// Template data for return mails.
type ReturnMail struct {
	CustomerName string
	OrderNumber  string
	Status       string
	Reason       string
	RefundAmount float64
}

var orderTmpl = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Hi {{.CustomerName}},</h2>
  <p>{{.StatusLine}}</p>
  <table cellpadding="4">
    <tr><td><b>Order</b></td><td>{{.OrderNumber}}</td></tr>
    <tr><td><b>Status</b></td><td>{{.Status}}</td></tr>
    {{if .TrackingID}}<tr><td><b>Tracking</b></td><td>{{.TrackingID}} ({{.Carrier}})</td></tr>{{end}}
    {{if .Total}}<tr><td><b>Total</b></td><td>&#8377;{{printf "%.0f" .Total}}</td></tr>{{end}}
  </table>
  <p>Thank you for shopping with Bazario.</p>
</body>
</html>`))

var returnTmpl = template.Must(template.New("return").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Hi {{.CustomerName}},</h2>
  <p>Your return for order <b>{{.OrderNumber}}</b> is now <b>{{.Status}}</b>.</p>
  {{if .Reason}}<p>Note: {{.Reason}}</p>{{end}}
  {{if .RefundAmount}}<p>Refund amount: <b>&#8377;{{printf "%.0f" .RefundAmount}}</b>. It should reach your payment method within 5&ndash;7 business days.</p>{{end}}
  <p>Thank you for shopping with Bazario.</p>
</body>
</html>`))

var verifyTmpl = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Welcome to Bazario!</h2>
  <p>Your verification code is:</p>
  <p style="font-size: 28px; letter-spacing: 4px;"><b>{{.Code}}</b></p>
  <p>This code expires in 15 minutes.</p>
</body>
</html>`))

var sellerTmpl = template.Must(template.New("seller").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Hi {{.StoreName}},</h2>
  <p>{{.Line}}</p>
  <p>&mdash; The Bazario team</p>
</body>
</html>`))

// RenderOrderMail builds the subject and HTML body for an order status mail.
func RenderOrderMail(d OrderMail) (subject, body string, err error) {
	if d.StatusLine == "" {
		d.StatusLine = fmt.Sprintf("Your order %s is now %s.", d.OrderNumber, d.Status)
	}
	var buf bytes.Buffer
	if err := orderTmpl.Execute(&buf, d); err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Order %s: %s", d.OrderNumber, d.Status), buf.String(), nil
}

// RenderReturnMail builds the subject and HTML body for a return update mail.
func RenderReturnMail(d ReturnMail) (subject, body string, err error) {
	var buf bytes.Buffer
	if err := returnTmpl.Execute(&buf, d); err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Return update for order %s", d.OrderNumber), buf.String(), nil
}

// RenderVerificationMail builds the account verification mail.
func RenderVerificationMail(code string) (subject, body string, err error) {
	var buf bytes.Buffer
	if err := verifyTmpl.Execute(&buf, struct{ Code string }{code}); err != nil {
		return "", "", err
	}
	return "Verify your Bazario account", buf.String(), nil
}

// RenderSellerMail builds onboarding decision mails for sellers.
func RenderSellerMail(storeName, line, subject string) (string, string, error) {
	var buf bytes.Buffer
	data := struct{ StoreName, Line string }{storeName, line}
	if err := sellerTmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
