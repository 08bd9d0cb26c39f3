package services

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/LucianoNicacio/palm-cost-vape/config"
	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

// Mailer sends reservation emails over SMTP. With Enabled=false every
// send is a logged no-op, which keeps development and CI quiet.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	store   config.StoreInfo
	enabled bool
}

func NewMailer(cfg config.MailConfig, store config.StoreInfo) *Mailer {
	return &Mailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		store:   store,
		enabled: cfg.Enabled,
	}
}

// SendReservationEmail sends the message matching the reservation's
// (new) status: order received, ready, completed, cancelled, or a
// generic update for anything else. No-op when the reservation has no
// resolvable email.
func (m *Mailer) SendReservationEmail(r *models.Reservation, status string) error {
	email := r.NotificationEmail()
	if email == "" {
		return nil
	}

	var subject, headline, body string
	switch status {
	case models.StatusPending:
		subject = fmt.Sprintf("Reservation Confirmed - %s", r.ConfirmationNumber)
		headline = fmt.Sprintf("Hi %s!", m.customerName(r))
		body = "Your reservation has been received. We'll email you again when it's ready for pickup.<br>" +
			m.pickupInstructions() + "<br>Please bring a valid ID."
	case models.StatusReady:
		subject = fmt.Sprintf("Your Order is Ready - %s", r.ConfirmationNumber)
		headline = "Your order is ready for pickup!"
		body = fmt.Sprintf("Total due at pickup: <strong>%s</strong><br>", utils.FormatPrice(r.TotalPrice)) +
			m.pickupInstructions() + "<br>Orders not picked up within 24 hours are cancelled."
	case models.StatusCompleted:
		subject = fmt.Sprintf("Order Completed - %s", r.ConfirmationNumber)
		headline = "Thanks!"
		body = "Your reservation has been completed. We hope to see you again soon."
	case models.StatusCancelled:
		subject = fmt.Sprintf("Reservation Cancelled - %s", r.ConfirmationNumber)
		headline = "Your reservation has been cancelled."
		if r.CancellationReason == models.CancelReasonAutoExpired {
			body = "The 24-hour pickup window has passed, so your reservation was cancelled and the items returned to stock."
		} else {
			body = "If you believe this is a mistake, please contact the store."
		}
	default:
		subject = fmt.Sprintf("Reservation Update - %s", r.ConfirmationNumber)
		headline = "Update"
		body = fmt.Sprintf("Status: %s", r.StatusLabel())
	}

	html := m.render(r, headline, body)
	return m.send(email, subject, html)
}

func (m *Mailer) customerName(r *models.Reservation) string {
	if r.Customer != nil && r.Customer.Name != "" {
		return r.Customer.Name
	}
	return "there"
}

func (m *Mailer) pickupInstructions() string {
	return fmt.Sprintf("Pickup: %s, %s, %s (%s)",
		m.store.Name, m.store.Address, m.store.City, m.store.Phone)
}

// render builds the shared email layout: headline, confirmation code,
// itemized lines and the order total.
func (m *Mailer) render(r *models.Reservation, headline, body string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>%s</h2>", headline))
	b.WriteString(fmt.Sprintf("<p><strong>Confirmation: %s</strong></p>", r.ConfirmationNumber))
	b.WriteString(fmt.Sprintf("<p>%s</p>", body))

	if len(r.Items) > 0 {
		b.WriteString("<table><tr><th>Item</th><th>Qty</th><th>Price</th><th>Total</th></tr>")
		for _, item := range r.Items {
			b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>",
				item.ProductName, item.Quantity,
				utils.FormatPrice(item.UnitPrice), utils.FormatPrice(item.TotalPrice)))
		}
		b.WriteString("</table>")
		b.WriteString(fmt.Sprintf("<p><strong>Order Total: %s</strong></p>", utils.FormatPrice(r.TotalPrice)))
	}

	b.WriteString(fmt.Sprintf("<p>%s</p>", m.store.Name))
	return b.String()
}

func (m *Mailer) send(to, subject, html string) error {
	if !m.enabled {
		utils.InfoLogger.Printf("mail disabled, skipping %q to %s", subject, to)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	return m.dialer.DialAndSend(msg)
}
