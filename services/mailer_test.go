package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucianoNicacio/palm-cost-vape/config"
	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

func testMailer() *Mailer {
	utils.InitLogger()
	return NewMailer(config.MailConfig{Enabled: false}, config.StoreInfo{
		Name:    "Palm Coast Vape and Glassware",
		Address: "1 Palm Coast Pkwy",
		City:    "Palm Coast, FL",
		Phone:   "386-555-0100",
	})
}

func TestRenderIncludesItemsAndTotal(t *testing.T) {
	m := testMailer()

	reservation := &models.Reservation{
		ConfirmationNumber: "PCV-ABC123",
		TotalPrice:         46.40,
		Items: []models.ReservationItem{
			{ProductName: "Disposable", Quantity: 2, UnitPrice: 10.00, TotalPrice: 21.40},
		},
	}

	html := m.render(reservation, "Hi Jane!", "Your reservation has been received.")

	assert.Contains(t, html, "PCV-ABC123")
	assert.Contains(t, html, "Disposable")
	assert.Contains(t, html, "$46.40")
	assert.Contains(t, html, "Palm Coast Vape and Glassware")
}

func TestSendReservationEmailDisabledIsNoOp(t *testing.T) {
	m := testMailer()

	reservation := &models.Reservation{
		ConfirmationNumber: "PCV-XYZ789",
		Status:             models.StatusReady,
		Customer:           &models.Customer{Name: "Jane", Email: "jane@example.com"},
	}

	// disabled mailer must not dial out
	require.NoError(t, m.SendReservationEmail(reservation, models.StatusReady))
}

func TestSendReservationEmailWithoutAddress(t *testing.T) {
	m := testMailer()

	reservation := &models.Reservation{ConfirmationNumber: "PCV-NOMAIL"}
	require.NoError(t, m.SendReservationEmail(reservation, models.StatusPending))
}
