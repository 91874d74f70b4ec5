package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absolutefisio/clinic-admin/internal/api"
)

var gt = time.FixedZone("America/Guatemala", -6*60*60)

func sampleData() Data {
	svc := int64(4)
	return Data{
		Appointment: Appointment{
			ID:           77,
			Patient:      "Ana López",
			PatientPhone: "5551-2345",
			PatientEmail: "ana@correo.gt",
			Service:      "Fisioterapia",
			Specialist:   "Eva Ruiz",
			Branch:       "Centro",
			Status:       "TERMINADA",
			StartsAt:     time.Date(2025, 9, 1, 14, 30, 0, 0, gt),
		},
		Bill: api.Bill{
			ID:            9,
			AppointmentID: 77,
			Currency:      "GTQ",
			Items: []api.BillItem{
				{ServiceID: &svc, Name: "Fisioterapia", Quantity: 2, UnitPrice: 150, Subtotal: 300},
				{ServiceID: nil, Name: "", Quantity: 1, UnitPrice: 50, Subtotal: 50},
			},
			Payments: []api.BillPayment{
				{Date: time.Date(2025, 9, 1, 15, 0, 0, 0, gt), Amount: 200, Method: api.MethodCash},
				{Date: time.Date(2025, 9, 2, 10, 0, 0, 0, gt), Amount: 100, Method: api.MethodCard, Reference: "VISA-0042"},
			},
			Total:         350,
			Paid:          300,
			Balance:       50,
			PaymentStatus: api.PaymentPartial,
		},
	}
}

func newBuilder() *Builder {
	b := NewBuilder(Clinic{
		Name:    "Clínica Absolute",
		Phone:   "2335-5691",
		Address: "Guatemala, Guatemala",
	}, gt)
	b.now = func() time.Time { return time.Date(2025, 9, 2, 11, 0, 0, 0, gt) }
	return b
}

func TestRenderProducesPDF(t *testing.T) {
	out, err := newBuilder().Render(sampleData())
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(string(out[:5]), "%PDF-"), "PDF magic header")
}

func TestRenderWithoutPayments(t *testing.T) {
	d := sampleData()
	d.Bill.Payments = nil
	out, err := newBuilder().Render(d)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestWhatsAppLink(t *testing.T) {
	link := newBuilder().WhatsAppLink("502", sampleData())
	assert.True(t, strings.HasPrefix(link, "https://wa.me/50255512345?text="), link)
	assert.Contains(t, link, "Cita%20%2377")
	assert.Contains(t, link, "GTQ%20350.00")
	assert.NotContains(t, link, "+", "spaces must encode as %20")
}

func TestWhatsAppLinkWithoutPhone(t *testing.T) {
	d := sampleData()
	d.Appointment.PatientPhone = ""
	assert.Empty(t, newBuilder().WhatsAppLink("502", d))
}

func TestMailtoLink(t *testing.T) {
	link := newBuilder().MailtoLink(sampleData())
	assert.True(t, strings.HasPrefix(link, "mailto:ana@correo.gt?subject="), link)
	assert.Contains(t, link, "Recibo%20de%20cita%20%2377")
	assert.Contains(t, link, "Saldo%3A%20%20%20%20GTQ%2050.00")
}

func TestMailtoLinkWithoutEmail(t *testing.T) {
	d := sampleData()
	d.Appointment.PatientEmail = "  "
	assert.Empty(t, newBuilder().MailtoLink(d))
}

func TestSpanishDateTime(t *testing.T) {
	got := SpanishDateTime(time.Date(2025, 9, 1, 14, 30, 0, 0, gt))
	assert.Equal(t, "lunes, 1 de septiembre de 2025, 14:30", got)

	got = SpanishDateTime(time.Date(2025, 12, 6, 8, 5, 0, 0, gt))
	assert.Equal(t, "sábado, 6 de diciembre de 2025, 08:05", got)
}

func TestSpanishDate(t *testing.T) {
	assert.Equal(t, "1 de septiembre de 2025", SpanishDate(time.Date(2025, 9, 1, 0, 0, 0, 0, gt)))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "GTQ 150.00", Money(150, ""))
	assert.Equal(t, "USD 19.99", Money(19.99, "USD"))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "cobro-cita-77.pdf", Filename(77))
}
