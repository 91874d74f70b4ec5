// Package receipt renders the caja payment receipt as a PDF and builds the
// WhatsApp / mail share links that accompany it.
package receipt

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/absolutefisio/clinic-admin/internal/api"
)

const (
	pageMargin = 20.0
	pageWidth  = 210.0
)

// Clinic is the letterhead block at the top of the receipt.
type Clinic struct {
	Name    string
	Phone   string
	Address string
}

// Appointment carries the already-enriched cita fields the receipt shows.
type Appointment struct {
	ID           int64
	Patient      string
	PatientPhone string
	PatientEmail string
	Service      string
	Specialist   string
	Branch       string
	Status       string
	StartsAt     time.Time
}

// Data is everything one receipt needs.
type Data struct {
	Appointment Appointment
	Bill        api.Bill
	Clinic      Clinic
}

// Builder renders receipts with a fixed clinic block and timezone.
type Builder struct {
	clinic Clinic
	loc    *time.Location
	now    func() time.Time
}

func NewBuilder(clinic Clinic, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{clinic: clinic, loc: loc, now: time.Now}
}

// Filename is the suggested download name for a cita's receipt.
func Filename(appointmentID int64) string {
	return fmt.Sprintf("cobro-cita-%d.pdf", appointmentID)
}

// Render produces the receipt PDF.
func (b *Builder) Render(d Data) ([]byte, error) {
	if d.Clinic == (Clinic{}) {
		d.Clinic = b.clinic
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	y := b.header(pdf, tr, d)
	y = b.appointmentBlock(pdf, tr, d, y)
	y = b.itemsTable(pdf, tr, d, y)
	y = b.paymentSummary(pdf, tr, d, y)
	if len(d.Bill.Payments) > 0 {
		b.paymentHistory(pdf, tr, d, y)
	}
	b.footer(pdf, tr)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Builder) header(pdf *fpdf.Fpdf, tr func(string) string, d Data) float64 {
	y := pageMargin

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Text(pageMargin, y, tr(d.Clinic.Name))
	y += 7

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	if d.Clinic.Phone != "" {
		pdf.Text(pageMargin, y, tr("Tel: "+d.Clinic.Phone))
	}
	if d.Clinic.Address != "" {
		pdf.Text(pageMargin, y+4, tr(d.Clinic.Address))
		y += 12
	} else {
		y += 7
	}
	pdf.SetTextColor(0, 0, 0)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(pageMargin, y, pageWidth-pageMargin, y)
	y += 8

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(pageMargin, y, "RECIBO DE COBRO")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	ref := fmt.Sprintf("#%d - Cita #%d", d.Bill.ID, d.Appointment.ID)
	pdf.Text(pageWidth-pageMargin-pdf.GetStringWidth(ref), y, ref)
	pdf.SetTextColor(0, 0, 0)
	return y + 10
}

func (b *Builder) appointmentBlock(pdf *fpdf.Fpdf, tr func(string) string, d Data, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(pageMargin, y, "DATOS DE LA CITA")
	y += 5

	rows := [][2]string{
		{"Paciente", d.Appointment.Patient},
		{"Teléfono", orDash(d.Appointment.PatientPhone)},
		{"Correo", orDash(d.Appointment.PatientEmail)},
		{"Servicio", d.Appointment.Service},
		{"Especialista", orDash(d.Appointment.Specialist)},
		{"Fecha", SpanishDateTime(d.Appointment.StartsAt.In(b.loc))},
		{"Sucursal", d.Appointment.Branch},
		{"Estado cita", d.Appointment.Status},
	}

	pdf.SetFontSize(9)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.Text(pageMargin, y, tr(row[0]+":"))
		pdf.SetFont("Helvetica", "", 9)
		pdf.Text(pageMargin+35, y, tr(row[1]))
		y += 5
	}
	return y + 4
}

func (b *Builder) itemsTable(pdf *fpdf.Fpdf, tr func(string) string, d Data, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(pageMargin, y, "SERVICIOS")
	y += 3

	usable := pageWidth - 2*pageMargin
	widths := []float64{usable - 60, 15, 22, 23}
	headers := []string{"Servicio", "Cant.", "P/U", "Subtotal"}

	pdf.SetXY(pageMargin, y)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "", 0, "L", true, 0, "")
	}
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for idx, item := range d.Bill.Items {
		if idx%2 == 1 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetX(pageMargin)
		pdf.CellFormat(widths[0], 6, tr(itemName(item)), "", 0, "L", true, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%d", item.Quantity), "", 0, "L", true, 0, "")
		pdf.CellFormat(widths[2], 6, Money(item.UnitPrice, d.Bill.Currency), "", 0, "L", true, 0, "")
		pdf.CellFormat(widths[3], 6, Money(item.Subtotal, d.Bill.Currency), "", 0, "L", true, 0, "")
		pdf.Ln(6)
	}

	pdf.SetX(pageMargin)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 7, "TOTAL", "", 0, "R", true, 0, "")
	pdf.CellFormat(widths[3], 7, Money(d.Bill.Total, d.Bill.Currency), "", 0, "L", true, 0, "")
	pdf.Ln(7)
	return pdf.GetY() + 8
}

func (b *Builder) paymentSummary(pdf *fpdf.Fpdf, tr func(string) string, d Data, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(pageMargin, y, "RESUMEN DE PAGO")
	y += 3
	pdf.SetXY(pageMargin, y)

	rows := [][2]string{
		{"Total", Money(d.Bill.Total, d.Bill.Currency)},
		{"Pagado", Money(d.Bill.Paid, d.Bill.Currency)},
		{"Saldo", Money(d.Bill.Balance, d.Bill.Currency)},
		{"Estado", string(d.Bill.PaymentStatus)},
	}
	for i, row := range rows {
		pdf.SetX(pageMargin)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(40, 6, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		if i == len(rows)-1 {
			r, g, bl := statusColor(d.Bill.PaymentStatus)
			pdf.SetTextColor(r, g, bl)
		}
		pdf.CellFormat(40, 6, tr(row[1]), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}
	pdf.SetTextColor(0, 0, 0)
	return pdf.GetY() + 8
}

func (b *Builder) paymentHistory(pdf *fpdf.Fpdf, tr func(string) string, d Data, y float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(pageMargin, y, "HISTORIAL DE PAGOS")
	y += 3

	widths := []float64{40, 35, 60, 35}
	headers := []string{"Fecha", "Método", "Referencia", "Monto"}

	pdf.SetXY(pageMargin, y)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "", 0, "L", true, 0, "")
	}
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, p := range d.Bill.Payments {
		pdf.SetX(pageMargin)
		pdf.CellFormat(widths[0], 6, p.Date.In(b.loc).Format("02/01/2006 15:04"), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, string(p.Method), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(orDash(p.Reference)), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, Money(p.Amount, d.Bill.Currency), "", 0, "L", false, 0, "")
		pdf.Ln(6)
	}
}

func (b *Builder) footer(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(150, 150, 150)
	stamp := tr("Generado el " + SpanishDateTime(b.now().In(b.loc)))
	pdf.Text((pageWidth-pdf.GetStringWidth(stamp))/2, 287, stamp)
	pdf.SetTextColor(0, 0, 0)
}

func statusColor(s api.PaymentStatus) (int, int, int) {
	switch s {
	case api.PaymentPaid:
		return 34, 197, 94
	case api.PaymentPartial:
		return 234, 179, 8
	case api.PaymentPending:
		return 239, 68, 68
	default:
		return 100, 100, 100
	}
}

func itemName(i api.BillItem) string {
	if i.Name != "" {
		return i.Name
	}
	if i.ServiceID != nil {
		return fmt.Sprintf("Servicio #%d", *i.ServiceID)
	}
	return "Servicio"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

// Money formats an amount as "GTQ 150.00".
func Money(v float64, currency string) string {
	if currency == "" {
		currency = "GTQ"
	}
	return fmt.Sprintf("%s %.2f", currency, v)
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var spanishDays = [...]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

// SpanishDateTime renders "lunes, 1 de septiembre de 2025, 14:30".
func SpanishDateTime(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d, %s",
		spanishDays[t.Weekday()], t.Day(), spanishMonths[t.Month()-1], t.Year(),
		t.Format("15:04"))
}

// SpanishDate renders "1 de septiembre de 2025".
func SpanishDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

var nonDigitRe = regexp.MustCompile(`\D+`)

// escape percent-encodes for a URL query; wa.me and mail clients expect
// %20 for spaces, not '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// WhatsAppLink builds the wa.me share URL with the receipt summary as the
// message text. prefix is the country code to prepend (e.g. "502"); an
// empty phone yields an empty link.
func (b *Builder) WhatsAppLink(prefix string, d Data) string {
	digits := nonDigitRe.ReplaceAllString(d.Appointment.PatientPhone, "")
	if digits == "" {
		return ""
	}
	msg := strings.Join([]string{
		fmt.Sprintf("Hola %s, adjunto el resumen de su cita en %s.", d.Appointment.Patient, b.clinic.Name),
		"",
		fmt.Sprintf("Cita #%d", d.Appointment.ID),
		SpanishDateTime(d.Appointment.StartsAt.In(b.loc)),
		"Servicio: " + d.Appointment.Service,
		"",
		"Total:  " + Money(d.Bill.Total, d.Bill.Currency),
		"Pagado: " + Money(d.Bill.Paid, d.Bill.Currency),
		"Saldo:  " + Money(d.Bill.Balance, d.Bill.Currency),
		"",
		"(El PDF del recibo fue descargado en su dispositivo)",
	}, "\n")
	return fmt.Sprintf("https://wa.me/%s%s?text=%s", prefix, digits, escape(msg))
}

// MailtoLink builds the mailto: URL with the summary in the body; an empty
// patient email yields an empty link.
func (b *Builder) MailtoLink(d Data) string {
	email := strings.TrimSpace(d.Appointment.PatientEmail)
	if email == "" {
		return ""
	}
	subject := fmt.Sprintf("Recibo de cita #%d - %s", d.Appointment.ID, b.clinic.Name)
	body := strings.Join([]string{
		fmt.Sprintf("Estimado/a %s,", d.Appointment.Patient),
		"",
		fmt.Sprintf("Adjunto encontrará el recibo de su cita del %s.", SpanishDate(d.Appointment.StartsAt.In(b.loc))),
		"",
		"Resumen:",
		"  Servicio: " + d.Appointment.Service,
		"  Total:    " + Money(d.Bill.Total, d.Bill.Currency),
		"  Pagado:   " + Money(d.Bill.Paid, d.Bill.Currency),
		"  Saldo:    " + Money(d.Bill.Balance, d.Bill.Currency),
		"  Estado:   " + string(d.Bill.PaymentStatus),
		"",
		"(El PDF del recibo fue descargado — adjúntelo manualmente a este correo)",
		"",
		"Saludos,",
		b.clinic.Name,
	}, "\n")
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		email, escape(subject), escape(body))
}
