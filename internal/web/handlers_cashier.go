package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/cashier"
	"github.com/absolutefisio/clinic-admin/internal/receipt"
)

// CashierPage loads the register. Deep-link query params (idCita, idSucursal,
// fecha) come from the calendar's charge action.
func (h *Handlers) CashierPage(w http.ResponseWriter, r *http.Request) {
	if p := h.session.Profile(); p != nil {
		h.cashier.SetViewer(p.Role, p.BranchID)
	}
	q := r.URL.Query()
	if q.Get("idCita") != "" {
		link := cashier.DeepLink{
			AppointmentID: queryInt64(q.Get("idCita")),
			BranchID:      queryInt64(q.Get("idSucursal")),
			Date:          q.Get("fecha"),
		}
		if err := h.cashier.ApplyDeepLink(r.Context(), link); err != nil {
			h.flash(err, "No se pudo abrir la cita en caja.")
		}
	} else if err := h.cashier.Load(r.Context()); err != nil {
		h.flash(err, "No se pudieron cargar las citas de caja.")
	}

	data := map[string]any{
		"Rows":    h.cashier.Visible(),
		"Filter":  h.cashier.FilterState(),
		"Bill":    h.cashier.Bill(),
		"Items":   h.cashier.Items(),
		"Total":   h.cashier.ItemsTotal(),
		"Locked":  h.cashier.Locked(),
		"Balance": h.cashier.FullBalance(),
		"Methods": []api.PaymentMethod{api.MethodCash, api.MethodCard, api.MethodTransfer, api.MethodOther},
	}
	if row, ok := h.cashier.Selected(); ok {
		data["Selected"] = row
	}
	h.render(w, r, "caja.html", "Caja", data)
}

func (h *Handlers) CashierFilter(w http.ResponseWriter, r *http.Request) {
	h.cashier.SetFilter(cashier.Filter{
		BranchID: formInt64(r, "sucursal"),
		From:     strings.TrimSpace(r.FormValue("desde")),
		To:       strings.TrimSpace(r.FormValue("hasta")),
		Query:    r.FormValue("buscar"),
	})
	if err := h.cashier.Load(r.Context()); err != nil {
		h.flash(err, "No se pudieron cargar las citas de caja.")
	}
	back(w, r, "/caja")
}

func (h *Handlers) CashierSelect(w http.ResponseWriter, r *http.Request) {
	if err := h.cashier.Select(r.Context(), formInt64(r, "id")); err != nil {
		h.flash(err, "No se pudo cargar el cobro.")
	}
	back(w, r, "/caja")
}

func (h *Handlers) CashierAddItem(w http.ResponseWriter, r *http.Request) {
	if err := h.cashier.AddItem(formInt64(r, "servicio"), formInt(r, "cantidad")); err != nil {
		h.flash(err, "No se pudo agregar el servicio.")
	}
	back(w, r, "/caja")
}

func (h *Handlers) CashierSetQuantity(w http.ResponseWriter, r *http.Request) {
	h.cashier.SetItemQuantity(int(pathID(r, "i")), formInt(r, "cantidad"))
	back(w, r, "/caja")
}

func (h *Handlers) CashierSetPrice(w http.ResponseWriter, r *http.Request) {
	h.cashier.SetItemUnitPrice(int(pathID(r, "i")), formFloat(r, "precio"))
	back(w, r, "/caja")
}

func (h *Handlers) CashierRemoveItem(w http.ResponseWriter, r *http.Request) {
	h.cashier.RemoveItem(int(pathID(r, "i")))
	back(w, r, "/caja")
}

func (h *Handlers) CashierSave(w http.ResponseWriter, r *http.Request) {
	if err := h.cashier.Save(r.Context()); err != nil {
		h.flash(err, "No se pudo guardar el cobro.")
	} else {
		h.toasts.Success("Cobro guardado")
	}
	back(w, r, "/caja")
}

func (h *Handlers) CashierPay(w http.ResponseWriter, r *http.Request) {
	amount := formFloat(r, "monto")
	if r.FormValue("saldo-completo") == "1" {
		amount = h.cashier.FullBalance()
	}
	method := api.PaymentMethod(r.FormValue("metodo"))
	if err := h.cashier.Pay(r.Context(), amount, method, r.FormValue("referencia")); err != nil {
		h.flash(err, "No se pudo registrar el pago.")
	} else {
		h.toasts.Success("Pago registrado")
	}
	back(w, r, "/caja")
}

// receiptData assembles the current selection into the receipt input.
func (h *Handlers) receiptData() (receipt.Data, error) {
	row, ok := h.cashier.Selected()
	if !ok {
		return receipt.Data{}, fmt.Errorf("caja: sin cita seleccionada")
	}
	bill := h.cashier.Bill()
	if bill == nil {
		return receipt.Data{}, fmt.Errorf("caja: sin cobro cargado")
	}
	return receipt.Data{
		Appointment: receipt.Appointment{
			ID:           row.ID,
			Patient:      row.PatientName,
			PatientPhone: row.PatientPhone,
			PatientEmail: row.PatientEmail,
			Service:      row.ServiceName,
			Specialist:   row.SpecialistName,
			Branch:       row.BranchName,
			Status:       string(row.Status),
			StartsAt:     row.StartsAt,
		},
		Bill: *bill,
	}, nil
}

// CashierReceipt streams the receipt PDF for the selected cita.
func (h *Handlers) CashierReceipt(w http.ResponseWriter, r *http.Request) {
	data, err := h.receiptData()
	if err != nil {
		h.toasts.Warning("Selecciona una cita con cobro para generar el recibo.")
		back(w, r, "/caja")
		return
	}
	pdf, err := h.receipts.Render(data)
	if err != nil {
		h.flash(err, "No se pudo generar el recibo.")
		back(w, r, "/caja")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", receipt.Filename(data.Appointment.ID)))
	_, _ = w.Write(pdf)
}

func (h *Handlers) CashierWhatsApp(w http.ResponseWriter, r *http.Request) {
	data, err := h.receiptData()
	if err != nil {
		h.toasts.Warning("Selecciona una cita con cobro primero.")
		back(w, r, "/caja")
		return
	}
	link := h.receipts.WhatsAppLink(h.cfg.WhatsAppPrefix, data)
	if link == "" {
		h.toasts.Warning("El paciente no tiene teléfono registrado.")
		back(w, r, "/caja")
		return
	}
	http.Redirect(w, r, link, http.StatusSeeOther)
}

func (h *Handlers) CashierMail(w http.ResponseWriter, r *http.Request) {
	data, err := h.receiptData()
	if err != nil {
		h.toasts.Warning("Selecciona una cita con cobro primero.")
		back(w, r, "/caja")
		return
	}
	link := h.receipts.MailtoLink(data)
	if link == "" {
		h.toasts.Warning("El paciente no tiene correo registrado.")
		back(w, r, "/caja")
		return
	}
	http.Redirect(w, r, link, http.StatusSeeOther)
}

func queryInt64(raw string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	return n
}
