// Package cashier is the caja screen: the day's appointments with their
// bills, local item editing with an explicit save, and payment capture
// capped at the outstanding balance.
package cashier

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/async"
	"github.com/absolutefisio/clinic-admin/internal/catalog"
	"github.com/absolutefisio/clinic-admin/internal/ui"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

const defaultCurrency = "GTQ"

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Row is an appointment enriched for the caja list, including the contact
// data the receipt needs and the bill's payment state once known.
type Row struct {
	api.Appointment
	PatientName    string
	PatientPhone   string
	PatientEmail   string
	ServiceName    string
	BranchName     string
	SpecialistName string
	PaymentStatus  api.PaymentStatus
}

// Filter narrows the caja list. From and To are inclusive dates in
// "2006-01-02"; BranchID 0 means all branches (admins only).
type Filter struct {
	BranchID int64
	From     string
	To       string
	Query    string
}

// DeepLink carries the /caja query parameters set by the calendar's charge
// shortcut.
type DeepLink struct {
	AppointmentID int64
	BranchID      int64
	Date          string
}

// Screen is the caja view-model. Item edits are local until Save; payments
// go straight to the backend.
type Screen struct {
	client   *api.Client
	catalogs *catalog.Aggregator
	logger   *logging.Logger
	loc      *time.Location

	guard async.Guard

	mu           sync.Mutex
	role         api.Role
	viewerBranch int64
	cat          *catalog.Catalog
	idx          *catalog.Index
	rows         []Row
	filter       Filter
	selectedID   int64
	bill         *api.Bill
	items        []api.BillItem
}

func NewScreen(client *api.Client, catalogs *catalog.Aggregator, logger *logging.Logger, loc *time.Location) *Screen {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	today := time.Now().In(loc).Format("2006-01-02")
	return &Screen{
		client:   client,
		catalogs: catalogs,
		logger:   logger,
		loc:      loc,
		filter:   Filter{From: today, To: today},
	}
}

// SetViewer pins the screen to the signed-in user. Non-admin roles are
// locked to their own branch and cannot widen the branch filter.
func (s *Screen) SetViewer(role api.Role, branchID *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = role
	if branchID != nil {
		s.viewerBranch = *branchID
	} else {
		s.viewerBranch = 1
	}
	if !isAdmin(role) {
		s.filter.BranchID = s.viewerBranch
	}
}

func isAdmin(role api.Role) bool {
	return role == api.RoleSuperAdmin || role == api.RoleAdmin
}

// ApplyDeepLink folds the calendar's query parameters into the filter so
// the linked cita falls inside the listed range, then loads and selects it.
func (s *Screen) ApplyDeepLink(ctx context.Context, link DeepLink) error {
	s.mu.Lock()
	if d := link.Date; len(d) >= 10 && dateRe.MatchString(d[:10]) {
		s.filter.From = d[:10]
		s.filter.To = d[:10]
	}
	if link.BranchID != 0 && isAdmin(s.role) {
		s.filter.BranchID = link.BranchID
	}
	s.mu.Unlock()

	if err := s.Load(ctx); err != nil {
		return err
	}
	if link.AppointmentID != 0 {
		if _, ok := s.Find(link.AppointmentID); ok {
			return s.Select(ctx, link.AppointmentID)
		}
	}
	return nil
}

// Load fetches the catalog and the citas in the active date range.
func (s *Screen) Load(ctx context.Context) error {
	token := s.guard.Begin()

	cat, err := s.catalogs.Get(ctx, false)
	if err != nil {
		return err
	}
	idx := catalog.NewIndex(cat)

	s.mu.Lock()
	filter := s.filter
	role := s.role
	viewerBranch := s.viewerBranch
	s.mu.Unlock()

	from, to, err := rangeBounds(filter.From, filter.To, s.loc)
	if err != nil {
		return ui.Invalid("Selecciona un rango de fechas válido.")
	}

	branchID := filter.BranchID
	if !isAdmin(role) {
		branchID = viewerBranch
	}

	appts, err := s.fetchRange(ctx, cat, branchID, from, to)
	if err != nil {
		return err
	}

	rows := make([]Row, 0, len(appts))
	for _, a := range appts {
		rows = append(rows, enrich(a, idx))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StartsAt.Before(rows[j].StartsAt)
	})

	s.guard.Apply(token, func() {
		s.mu.Lock()
		s.cat = cat
		s.idx = idx
		s.rows = rows
		s.mu.Unlock()
	})
	return nil
}

// rangeBounds expands inclusive dates to the local day boundaries.
func rangeBounds(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.ParseInLocation("2006-01-02", to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end.Add(24*time.Hour - time.Second), nil
}

func (s *Screen) fetchRange(ctx context.Context, cat *catalog.Catalog, branchID int64, from, to time.Time) ([]api.Appointment, error) {
	if branchID != 0 {
		return s.client.ListAppointments(ctx, api.AppointmentFilter{BranchID: branchID, From: from, To: to})
	}

	results := make([][]api.Appointment, len(cat.Branches))
	errs := make([]error, len(cat.Branches))
	var wg sync.WaitGroup
	for i, b := range cat.Branches {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			results[i], errs[i] = s.client.ListAppointments(ctx, api.AppointmentFilter{BranchID: id, From: from, To: to})
		}(i, b.ID)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[int64]struct{})
	var merged []api.Appointment
	for _, batch := range results {
		for _, a := range batch {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			merged = append(merged, a)
		}
	}
	return merged, nil
}

func enrich(a api.Appointment, idx *catalog.Index) Row {
	r := Row{
		Appointment:    a,
		PatientName:    idx.PatientName(a.PatientID),
		ServiceName:    idx.ServiceName(a.ServiceID),
		BranchName:     idx.BranchName(a.BranchID),
		SpecialistName: idx.SpecialistName(a.SpecialistID),
	}
	if p, ok := idx.Patient(a.PatientID); ok {
		r.PatientPhone = p.Phone
		r.PatientEmail = p.Email
	}
	return r
}

// SetFilter swaps the filter. Non-admins cannot widen the branch; the
// caller reloads when the range or branch changed.
func (s *Screen) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !isAdmin(s.role) {
		f.BranchID = s.viewerBranch
	}
	s.filter = f
}

// FilterState returns the active filter.
func (s *Screen) FilterState() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Visible applies the text filter over patient, phone, service, and status.
func (s *Screen) Visible() []Row {
	s.mu.Lock()
	rows := s.rows
	q := strings.ToLower(strings.TrimSpace(s.filter.Query))
	s.mu.Unlock()

	if q == "" {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.PatientName), q) ||
			strings.Contains(r.PatientPhone, q) ||
			strings.Contains(strings.ToLower(r.ServiceName), q) ||
			strings.Contains(strings.ToLower(string(r.Status)), q) {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the loaded row for a cita id.
func (s *Screen) Find(id int64) (Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.Appointment.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// Select loads the bill for a cita. Re-selecting the current cita is a
// no-op so a double click does not refetch and discard local item edits.
func (s *Screen) Select(ctx context.Context, id int64) error {
	s.mu.Lock()
	if s.selectedID == id {
		s.mu.Unlock()
		return nil
	}
	s.selectedID = id
	s.bill = nil
	s.items = nil
	s.mu.Unlock()

	bill, err := s.client.GetBill(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.selectedID == id {
		s.bill = bill
		s.items = append([]api.BillItem(nil), bill.Items...)
	}
	s.mu.Unlock()
	return nil
}

// Selected returns the selected row, if any.
func (s *Screen) Selected() (Row, bool) {
	s.mu.Lock()
	id := s.selectedID
	s.mu.Unlock()
	if id == 0 {
		return Row{}, false
	}
	return s.Find(id)
}

// Bill returns the loaded bill for the selected cita.
func (s *Screen) Bill() *api.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bill
}

// Items returns the local working copy of the bill's lines.
func (s *Screen) Items() []api.BillItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.BillItem(nil), s.items...)
}

// Locked reports whether the bill is fully paid; paid bills accept no more
// edits or payments.
func (s *Screen) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bill != nil && s.bill.PaymentStatus == api.PaymentPaid
}

// AddItem appends a service line, merging quantities when the service is
// already on the bill. The unit price comes from the service's current
// price at add time and is editable afterwards.
func (s *Screen) AddItem(serviceID int64, quantity int) error {
	if serviceID == 0 {
		return ui.Invalid("Selecciona un servicio.")
	}
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lockedLocked() {
		return ui.Invalid("El cobro ya está pagado; no admite cambios.")
	}
	for i, it := range s.items {
		if it.ServiceID != nil && *it.ServiceID == serviceID {
			s.items[i].Quantity += quantity
			s.items[i].Subtotal = round2(s.items[i].UnitPrice * float64(s.items[i].Quantity))
			return nil
		}
	}
	name := fmt.Sprintf("Servicio #%d", serviceID)
	var price float64
	if s.idx != nil {
		if srv, ok := s.idx.Service(serviceID); ok {
			name = srv.Name
			if srv.CurrentPrice != nil {
				price = *srv.CurrentPrice
			}
		}
	}
	id := serviceID
	s.items = append(s.items, api.BillItem{
		ServiceID: &id,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: price,
		Subtotal:  round2(price * float64(quantity)),
	})
	return nil
}

// SetItemQuantity edits a line's quantity with a floor of 1.
func (s *Screen) SetItemQuantity(i, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) || s.lockedLocked() {
		return
	}
	s.items[i].Quantity = quantity
	s.items[i].Subtotal = round2(s.items[i].UnitPrice * float64(quantity))
}

// SetItemUnitPrice edits a line's unit price with a floor of 0.
func (s *Screen) SetItemUnitPrice(i int, price float64) {
	if price < 0 || math.IsNaN(price) {
		price = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) || s.lockedLocked() {
		return
	}
	s.items[i].UnitPrice = price
	s.items[i].Subtotal = round2(price * float64(s.items[i].Quantity))
}

// RemoveItem drops a line by position.
func (s *Screen) RemoveItem(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) || s.lockedLocked() {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
}

// ItemsTotal sums the working copy's subtotals.
func (s *Screen) ItemsTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, it := range s.items {
		total += it.Subtotal
	}
	return round2(total)
}

func (s *Screen) lockedLocked() bool {
	return s.bill != nil && s.bill.PaymentStatus == api.PaymentPaid
}

// Save replaces the bill's full item list server-side and adopts the
// recomputed totals.
func (s *Screen) Save(ctx context.Context) error {
	s.mu.Lock()
	id := s.selectedID
	bill := s.bill
	items := append([]api.BillItem(nil), s.items...)
	s.mu.Unlock()

	if id == 0 || bill == nil {
		return ui.Invalid("Selecciona una cita primero.")
	}
	if bill.PaymentStatus == api.PaymentPaid {
		return ui.Invalid("El cobro ya está pagado; no admite cambios.")
	}

	currency := bill.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	saved, err := s.client.SaveBill(ctx, id, api.BillUpsertRequest{Currency: currency, Items: items})
	if err != nil {
		return err
	}
	s.adoptBill(id, saved)
	return nil
}

// Pay applies one payment. The amount must be positive and cannot exceed
// the outstanding balance; an empty method defaults to cash.
func (s *Screen) Pay(ctx context.Context, amount float64, method api.PaymentMethod, reference string) error {
	s.mu.Lock()
	id := s.selectedID
	bill := s.bill
	s.mu.Unlock()

	if id == 0 || bill == nil {
		return ui.Invalid("Selecciona una cita primero.")
	}
	if bill.PaymentStatus == api.PaymentPaid {
		return ui.Invalid("El cobro ya está pagado; no admite cambios.")
	}
	amt := round2(amount)
	if !(amt >= 0.01) {
		return ui.Invalid("Ingresa un monto válido.")
	}
	if balance := round2(bill.Balance); amt > balance {
		return ui.Invalid(fmt.Sprintf("El monto no puede ser mayor al saldo (%s).", Money(bill.Balance, bill.Currency)))
	}
	if method == "" {
		method = api.MethodCash
	}

	paid, err := s.client.PayBill(ctx, id, api.PayRequest{
		Amount:    amt,
		Method:    method,
		Reference: strings.TrimSpace(reference),
	})
	if err != nil {
		return err
	}
	s.adoptBill(id, paid)
	return nil
}

// FullBalance returns the outstanding balance to prefill the payment form,
// or 0 when nothing is owed.
func (s *Screen) FullBalance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bill == nil || s.bill.Balance <= 0 {
		return 0
	}
	return round2(s.bill.Balance)
}

// adoptBill replaces the working state with the backend's recomputed bill
// and reflects the payment state on the list row.
func (s *Screen) adoptBill(id int64, bill *api.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID != id {
		return
	}
	s.bill = bill
	s.items = append([]api.BillItem(nil), bill.Items...)
	for i, r := range s.rows {
		if r.Appointment.ID == id {
			s.rows[i].PaymentStatus = bill.PaymentStatus
		}
	}
}

// Money renders an amount as "GTQ 12.00".
func Money(v float64, currency string) string {
	if currency == "" {
		currency = defaultCurrency
	}
	return fmt.Sprintf("%s %.2f", currency, v)
}

func round2(n float64) float64 {
	return math.Round(n*100) / 100
}
