package api

import "time"

// Role identifies a staff role as defined by the backend.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleCashier    Role = "CAJA"
	RoleSecretary  Role = "SECRETARIA"
	RoleSpecialist Role = "ESPECIALISTA"
)

// AppointmentStatus is the closed lifecycle enum for appointments.
type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "PENDIENTE"
	StatusConfirmed   AppointmentStatus = "CONFIRMADA"
	StatusFinished    AppointmentStatus = "TERMINADA"
	StatusCancelled   AppointmentStatus = "CANCELADA"
	StatusNoShow      AppointmentStatus = "NO_ASISTIO"
	StatusRescheduled AppointmentStatus = "REPROGRAMADA"
)

// Channel is how the appointment was booked.
type Channel string

const (
	ChannelWhatsApp  Channel = "WHATSAPP"
	ChannelPhone     Channel = "LLAMADA"
	ChannelWeb       Channel = "WEB"
	ChannelReception Channel = "RECEPCION"
	ChannelFacebook  Channel = "FACEBOOK"
)

// BillingMode is required when an appointment transitions to TERMINADA.
type BillingMode string

const (
	BillingImmediate  BillingMode = "PAGO_INMEDIATO"
	BillingReceivable BillingMode = "CUENTA_POR_COBRAR"
)

// PaymentMethod for bill payments.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "EFECTIVO"
	MethodCard     PaymentMethod = "TARJETA"
	MethodTransfer PaymentMethod = "TRANSFERENCIA"
	MethodOther    PaymentMethod = "OTRO"
)

// PaymentStatus is derived by the backend from total vs paid.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDIENTE"
	PaymentPartial PaymentStatus = "PARCIAL"
	PaymentPaid    PaymentStatus = "PAGADO"
)

// FileKind classifies a patient file attachment.
type FileKind string

const (
	FileDocument FileKind = "DOCUMENTO"
	FileLab      FileKind = "LAB"
	FileXRay     FileKind = "RX"
	FilePhoto    FileKind = "FOTO"
	FileOther    FileKind = "OTRO"
)

// Appointment mirrors the backend cita record. JSON tags follow the backend's
// Spanish field names; they are the wire contract, not ours to rename.
type Appointment struct {
	ID              int64              `json:"idCita"`
	BranchID        int64              `json:"idSucursal"`
	CreatedBranchID *int64             `json:"idSucursalCreado,omitempty"`
	PatientID       int64              `json:"idPaciente"`
	ServiceID       int64              `json:"idServicio"`
	SpecialistID    *int64             `json:"idEspecialista,omitempty"`
	StartsAt        time.Time          `json:"fechaInicio"`
	EndsAt          *time.Time         `json:"fechaFin,omitempty"`
	DurationMinutes *int               `json:"duracionMinutos,omitempty"`
	Status          AppointmentStatus  `json:"estado"`
	BillingMode     *BillingMode       `json:"cancelacionCobro,omitempty"`
	Channel         string             `json:"canal,omitempty"`
	Reason          string             `json:"motivo,omitempty"`
	Notes           string             `json:"notas,omitempty"`
	CreatedAt       *time.Time         `json:"creadoEn,omitempty"`
	CreatedBy       *int64             `json:"creadoPor,omitempty"`
	UpdatedAt       *time.Time         `json:"actualizadoEn,omitempty"`
	UpdatedBy       *int64             `json:"actualizadoPor,omitempty"`
}

// AppointmentRequest is the create/update payload for a cita.
type AppointmentRequest struct {
	BranchID        int64             `json:"idSucursal"`
	PatientID       int64             `json:"idPaciente"`
	ServiceID       int64             `json:"idServicio"`
	SpecialistID    *int64            `json:"idEspecialista"`
	StartsAt        time.Time         `json:"fechaInicio"`
	DurationMinutes *int              `json:"duracionMinutos,omitempty"`
	EndsAt          *time.Time        `json:"fechaFin,omitempty"`
	Status          AppointmentStatus `json:"estado,omitempty"`
	Channel         string            `json:"canal,omitempty"`
	Reason          string            `json:"motivo,omitempty"`
	Notes           string            `json:"notas,omitempty"`
	BillingMode     *BillingMode      `json:"cancelacionCobro,omitempty"`
}

// Patient mirrors the backend paciente record.
type Patient struct {
	ID            int64      `json:"idPaciente"`
	FirstNames    string     `json:"nombres"`
	LastNames     string     `json:"apellidos,omitempty"`
	Phone         string     `json:"telefono,omitempty"`
	Email         string     `json:"correo,omitempty"`
	TaxID         string     `json:"nit,omitempty"`
	NationalID    string     `json:"dpi,omitempty"`
	Address       string     `json:"direccion,omitempty"`
	Active        bool       `json:"activo"`
	CreatedBy     *int64     `json:"creadoPor,omitempty"`
	CreatedByName string     `json:"creadoPorNombre,omitempty"`
	BranchID      *int64     `json:"idSucursalCreado,omitempty"`
	BranchName    string     `json:"sucursalNombre,omitempty"`
	CreatedAt     *time.Time `json:"creadoEn,omitempty"`
	UpdatedAt     *time.Time `json:"actualizadoEn,omitempty"`
}

// PatientRequest covers both create and update payloads; zero-value fields
// are omitted so partial updates stay partial.
type PatientRequest struct {
	FirstNames string `json:"nombres,omitempty"`
	LastNames  string `json:"apellidos,omitempty"`
	Phone      string `json:"telefono,omitempty"`
	Email      string `json:"correo,omitempty"`
	TaxID      string `json:"nit,omitempty"`
	NationalID string `json:"dpi,omitempty"`
	Address    string `json:"direccion,omitempty"`
	Active     *bool  `json:"activo,omitempty"`
}

// PatientFile is an attachment in a patient's dossier.
type PatientFile struct {
	ID            int64      `json:"idArchivo"`
	PatientID     int64      `json:"idPaciente"`
	AppointmentID *int64     `json:"idCita,omitempty"`
	Title         string     `json:"titulo,omitempty"`
	Kind          FileKind   `json:"tipo"`
	Filename      string     `json:"filename"`
	MIME          string     `json:"mime,omitempty"`
	SizeBytes     int64      `json:"sizeBytes,omitempty"`
	Active        bool       `json:"activo"`
	CreatedAt     *time.Time `json:"creadoEn,omitempty"`
}

// DossierAppointment is the expediente's denormalized view of a cita,
// with display names already resolved by the backend.
type DossierAppointment struct {
	ID              int64             `json:"idCita"`
	BranchID        int64             `json:"idSucursal"`
	BranchName      string            `json:"sucursalNombre,omitempty"`
	PatientID       int64             `json:"idPaciente"`
	ServiceID       int64             `json:"idServicio"`
	ServiceName     string            `json:"servicioNombre,omitempty"`
	SpecialistID    *int64            `json:"idEspecialista,omitempty"`
	SpecialistName  string            `json:"especialistaNombre,omitempty"`
	StartsAt        time.Time         `json:"fechaInicio"`
	EndsAt          time.Time         `json:"fechaFin"`
	DurationMinutes int               `json:"duracionMinutos"`
	Status          AppointmentStatus `json:"estado"`
	Channel         string            `json:"canal,omitempty"`
	Reason          string            `json:"motivo,omitempty"`
	Notes           string            `json:"notas,omitempty"`
}

// Dossier aggregates a patient, their appointment history, and attachments.
type Dossier struct {
	Patient      Patient              `json:"paciente"`
	Appointments []DossierAppointment `json:"citas"`
	Files        []PatientFile        `json:"archivos"`
}

// Service mirrors the backend servicio record.
type Service struct {
	ID           int64      `json:"idServicio"`
	Name         string     `json:"nombre"`
	Description  string     `json:"descripcion,omitempty"`
	Active       bool       `json:"activo"`
	CurrentPrice *float64   `json:"precioActual,omitempty"`
	Currency     string     `json:"moneda,omitempty"`
	CreatedBy    *int64     `json:"creadoPor,omitempty"`
	CreatedAt    *time.Time `json:"creadoEn,omitempty"`
	UpdatedAt    *time.Time `json:"actualizadoEn,omitempty"`
}

// ServiceCreateRequest creates a service with an optional initial price point.
type ServiceCreateRequest struct {
	Name         string   `json:"nombre"`
	Description  string   `json:"descripcion,omitempty"`
	InitialPrice *float64 `json:"precioInicial,omitempty"`
	Currency     string   `json:"moneda,omitempty"`
}

// ServiceUpdateRequest edits name/description/active.
type ServiceUpdateRequest struct {
	Name        string `json:"nombre,omitempty"`
	Description string `json:"descripcion,omitempty"`
	Active      *bool  `json:"activo,omitempty"`
}

// PricePoint is one entry in a service's versioned price history.
type PricePoint struct {
	ID        int64      `json:"idServicioPrecio"`
	Price     float64    `json:"precio"`
	Currency  string     `json:"moneda"`
	ValidFrom *time.Time `json:"vigenteDesde,omitempty"`
	ValidTo   *time.Time `json:"vigenteHasta,omitempty"`
}

// User mirrors the backend staff record.
type User struct {
	ID        int64      `json:"idUsuario"`
	Username  string     `json:"usuario"`
	Email     string     `json:"correo"`
	Role      Role       `json:"rol"`
	FirstName string     `json:"nombre"`
	LastName  string     `json:"apellido"`
	Phone     string     `json:"telefono,omitempty"`
	Active    bool       `json:"estado"`
	CreatedAt *time.Time `json:"creadoEn,omitempty"`
	UpdatedAt *time.Time `json:"actualizadoEn,omitempty"`
}

// UserDetail adds the branch assignment returned by GET /users/{id}.
type UserDetail struct {
	User
	BranchID   *int64 `json:"idSucursal,omitempty"`
	BranchName string `json:"sucursalNombre,omitempty"`
}

// UserCreateRequest creates a staff account.
type UserCreateRequest struct {
	Username  string `json:"usuario"`
	Email     string `json:"correo"`
	Password  string `json:"password"`
	Role      Role   `json:"rol"`
	FirstName string `json:"nombre,omitempty"`
	LastName  string `json:"apellido,omitempty"`
	Phone     string `json:"telefono,omitempty"`
	BranchID  int64  `json:"idSucursal"`
}

// UserUpdateRequest edits a staff account; empty fields stay untouched.
type UserUpdateRequest struct {
	Email     string `json:"correo,omitempty"`
	Password  string `json:"password,omitempty"`
	Role      Role   `json:"rol,omitempty"`
	FirstName string `json:"nombre,omitempty"`
	LastName  string `json:"apellido,omitempty"`
	Phone     string `json:"telefono,omitempty"`
	BranchID  *int64 `json:"idSucursal,omitempty"`
}

// Branch is a clinic location.
type Branch struct {
	ID   int64  `json:"idSucursal"`
	Name string `json:"nombre"`
}

// Specialist is the profile attached to an ESPECIALISTA user; its id equals
// the user id.
type Specialist struct {
	ID        int64      `json:"especialistaId"`
	Specialty string     `json:"especialidad"`
	Active    bool       `json:"estado"`
	CreatedAt *time.Time `json:"creadoEn,omitempty"`
	UpdatedAt *time.Time `json:"actualizadoEn,omitempty"`
}

// BillItem is one service line on a bill.
type BillItem struct {
	ServiceID *int64  `json:"idServicio"`
	Name      string  `json:"nombre,omitempty"`
	Quantity  int     `json:"cantidad"`
	UnitPrice float64 `json:"precioUnitario"`
	Subtotal  float64 `json:"subtotal"`
}

// BillPayment is one payment applied against a bill.
type BillPayment struct {
	Date      time.Time     `json:"fecha"`
	Amount    float64       `json:"monto"`
	Method    PaymentMethod `json:"metodo"`
	Reference string        `json:"referencia,omitempty"`
}

// Bill mirrors the backend cobro record tied one-to-one to an appointment.
type Bill struct {
	ID            int64         `json:"idCobro"`
	AppointmentID int64         `json:"idCita"`
	Currency      string        `json:"moneda"`
	Items         []BillItem    `json:"items"`
	Payments      []BillPayment `json:"pagos"`
	Total         float64       `json:"total"`
	Paid          float64       `json:"pagado"`
	Balance       float64       `json:"saldo"`
	PaymentStatus PaymentStatus `json:"estadoPago"`
	UpdatedAt     *time.Time    `json:"actualizadoEn,omitempty"`
}

// BillUpsertRequest replaces the full item list server-side.
type BillUpsertRequest struct {
	Currency string     `json:"moneda,omitempty"`
	Items    []BillItem `json:"items"`
}

// PayRequest applies one payment to an appointment's bill.
type PayRequest struct {
	Amount    float64       `json:"monto"`
	Method    PaymentMethod `json:"metodo,omitempty"`
	Reference string        `json:"referencia,omitempty"`
}

// Notification is an in-app notification created by the backend.
type Notification struct {
	ID        int64      `json:"idNotificacion"`
	Type      string     `json:"tipo"`
	Title     string     `json:"titulo"`
	Message   string     `json:"mensaje"`
	DataJSON  string     `json:"dataJson,omitempty"`
	ActionURL string     `json:"actionUrl,omitempty"`
	CreatedAt time.Time  `json:"creadoEn"`
	ReadAt    *time.Time `json:"leidoEn,omitempty"`
}

// Profile is the authenticated user's own record from GET /auth/me.
type Profile struct {
	ID        int64  `json:"idUsuario"`
	Username  string `json:"usuario"`
	Email     string `json:"correo"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Role      Role   `json:"rol"`
	Phone     string `json:"telefono,omitempty"`
	BranchID  *int64 `json:"idSucursal,omitempty"`
}

// FullName joins first and last names for display.
func (p Profile) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// LoginRequest is the POST /auth/login payload.
type LoginRequest struct {
	Username string `json:"usuario"`
	Password string `json:"contrasena"`
}

// LoginResponse carries the bearer token and a partial profile.
type LoginResponse struct {
	Token string  `json:"token"`
	User  Profile `json:"usuario"`
}
