// Package form implementa el controlador de submit del formulario de
// registro: valida, marca loading, llama al Registrar una sola vez y marca
// success. No hay reintentos ni timeout propio; el Registrar decide.
package form

//go:generate mockgen -destination=mocks/registrar.go -package=mocks . Registrar

import (
	"context"
	"fmt"
	"sync"

	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
	"github.com/dropDatabas3/earlyaccess/internal/registration"
	"go.uber.org/zap"
)

// Registrar es la capacidad externa que persiste una inscripción.
// Implementaciones: registration.Simulated, client.Client, o un mock.
type Registrar interface {
	Register(ctx context.Context, f registration.Fields) error
}

// Validator evalúa los campos. registration.Validator lo implementa.
type Validator interface {
	Validate(f registration.Fields) registration.Errors
}

// State es una foto inmutable del formulario.
type State struct {
	Fields  registration.Fields
	Errors  registration.Errors
	Loading bool
	Success bool
}

// Phase deriva la fase visible a partir de los flags.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseSubmitting
	case s.Success:
		return PhaseSubmitted
	case len(s.Errors) > 0:
		return PhaseInvalid
	default:
		return PhaseIdle
	}
}

// Phase es la fase visible del formulario.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseInvalid    Phase = "invalid"
	PhaseSubmitting Phase = "submitting"
	PhaseSubmitted  Phase = "submitted"
)

// Option configura un Form.
type Option func(*Form)

// WithLogger fija el logger (default: logger.L()).
func WithLogger(l *zap.Logger) Option {
	return func(f *Form) {
		if l != nil {
			f.log = l
		}
	}
}

// WithValidator reemplaza el validador (default: registration.Validator{}).
func WithValidator(v Validator) Option {
	return func(f *Form) {
		if v != nil {
			f.validator = v
		}
	}
}

// WithOnChange registra un callback invocado tras cada transición, fuera del lock.
func WithOnChange(fn func(State)) Option {
	return func(f *Form) { f.onChange = fn }
}

// Form es el estado del formulario más el controlador de submit.
// Es seguro para uso concurrente; un solo submit puede estar en vuelo.
type Form struct {
	registrar Registrar
	validator Validator
	log       *zap.Logger
	onChange  func(State)

	mu      sync.Mutex
	fields  registration.Fields
	errs    registration.Errors
	loading bool
	success bool
	closed  bool
}

// New crea un formulario vacío.
func New(r Registrar, opts ...Option) *Form {
	f := &Form{
		registrar: r,
		validator: registration.Validator{},
		log:       logger.L(),
	}
	for _, o := range opts {
		o(f)
	}
	f.log = f.log.With(logger.Component("registration.form"))
	return f
}

// ---------------------------------------------------------------------------------
// Field updates
// ---------------------------------------------------------------------------------

func (f *Form) SetName(v string) { f.update(func() { f.fields.Name = v }) }
func (f *Form) SetEmail(v string) { f.update(func() { f.fields.Email = v }) }
func (f *Form) SetDateOfBirth(v string) { f.update(func() { f.fields.DateOfBirth = v }) }
func (f *Form) SetLocation(v string) { f.update(func() { f.fields.Location = v }) }
func (f *Form) SetGender(v registration.Gender) { f.update(func() { f.fields.Gender = v }) }
func (f *Form) SetTermsAccepted(v bool) { f.update(func() { f.fields.TermsAccepted = v }) }

// SetFields reemplaza todos los valores de una vez.
func (f *Form) SetFields(v registration.Fields) { f.update(func() { f.fields = v }) }

func (f *Form) update(mut func()) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	mut()
	s := f.snapshotLocked()
	f.mu.Unlock()
	f.notify(s)
}

// State devuelve una foto del formulario.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// CanSubmit refleja el control de submit: habilitado con términos aceptados
// y sin un submit en vuelo.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed && !f.loading && f.fields.TermsAccepted
}

// Submit corre el flujo completo. Nunca propaga errores ni panics del Registrar:
// el resultado se informa en Outcome y los fallos sólo se loguean.
func (f *Form) Submit(ctx context.Context) Outcome {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return OutcomeClosed
	}
	if f.loading {
		f.mu.Unlock()
		f.log.Debug("submit ignored: registration in flight", logger.Outcome(OutcomeBusy.String()))
		return OutcomeBusy
	}

	errs := f.validator.Validate(f.fields)
	if errs == nil {
		errs = registration.Errors{}
	}
	f.errs = errs
	if !errs.Valid() {
		s := f.snapshotLocked()
		f.mu.Unlock()
		f.notify(s)
		f.log.Debug("submit rejected by validation",
			logger.Outcome(OutcomeInvalid.String()),
			logger.InvalidFields(fieldNames(errs)),
		)
		return OutcomeInvalid
	}

	f.loading = true
	f.success = false
	fields := f.fields
	s := f.snapshotLocked()
	f.mu.Unlock()
	f.notify(s)

	err := f.register(ctx, fields)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		f.log.Debug("registration resolved after close; ignored", logger.Outcome(OutcomeDiscarded.String()))
		return OutcomeDiscarded
	}
	f.loading = false
	if err != nil {
		s = f.snapshotLocked()
		f.mu.Unlock()
		f.notify(s)
		// Sólo se loguea: el formulario no muestra un error de submit al usuario.
		f.log.Error("registration failed", logger.Outcome(OutcomeFailed.String()), logger.Err(err))
		return OutcomeFailed
	}
	f.success = true
	s = f.snapshotLocked()
	f.mu.Unlock()
	f.notify(s)
	f.log.Info("registration submitted", logger.Outcome(OutcomeSubmitted.String()))
	return OutcomeSubmitted
}

// SubmitAsync corre Submit en una goroutine. El canal recibe exactamente un Outcome.
func (f *Form) SubmitAsync(ctx context.Context) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() { ch <- f.Submit(ctx) }()
	return ch
}

// Dismiss cierra la confirmación de éxito (Submitted → Idle).
func (f *Form) Dismiss() {
	f.update(func() { f.success = false })
}

// Close desmonta el formulario. Un submit pendiente que resuelva después no
// modifica el estado; los setters y Submit posteriores son no-ops.
func (f *Form) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *Form) register(ctx context.Context, fields registration.Fields) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("registrar panic: %v", rec)
		}
	}()
	if f.registrar == nil {
		return ErrNoRegistrar
	}
	return f.registrar.Register(ctx, fields)
}

func (f *Form) snapshotLocked() State {
	return State{
		Fields:  f.fields,
		Errors:  f.errs.Clone(),
		Loading: f.loading,
		Success: f.success,
	}
}

func (f *Form) notify(s State) {
	if f.onChange != nil {
		f.onChange(s)
	}
}

func fieldNames(errs registration.Errors) []string {
	out := make([]string, 0, len(errs))
	for _, fld := range errs.Fields() {
		out = append(out, string(fld))
	}
	return out
}
