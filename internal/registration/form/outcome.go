package form

import "errors"

// ErrNoRegistrar se produce si el Form se creó sin Registrar.
var ErrNoRegistrar = errors.New("form: no registrar configured")

// Outcome es el resultado de un intento de Submit.
type Outcome int

const (
	// OutcomeInvalid: la validación encontró errores; no hubo llamada externa.
	OutcomeInvalid Outcome = iota + 1
	// OutcomeSubmitted: el Registrar respondió OK; Success quedó en true.
	OutcomeSubmitted
	// OutcomeFailed: el Registrar falló; el error se logueó y Success sigue en false.
	OutcomeFailed
	// OutcomeBusy: ya había un submit en vuelo; no se hizo nada.
	OutcomeBusy
	// OutcomeClosed: el formulario estaba cerrado.
	OutcomeClosed
	// OutcomeDiscarded: el formulario se cerró mientras la llamada estaba pendiente.
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeFailed:
		return "failed"
	case OutcomeBusy:
		return "busy"
	case OutcomeClosed:
		return "closed"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}
