package registration

import (
	"regexp"
	"time"
	"unicode/utf8"
)

const (
	MaxNameLength = 50
	MinAge        = 18
)

// Mensajes visibles por regla. Se exportan para que los presenters y los tests
// no dupliquen el texto.
const (
	MsgName          = "Name must be between 1 and 50 characters"
	MsgEmail         = "Invalid email format"
	MsgDOBRequired   = "Date of Birth is required"
	MsgDOBInvalid    = "Date of Birth must be a valid date"
	MsgDOBFuture     = "Date of Birth cannot be in the future"
	MsgDOBTooOld     = "You must be born after 1901"
	MsgDOBUnderage   = "You must be over 18"
	MsgLocation      = "Location is required"
	MsgGender        = "Gender is required"
	MsgTermsRequired = "You must accept the terms and conditions"
)

// MinDateOfBirth es la fecha de nacimiento más antigua aceptada.
var MinDateOfBirth = time.Date(1901, time.January, 1, 0, 0, 0, 0, time.UTC)

// emailRE es un chequeo estructural mínimo (algo@algo.algo), no RFC 5322.
// El set de whitespace excluido es el mismo que el \s de los navegadores.
var emailRE = regexp.MustCompile(`^[^\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}@]+@[^\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}@]+\.[^\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}@]+$`)

// Validator evalúa Fields. Now permite fijar el reloj en tests; nil ⇒ time.Now.
type Validator struct {
	Now func() time.Time
}

// Validate evalúa todas las reglas contra el reloj del Validator.
func (v Validator) Validate(f Fields) Errors {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return Validate(f, now())
}

// Validate evalúa cada regla de forma independiente (sin cortocircuito entre
// campos) y devuelve el mapa completo de errores. No tiene efectos secundarios.
func Validate(f Fields, now time.Time) Errors {
	errs := Errors{}

	if n := utf8.RuneCountInString(f.Name); n < 1 || n > MaxNameLength {
		errs[FieldName] = MsgName
	}

	if !emailRE.MatchString(f.Email) {
		errs[FieldEmail] = MsgEmail
	}

	if msg := checkDateOfBirth(f.DateOfBirth, now); msg != "" {
		errs[FieldDateOfBirth] = msg
	}

	if f.Location == "" {
		errs[FieldLocation] = MsgLocation
	}

	if !f.Gender.Valid() {
		errs[FieldGender] = MsgGender
	}

	if !f.TermsAccepted {
		errs[FieldTerms] = MsgTermsRequired
	}

	return errs
}

func checkDateOfBirth(raw string, now time.Time) string {
	if raw == "" {
		return MsgDOBRequired
	}
	dob, ok := ParseDate(raw)
	if !ok {
		return MsgDOBInvalid
	}
	now = now.UTC()
	if dob.After(now) {
		return MsgDOBFuture
	}
	if dob.Before(MinDateOfBirth) {
		return MsgDOBTooOld
	}
	// Edad por resta de años calendario: ignora mes y día, así que alguien que
	// todavía no cumplió este año figura un año mayor. Se mantiene a propósito.
	if AgeInYears(dob, now) < MinAge {
		return MsgDOBUnderage
	}
	return ""
}

// ParseDate interpreta YYYY-MM-DD como medianoche UTC. También acepta RFC 3339.
func ParseDate(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// AgeInYears resta años calendario (UTC).
func AgeInYears(dob, now time.Time) int {
	return now.UTC().Year() - dob.UTC().Year()
}
