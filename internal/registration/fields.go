package registration

import "strings"

// Field identifica un campo del formulario. Es también la clave de Errors.
type Field string

const (
	FieldName        Field = "name"
	FieldEmail       Field = "email"
	FieldDateOfBirth Field = "date_of_birth"
	FieldLocation    Field = "location"
	FieldGender      Field = "gender"
	FieldTerms       Field = "terms"
)

// fieldOrder es el orden en que el formulario muestra los campos.
var fieldOrder = []Field{
	FieldName,
	FieldEmail,
	FieldDateOfBirth,
	FieldLocation,
	FieldGender,
	FieldTerms,
}

// AllFields devuelve los campos en orden de presentación.
func AllFields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

var fieldText = map[Field][2]string{
	FieldName:        {"Name", "Enter your name"},
	FieldEmail:       {"Email", "Enter your email"},
	FieldDateOfBirth: {"Date of Birth", "YYYY-MM-DD"},
	FieldLocation:    {"Location", "Enter your city or country"},
	FieldGender:      {"Gender", "Select your gender"},
	FieldTerms:       {"Terms", ""},
}

// Label visible del campo. Campos desconocidos devuelven su clave.
func (f Field) Label() string {
	if t, ok := fieldText[f]; ok {
		return t[0]
	}
	return string(f)
}

// Placeholder del input.
func (f Field) Placeholder() string { return fieldText[f][1] }

// Gender es la opción elegida en el select de género. "" significa sin elegir.
type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderNonbinary   Gender = "nonbinary"
	GenderUndisclosed Gender = "undisclosed"
)

// GenderOption es una entrada del select (valor + etiqueta visible).
type GenderOption struct {
	Value Gender `json:"value"`
	Label string `json:"label"`
}

var genderOptions = []GenderOption{
	{Value: GenderMale, Label: "Male"},
	{Value: GenderFemale, Label: "Female"},
	{Value: GenderNonbinary, Label: "Non binary"},
	{Value: GenderUndisclosed, Label: "Prefer not to say"},
}

// Genders devuelve las opciones válidas en orden de presentación.
func Genders() []GenderOption {
	out := make([]GenderOption, len(genderOptions))
	copy(out, genderOptions)
	return out
}

// Valid reporta si g es uno de los cuatro valores enumerados.
func (g Gender) Valid() bool {
	for _, o := range genderOptions {
		if o.Value == g {
			return true
		}
	}
	return false
}

// Label devuelve la etiqueta visible, o "" si g no es válido.
func (g Gender) Label() string {
	for _, o := range genderOptions {
		if o.Value == g {
			return o.Label
		}
	}
	return ""
}

// ParseGender acepta el valor enumerado (case-insensitive, con espacios).
func ParseGender(s string) (Gender, bool) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", false
	}
	return g, true
}

// Fields son los valores crudos del formulario tal como los tipeó el usuario.
// El zero value es el formulario vacío recién montado.
type Fields struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	DateOfBirth   string `json:"date_of_birth"` // ISO date, YYYY-MM-DD
	Location      string `json:"location"`
	Gender        Gender `json:"gender"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// NormalizedEmail devuelve el email en la forma usada para detectar duplicados.
func (f Fields) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(f.Email))
}
