package registration

import (
	"sort"
	"strings"
)

// Errors mapea campo → mensaje legible. Vacío (o nil) ⇒ formulario válido.
// Se recalcula completo en cada validación; nunca se mezcla parcialmente.
type Errors map[Field]string

// Valid reporta si no hay errores.
func (e Errors) Valid() bool { return len(e) == 0 }

// Has reporta si el campo tiene error.
func (e Errors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

// Get devuelve el mensaje del campo ("" si no tiene error).
func (e Errors) Get(f Field) string { return e[f] }

// Fields devuelve los campos con error en orden de presentación.
// Campos desconocidos (p.ej. enviados por un backend más nuevo) van al final, ordenados.
func (e Errors) Fields() []Field {
	out := make([]Field, 0, len(e))
	known := make(map[Field]bool, len(fieldOrder))
	for _, f := range fieldOrder {
		known[f] = true
		if e.Has(f) {
			out = append(out, f)
		}
	}
	var extra []Field
	for f := range e {
		if !known[f] {
			extra = append(extra, f)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// Clone devuelve una copia independiente.
func (e Errors) Clone() Errors {
	if e == nil {
		return nil
	}
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Error implementa error para que el backend pueda devolver Errors directamente.
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, string(f)+": "+e[f])
	}
	return "registration: invalid fields (" + strings.Join(parts, "; ") + ")"
}
