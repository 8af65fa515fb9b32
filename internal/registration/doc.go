// Package registration contiene el modelo del formulario de early access
// (Fields, Gender, Errors) y el Validator que lo evalúa.
//
// El Validator es una función pura: dado un Fields y el instante actual
// devuelve un Errors (vacío ⇒ válido). Lo usan tanto el controlador del
// formulario (internal/registration/form) como el backend
// (internal/registration/service), así ambos lados rechazan exactamente lo mismo.
package registration
