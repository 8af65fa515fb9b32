// Package logger expone un logger Zap singleton con scoping por contexto.
//
//   - Init(Config) una sola vez en el arranque (cmd/earlyaccess).
//   - From(ctx) devuelve el logger "scoped" que dejó el middleware HTTP
//     (request_id, method, path) o el singleton si no hay ninguno.
//   - Los helpers de fields.go mantienen los nombres de campos consistentes
//     entre controller, service y stores.
//
// En "dev" se loguea en consola con colores; en "prod" en JSON.
package logger
