// Package util tiene helpers chicos sin dependencias del dominio.
package util

import "strings"

// MaskEmail deja la primera letra del usuario y del primer label del dominio:
// "ada.lovelace@example.com" => "a…@e….com". Pensado para logs.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		switch {
		case s == "":
			return ""
		case len(s) <= 3:
			return "***"
		}
		return s[:1] + "…" + s[len(s)-1:]
	}
	user, domain := s[:at], s[at+1:]
	labels := strings.Split(domain, ".")
	return maskPart(user) + "@" + strings.Join(append([]string{maskPart(labels[0])}, labels[1:]...), ".")
}

func maskPart(p string) string {
	if len(p) <= 1 {
		return p
	}
	return p[:1] + "…"
}
