package earlyaccess

import "net/http"

// LegalController redirige /terms y /privacy a los documentos publicados.
type LegalController struct {
	termsURL   string
	privacyURL string
}

func NewLegalController(termsURL, privacyURL string) *LegalController {
	return &LegalController{termsURL: termsURL, privacyURL: privacyURL}
}

func (c *LegalController) Terms(w http.ResponseWriter, r *http.Request) {
	redirectOrNotFound(w, r, c.termsURL)
}

func (c *LegalController) Privacy(w http.ResponseWriter, r *http.Request) {
	redirectOrNotFound(w, r, c.privacyURL)
}

func redirectOrNotFound(w http.ResponseWriter, r *http.Request, target string) {
	if target == "" || target == r.URL.Path {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
