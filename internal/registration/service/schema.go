package service

import "github.com/dropDatabas3/earlyaccess/internal/registration"

// Schema describe el formulario para los presenters.
type Schema struct {
	Title         string               `json:"title"`
	Fields        []SchemaField        `json:"fields"`
	MaxNameLength int                  `json:"max_name_length"`
	MinAge        int                  `json:"min_age"`
	MinDOB        string               `json:"min_date_of_birth"`
	TermsURL      string               `json:"terms_url"`
	PrivacyURL    string               `json:"privacy_url"`
	SubmitLabel   string               `json:"submit_label"`
	LoadingLabel  string               `json:"loading_label"`
	Success       SchemaSuccessMessage `json:"success"`
}

type SchemaField struct {
	Name        registration.Field          `json:"name"`
	Label       string                      `json:"label"`
	Type        string                      `json:"type"`
	Placeholder string                      `json:"placeholder,omitempty"`
	Options     []registration.GenderOption `json:"options,omitempty"`
	Required    bool                        `json:"required"`
}

type SchemaSuccessMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

const (
	FormTitle    = "Ayen Early Access Registration"
	SuccessTitle = "Registration Successful"
	SuccessBody  = "Thank you for registering! Please check your email (including spam folder) for further instructions."
)

var fieldTypes = map[registration.Field]string{
	registration.FieldName:        "text",
	registration.FieldEmail:       "email",
	registration.FieldDateOfBirth: "date",
	registration.FieldLocation:    "text",
	registration.FieldGender:      "select",
	registration.FieldTerms:       "checkbox",
}

func (s *service) FormSchema() Schema {
	sc := Schema{
		Title:         FormTitle,
		MaxNameLength: registration.MaxNameLength,
		MinAge:        registration.MinAge,
		MinDOB:        registration.MinDateOfBirth.Format("2006-01-02"),
		TermsURL:      s.deps.Legal.TermsURL,
		PrivacyURL:    s.deps.Legal.PrivacyURL,
		SubmitLabel:   "Register",
		LoadingLabel:  "Registering...",
		Success:       SchemaSuccessMessage{Title: SuccessTitle, Body: SuccessBody},
	}
	if sc.TermsURL == "" {
		sc.TermsURL = "/terms"
	}
	if sc.PrivacyURL == "" {
		sc.PrivacyURL = "/privacy"
	}
	for _, f := range registration.AllFields() {
		sf := SchemaField{
			Name:        f,
			Label:       f.Label(),
			Type:        fieldTypes[f],
			Placeholder: f.Placeholder(),
			Required:    true,
		}
		if f == registration.FieldGender {
			sf.Options = registration.Genders()
		}
		sc.Fields = append(sc.Fields, sf)
	}
	return sc
}
