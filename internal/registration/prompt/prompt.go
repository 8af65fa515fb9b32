// Package prompt es el presenter de terminal del formulario de registro:
// pide cada campo, muestra los errores inline debajo de cada campo, deshabilita
// el submit sin términos aceptados, muestra "Registering..." mientras el submit
// está en vuelo y el diálogo de confirmación al terminar.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/dropDatabas3/earlyaccess/internal/registration"
	"github.com/dropDatabas3/earlyaccess/internal/registration/form"
)

// Textos visibles.
const (
	Title          = "Ayen Early Access Registration"
	SuccessTitle   = "Registration Successful"
	SuccessBody    = "Thank you for registering! Please check your email (including spam folder) for further instructions."
	LoadingText    = "Registering..."
	SubmitDisabled = "Register is disabled until you accept the terms."
)

// ErrInputClosed: la entrada terminó antes de completar el formulario.
var ErrInputClosed = errors.New("prompt: input closed")

// Links a los documentos estáticos que se mencionan junto al checkbox.
type Links struct {
	Terms   string
	Privacy string
}

// Prompter dibuja el formulario en un par reader/writer.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	links Links

	mu        sync.Mutex
	lastPhase form.Phase
}

// New crea un Prompter. Links vacíos usan /terms y /privacy.
func New(in io.Reader, out io.Writer, links Links) *Prompter {
	if links.Terms == "" {
		links.Terms = "/terms"
	}
	if links.Privacy == "" {
		links.Privacy = "/privacy"
	}
	return &Prompter{in: bufio.NewReader(in), out: out, links: links, lastPhase: form.PhaseIdle}
}

// Render se registra con form.WithOnChange. Sólo imprime la transición a
// "submitting"; el resto lo dibuja Run.
func (p *Prompter) Render(s form.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ph := s.Phase()
	if ph == form.PhaseSubmitting && p.lastPhase != form.PhaseSubmitting {
		fmt.Fprintln(p.out, LoadingText)
	}
	p.lastPhase = ph
}

// Run completa el formulario y lo envía hasta obtener un resultado terminal.
// Un OutcomeFailed no imprime nada: el controlador sólo lo loguea.
func (p *Prompter) Run(ctx context.Context, f *form.Form) (form.Outcome, error) {
	fmt.Fprintln(p.out, Title)
	fmt.Fprintln(p.out, strings.Repeat("─", len(Title)))

	pending := registration.AllFields()
	for {
		for _, fld := range pending {
			if err := p.ask(f, fld); err != nil {
				return 0, err
			}
		}

		for !f.CanSubmit() {
			if f.State().Loading {
				break
			}
			fmt.Fprintln(p.out, SubmitDisabled)
			if err := p.ask(f, registration.FieldTerms); err != nil {
				return 0, err
			}
		}

		var out form.Outcome
		select {
		case out = <-f.SubmitAsync(ctx):
		case <-ctx.Done():
			f.Close()
			return form.OutcomeClosed, ctx.Err()
		}

		switch out {
		case form.OutcomeInvalid:
			errs := f.State().Errors
			p.printErrors(errs)
			pending = errs.Fields()
		case form.OutcomeSubmitted:
			return out, p.confirm(f)
		default:
			return out, nil
		}
	}
}

func (p *Prompter) ask(f *form.Form, fld registration.Field) error {
	cur := f.State().Fields
	switch fld {
	case registration.FieldName:
		v, err := p.line(registration.FieldName, cur.Name)
		if err != nil {
			return err
		}
		f.SetName(v)
	case registration.FieldEmail:
		v, err := p.line(registration.FieldEmail, cur.Email)
		if err != nil {
			return err
		}
		f.SetEmail(v)
	case registration.FieldDateOfBirth:
		v, err := p.line(registration.FieldDateOfBirth, cur.DateOfBirth)
		if err != nil {
			return err
		}
		f.SetDateOfBirth(v)
	case registration.FieldLocation:
		v, err := p.line(registration.FieldLocation, cur.Location)
		if err != nil {
			return err
		}
		f.SetLocation(v)
	case registration.FieldGender:
		g, err := p.gender()
		if err != nil {
			return err
		}
		f.SetGender(g)
	case registration.FieldTerms:
		ok, err := p.terms()
		if err != nil {
			return err
		}
		f.SetTermsAccepted(ok)
	}
	return nil
}

func (p *Prompter) line(fld registration.Field, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", fld.Label(), current)
	} else {
		fmt.Fprintf(p.out, "%s (%s): ", fld.Label(), fld.Placeholder())
	}
	return p.read()
}

func (p *Prompter) gender() (registration.Gender, error) {
	opts := registration.Genders()
	fmt.Fprintf(p.out, "%s (%s):\n", registration.FieldGender.Label(), strings.ToLower(registration.FieldGender.Placeholder()))
	for i, o := range opts {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o.Label)
	}
	fmt.Fprint(p.out, "> ")
	v, err := p.read()
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 1 && n <= len(opts) {
		return opts[n-1].Value, nil
	}
	g, _ := registration.ParseGender(v)
	return g, nil
}

func (p *Prompter) terms() (bool, error) {
	fmt.Fprintf(p.out, "I accept the Terms of Service (%s), Privacy Policy (%s), and confirm that I am over 18 years old. [y/N]: ",
		p.links.Terms, p.links.Privacy)
	v, err := p.read()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *Prompter) printErrors(errs registration.Errors) {
	for _, fld := range errs.Fields() {
		fmt.Fprintf(p.out, "  ✗ %s: %s\n", fld.Label(), errs.Get(fld))
	}
}

func (p *Prompter) confirm(f *form.Form) error {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, SuccessTitle)
	fmt.Fprintln(p.out, SuccessBody)
	fmt.Fprint(p.out, "[Close] ")
	_, err := p.read()
	f.Dismiss()
	if errors.Is(err, ErrInputClosed) {
		return nil
	}
	return err
}

// read devuelve la línea sin el salto final. No recorta espacios: el nombre
// se valida tal cual se escribió.
func (p *Prompter) read() (string, error) {
	s, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if s == "" {
				return "", ErrInputClosed
			}
		} else {
			return "", fmt.Errorf("prompt: read: %w", err)
		}
	}
	return strings.TrimRight(s, "\r\n"), nil
}
