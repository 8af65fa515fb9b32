package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	dto "github.com/dropDatabas3/earlyaccess/internal/http/dto/earlyaccess"
	"github.com/dropDatabas3/earlyaccess/internal/registration"
)

func newValidateCmd(_ *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.json|->",
		Short: "Valida un JSON con los campos del formulario sin registrar nada",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				fh, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer fh.Close()
				r = fh
			}
			var req dto.RegisterRequest
			if err := json.NewDecoder(r).Decode(&req); err != nil {
				return fmt.Errorf("invalid json: %w", err)
			}
			return printValidation(cmd.OutOrStdout(), registration.Validator{}.Validate(req.ToFields()))
		},
	}
}

func printValidation(w io.Writer, errs registration.Errors) error {
	if errs.Valid() {
		fmt.Fprintln(w, "ok")
		return nil
	}
	for _, f := range errs.Fields() {
		fmt.Fprintf(w, "%s: %s\n", f, errs.Get(f))
	}
	return fmt.Errorf("%d invalid field(s)", len(errs))
}
