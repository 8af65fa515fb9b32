package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
	"github.com/dropDatabas3/earlyaccess/internal/registration"
	"github.com/dropDatabas3/earlyaccess/internal/registration/client"
	"github.com/dropDatabas3/earlyaccess/internal/registration/form"
	"github.com/dropDatabas3/earlyaccess/internal/registration/prompt"
)

func newRegisterCmd(o *rootOpts) *cobra.Command {
	var (
		apiURL  string
		timeout time.Duration
		delay   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Completa el formulario de early access en la terminal",
		Long: "Sin --api el envío es simulado (espera --delay y devuelve éxito).\n" +
			"Con --api se envía a POST " + client.RegisterPath + " del servidor indicado.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.load()
			if err != nil {
				return err
			}

			var reg form.Registrar = registration.Simulated{Delay: delay}
			if apiURL != "" {
				c, err := client.New(client.Config{BaseURL: apiURL, Timeout: timeout})
				if err != nil {
					return err
				}
				reg = c
			}

			p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout(), prompt.Links{
				Terms:   cfg.Legal.TermsURL,
				Privacy: cfg.Legal.PrivacyURL,
			})
			f := form.New(reg,
				form.WithLogger(logger.L()),
				form.WithOnChange(p.Render),
			)
			defer f.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out, err := p.Run(ctx, f)
			if err != nil {
				return err
			}
			if out != form.OutcomeSubmitted {
				return fmt.Errorf("registration not completed: %s", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", envOr("EARLYACCESS_API_URL", ""), "URL base de la API (env EARLYACCESS_API_URL); vacío = envío simulado")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Timeout del request HTTP (0 = sin timeout)")
	cmd.Flags().DurationVar(&delay, "delay", registration.DefaultSimulatedDelay, "Demora del envío simulado")
	return cmd
}
