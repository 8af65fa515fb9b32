// Command earlyaccess: servidor HTTP del registro de early access, migraciones
// y un formulario de terminal para registrarse.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/earlyaccess/internal/config"
	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
)

type rootOpts struct {
	configPath string
	envFile    string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &rootOpts{
		configPath: envOr("CONFIG_PATH", ""),
		envFile:    envOr("ENV_FILE", ".env"),
	}

	root := &cobra.Command{
		Use:           "earlyaccess",
		Short:         "Registro de early access (server, migraciones y formulario CLI)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if o.envFile != "" {
				// .env es opcional
				if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("load %s: %w", o.envFile, err)
				}
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&o.configPath, "config", o.configPath, "Archivo YAML de config (env CONFIG_PATH); vacío = sólo env")
	root.PersistentFlags().StringVar(&o.envFile, "env-file", o.envFile, "Archivo .env a cargar si existe")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Nivel de log: debug|info|warn|error (pisa LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(o),
		newMigrateCmd(o),
		newRegisterCmd(o),
		newValidateCmd(o),
	)
	return root
}

// load lee y valida la config e inicializa el logger global.
func (o *rootOpts) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.App.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger.Replace(logger.Build(logger.Config{
		Env:         logEnv(cfg),
		Level:       cfg.App.LogLevel,
		ServiceName: "earlyaccess",
	}))
	return cfg, nil
}

func logEnv(cfg *config.Config) string {
	if cfg.IsProd() {
		return "prod"
	}
	return "dev"
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
