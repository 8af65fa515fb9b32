package email

import (
	"go.uber.org/zap"

	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
	"github.com/dropDatabas3/earlyaccess/internal/util"
)

// LogSender no envía nada: loguea el mail. Con EchoBody loguea también el
// texto (incluye el link de confirmación), útil en dev.
type LogSender struct {
	Log      *zap.Logger
	EchoBody bool
}

func (s LogSender) Send(to, subject, _, textBody string) error {
	if to == "" {
		return ErrNoRecipient
	}
	log := s.Log
	if log == nil {
		log = logger.L()
	}
	fields := []zap.Field{logger.Component("log_sender"), logger.String("subject", subject)}
	if s.EchoBody {
		fields = append(fields, logger.String("to", to), logger.String("body", textBody))
	} else {
		fields = append(fields, logger.String("to", util.MaskEmail(to)))
	}
	log.Info("email not sent (log driver)", fields...)
	return nil
}
