// Package email envía el mail de confirmación de early access.
//
//	Service.Register ──► Mailer.SendConfirmation ──► Templates (embed) ──► Sender
//	                                                                       ├─ SMTPSender (go-mail)
//	                                                                       └─ LogSender  (dev)
package email
