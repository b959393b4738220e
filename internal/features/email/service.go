package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"path/filepath"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/config"

	"go.uber.org/zap"
)

type EmailService interface {
	SendEmail(ctx context.Context, to []string, subject, body string) error
	SendEmailWithAttachment(ctx context.Context, to []string, subject, body string, attachmentName string, attachmentData []byte) error
}

type EmailServiceImpl struct {
	Config *config.Config
	Repo   *EmailRepository
	Log    *zap.Logger
}

func NewEmailService(cfg *config.Config, repo *EmailRepository, log *zap.Logger) EmailService {
	return &EmailServiceImpl{Config: cfg, Repo: repo, Log: log}
}

func (s *EmailServiceImpl) smtpSetup() (addr, from string, auth smtp.Auth, err error) {
	cfg := s.Config
	if cfg.SMTPHost == "" || cfg.SMTPPort == 0 {
		return "", "", nil, apperr.Validation("smtp is not configured")
	}
	auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	addr = fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	from = cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUsername
	}
	return addr, from, auth, nil
}

func (s *EmailServiceImpl) SendEmail(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return apperr.Validation("at least one recipient is required")
	}

	addr, from, auth, err := s.smtpSetup()
	if err != nil {
		return err
	}

	rec := &Email{From: from, To: to, Subject: subject, Body: body, Status: EmailQueued}
	if s.Repo != nil {
		_ = s.Repo.Create(ctx, rec)
	}

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n", to[0], subject, body))

	sendErr := smtp.SendMail(addr, auth, from, to, msg)

	status, errMsg := EmailSent, ""
	if sendErr != nil {
		status, errMsg = EmailFailed, sendErr.Error()
	}
	if s.Repo != nil {
		_ = s.Repo.UpdateStatus(ctx, rec.ID, status, errMsg)
	}

	if sendErr != nil {
		s.Log.Error("email send failed", zap.Strings("to", to), zap.Error(sendErr))
		return apperr.ExternalService("email send failed", sendErr)
	}
	return nil
}

func (s *EmailServiceImpl) SendEmailWithAttachment(ctx context.Context, to []string, subject, body string, attachmentName string, attachmentData []byte) error {
	if len(to) == 0 {
		return apperr.Validation("at least one recipient is required")
	}

	addr, from, auth, err := s.smtpSetup()
	if err != nil {
		return err
	}

	marker := "DEVCOMarker"
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to[0]))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n", marker))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", marker))
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")

	if len(attachmentData) > 0 {
		buf.WriteString(fmt.Sprintf("--%s\r\n", marker))
		contentType := mime.TypeByExtension(filepath.Ext(attachmentName))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		buf.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", contentType, attachmentName))
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		buf.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", attachmentName))
		buf.WriteString("\r\n")

		b := make([]byte, base64.StdEncoding.EncodedLen(len(attachmentData)))
		base64.StdEncoding.Encode(b, attachmentData)
		buf.Write(b)
		buf.WriteString("\r\n")
	}

	buf.WriteString(fmt.Sprintf("--%s--", marker))

	if err := smtp.SendMail(addr, auth, from, to, buf.Bytes()); err != nil {
		s.Log.Error("email send failed", zap.Strings("to", to), zap.Error(err))
		return apperr.ExternalService("email send failed", err)
	}
	return nil
}
