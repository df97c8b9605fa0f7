package service

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/wneessen/go-mail"

	"github.com/AnuphapGBC/invoice-management-service/internal/blobstore"
	"github.com/AnuphapGBC/invoice-management-service/internal/repository"
)

// MailRequest describes one outbound invoice email.
type MailRequest struct {
	From      string
	To        string
	Subject   string
	Body      string
	InvoiceID string
}

// MailResult reports which attachments made it into the sent message.
type MailResult struct {
	Attached []string `json:"attached,omitempty"`
	Skipped  []string `json:"skipped,omitempty"`
}

// MailService sends an invoice's scanned receipts by email.
type MailService interface {
	SendInvoiceMail(ctx context.Context, req MailRequest) (*MailResult, error)
}

// SMTPConfig holds SMTP delivery settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type mailService struct {
	repo  repository.InvoiceRepository
	store blobstore.Store
	cfg   SMTPConfig
}

// NewMailService creates a mail service that attaches blobs from the store.
func NewMailService(repo repository.InvoiceRepository, store blobstore.Store, cfg SMTPConfig) MailService {
	return &mailService{repo: repo, store: store, cfg: cfg}
}

// SendInvoiceMail loads the invoice's attachments and emails them. A blob
// that cannot be read is skipped and reported, not fatal; the invoice itself
// must exist.
func (s *mailService) SendInvoiceMail(ctx context.Context, req MailRequest) (*MailResult, error) {
	if _, err := s.repo.GetByID(ctx, req.InvoiceID); err != nil {
		return nil, err
	}

	refs, err := s.repo.ListAttachments(ctx, req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(req.From, s.cfg.Sender); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(req.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(req.Subject)
	msg.SetBodyString(mail.TypeTextPlain, req.Body)

	result := &MailResult{}
	for _, ref := range refs {
		data, err := s.store.Read(ctx, ref)
		if err != nil {
			log.Printf("send mail: skipping unreadable attachment %s: %v", ref, err)
			result.Skipped = append(result.Skipped, ref)
			continue
		}
		if err := msg.AttachReader(ref, bytes.NewReader(data)); err != nil {
			log.Printf("send mail: failed to attach %s: %v", ref, err)
			result.Skipped = append(result.Skipped, ref)
			continue
		}
		result.Attached = append(result.Attached, ref)
	}

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send mail: %w", err)
	}
	return result, nil
}
