package email

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/resendlabs/resend-go"
)

type EmailService struct {
	client       *resend.Client
	from         string
	fromName     string
	templatesDir string
	logger       *log.Logger
}

func NewEmailService(apiKey, fromAddress, fromName string) *EmailService {
	logger := log.New(os.Stdout, "EMAIL: ", log.LstdFlags)

	logFile, err := os.OpenFile("logs/email.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err == nil {
		logger = log.New(io.MultiWriter(os.Stdout, logFile), "EMAIL: ", log.LstdFlags)
	}

	return &EmailService{
		client:       resend.NewClient(apiKey),
		from:         fromAddress,
		fromName:     fromName,
		templatesDir: "pkg/email/templates",
		logger:       logger,
	}
}

func (s *EmailService) SendWelcomeEmail(email, username string) error {
	templateData := map[string]interface{}{
		"Username": username,
		"Email":    email,
		"Year":     time.Now().Year(),
	}

	html, err := s.parseTemplate("welcome.html", templateData)
	if err != nil {
		s.logger.Printf("Error parsing welcome template for %s: %v", email, err)
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{email},
		Subject: "Welcome to Verifico!",
		Html:    html,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Printf("Failed to send welcome email to %s: %v", email, err)
		return err
	}

	s.logger.Printf("Successfully sent welcome email to %s (ID: %s)", email, resp.Id)
	return nil
}

// SendCreditPurchaseReceipt emails a digital receipt after a purchase
// settles. Callers treat it as best effort: a failure here never affects
// the payment or the ledger.
func (s *EmailService) SendCreditPurchaseReceipt(email, username string, credits int, priceInCents int64) error {
	templateData := map[string]interface{}{
		"Username": username,
		"Credits":  credits,
		"Price":    fmt.Sprintf("$%.2f", float64(priceInCents)/100),
		"Date":     time.Now().Format("02 Jan 2006"),
		"Year":     time.Now().Year(),
	}

	html, err := s.parseTemplate("purchase-receipt.html", templateData)
	if err != nil {
		s.logger.Printf("Error parsing receipt template for %s: %v", email, err)
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{email},
		Subject: "Your Verifico purchase receipt",
		Html:    html,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Printf("Failed to send receipt email to %s: %v", email, err)
		return err
	}

	s.logger.Printf("Successfully sent receipt email to %s (ID: %s)", email, resp.Id)
	return nil
}

func (s *EmailService) parseTemplate(name string, data map[string]interface{}) (string, error) {
	tmpl, err := template.ParseFiles(filepath.Join(s.templatesDir, name))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
