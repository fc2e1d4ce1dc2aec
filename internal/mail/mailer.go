package mail

import (
	"fmt"
	"net/smtp"
	"os"

	"booking-app/internal/domain/bookings"
)

// SMTPMailer sends transactional mails over plain SMTP. Settings come from
// the SMTP_* environment variables.
type SMTPMailer struct{}

func send(to, subject, body string) error {
	from := os.Getenv("SMTP_FROM")
	password := os.Getenv("SMTP_PASSWORD")
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")

	auth := smtp.PlainAuth("", from, password, host)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	err := smtp.SendMail(host+":"+port, auth, from, []string{to}, message)
	if err != nil {
		fmt.Println("SMTP error:", err)
	}
	return err
}

// SendVerificationEmail mails the account-verification link.
func (SMTPMailer) SendVerificationEmail(to string, token string) error {
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}
	link := fmt.Sprintf("%s/verify?token=%s", appURL, token)
	body := fmt.Sprintf("Click the following link to verify your account:\n\n%s", link)
	return send(to, "Verify Your Account", body)
}

// SendBookingConfirmation mails the receipt for a freshly paid booking.
func (SMTPMailer) SendBookingConfirmation(to string, b *bookings.Booking) error {
	body := fmt.Sprintf(
		"Payment successful! Your booking has been confirmed.\n\nReference: %s\nFrom: %s\nTo:   %s\n",
		b.Reference,
		b.DateStart.Format("2006-01-02 15:04"),
		b.DateEnd.Format("2006-01-02 15:04"),
	)
	return send(to, "Booking Confirmation", body)
}
