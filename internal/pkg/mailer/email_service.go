// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"

	"ai-coursebuilder-be/internal/constant"
)

type IEmailService interface {
	SendCoursePublished(toEmail, courseTitle, courseID string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string // Added to construct links
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendCoursePublished(toEmail, courseTitle, courseID string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", constant.CoursePublishedMailSubject)

	courseLink := fmt.Sprintf("%s/courses/%s", s.frontendURL, courseID)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your course "%s" has been published!</h2>
			<p>It passed validation and is now available to learners.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">View Course</a>
			<p>Or copy this link:</p>
			<p>%s</p>
		</div>
	`, courseTitle, courseLink, courseLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send publish notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Publish notice sent to %s\n", toEmail)
	return nil
}
