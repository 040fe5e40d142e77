package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendMirrorReady(toEmail, name, mirrorTitle, link string) error
	SendNotification(toEmail, subject, message, link string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderName, frontendURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
		frontendURL: frontendURL,
	}
}

// link resolves an app-relative path against the frontend URL.
func (s *emailService) link(path string) string {
	if path == "" {
		return s.frontendURL
	}
	return s.frontendURL + path
}

func (s *emailService) newMessage(toEmail, subject string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	return m
}

func (s *emailService) SendMirrorReady(toEmail, name, mirrorTitle, link string) error {
	m := s.newMessage(toEmail, "Your mirror is ready")

	greeting := "Hi"
	if name != "" {
		greeting = "Hi " + html.EscapeString(name)
	}
	href := html.EscapeString(s.link(link))

	body := fmt.Sprintf(`
		<div style="font-family: Georgia, serif; padding: 24px; color: #2b2b2b;">
			<p>%s,</p>
			<p>Your new mirror, <strong>%s</strong>, is waiting for you.</p>
			<a href="%s" style="background-color: #3d5a80; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open my mirror</a>
			<p style="color: #777; font-size: 13px;">Take a quiet moment before you open it.</p>
		</div>
	`, greeting, html.EscapeString(mirrorTitle), href)

	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

func (s *emailService) SendNotification(toEmail, subject, message, link string) error {
	m := s.newMessage(toEmail, subject)

	body := fmt.Sprintf(`
		<div style="font-family: Georgia, serif; padding: 24px; color: #2b2b2b;">
			<p>%s</p>
			<a href="%s">Open Oxbow</a>
		</div>
	`, html.EscapeString(message), html.EscapeString(s.link(link)))

	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}
