package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

var headerSanitizer = strings.NewReplacer("\r", " ", "\n", " ")

// SendFunc matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	host     string
	port     string
	from     string
	sendMail SendFunc
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host:     host,
		port:     port,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

// WithSendFunc replaces the SMTP transport, used by tests
func (s *Service) WithSendFunc(fn SendFunc) *Service {
	s.sendMail = fn
	return s
}

// SendOrderNotice tells the shop operator about a new order
func (s *Service) SendOrderNotice(to string, notice OrderNotice) error {
	subject := fmt.Sprintf("New order #%d from %s", notice.OrderID, headerSanitizer.Replace(notice.CustomerName))
	return s.send(to, subject, BuildOrderNoticeBody(notice))
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.sendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
