package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/termfolio/internal/config"
)

// ErrMailNotConfigured is returned when SMTP credentials are missing.
var ErrMailNotConfigured = errors.New("SMTP credentials not configured")

type ContactMessage struct {
	Name    string `json:"name" form:"fullName" binding:"required,max=200"`
	Email   string `json:"email" form:"email" binding:"required,email"`
	Message string `json:"message" form:"message" binding:"required,max=5000"`
}

func (s *Server) handleContact(c *gin.Context) {
	var msg ContactMessage
	if err := c.ShouldBind(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, a valid email and a message are required"})
		return
	}

	if err := s.mailer.Send(msg); err != nil {
		if errors.Is(err, ErrMailNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "contact form is not available"})
			return
		}
		s.log.Error("Error sending email", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Sorry, there was an error sending your message. Please try again later.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Thank you for your message! I'll get back to you soon."})
}

var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

type smtpMailer struct {
	cfg config.SMTPConfig
	log *zap.Logger
}

func (m smtpMailer) Send(msg ContactMessage) error {
	if !m.cfg.Configured() || m.cfg.ToEmail == "" {
		return ErrMailNotConfigured
	}

	name := headerSafe.Replace(msg.Name)
	subject := fmt.Sprintf("Portfolio Contact: %s", name)
	body := fmt.Sprintf(`
New contact form submission from your terminal portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, name, msg.Email, msg.Message)

	raw := []byte("To: " + m.cfg.ToEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + m.cfg.User + "\r\n" +
		"Reply-To: " + msg.Email + "\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	if err := smtp.SendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.User, []string{m.cfg.ToEmail}, raw); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.log.Info("Contact email sent", zap.String("from", msg.Email))
	return nil
}
