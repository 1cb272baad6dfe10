package email

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"channel-monitor/internal/models"
	"channel-monitor/shared/config"
)

type capturedMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func testSender(cfg *config.EmailConfig, sendErr error) (*Sender, *[]capturedMail) {
	var sent []capturedMail
	s := NewSender(cfg)
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, capturedMail{addr: addr, auth: a, from: from, to: to, msg: string(msg)})
		return sendErr
	}
	return s, &sent
}

func testDigest() *models.Digest {
	return &models.Digest{
		Date:       time.Date(2024, time.January, 21, 0, 0, 0, 0, time.UTC),
		Title:      "YouTube Channel Monitor",
		ReportPath: "templates/index.html",
		Entries: []models.DigestEntry{
			{
				ChannelName: "Alpha & Co",
				Video: models.VideoRecord{
					ID:         "vidA",
					Title:      "First <video>",
					URL:        "https://www.youtube.com/watch?v=vidA",
					Duration:   "04:02",
					UploadDate: time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC),
				},
			},
		},
	}
}

func TestSendDigest(t *testing.T) {
	cfg := &config.EmailConfig{
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
		Username:   "monitor",
		Password:   "secret",
		FromEmail:  "monitor@example.com",
		ToEmail:    "me@example.com",
	}
	s, sent := testSender(cfg, nil)

	if err := s.SendDigest(testDigest()); err != nil {
		t.Fatalf("SendDigest() failed: %v", err)
	}
	if len(*sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(*sent))
	}

	mail := (*sent)[0]
	if mail.addr != "smtp.example.com:587" {
		t.Errorf("addr = %q", mail.addr)
	}
	if mail.auth == nil {
		t.Error("Expected PLAIN auth when a username is configured")
	}
	if len(mail.to) != 1 || mail.to[0] != "me@example.com" {
		t.Errorf("to = %v", mail.to)
	}
	for _, want := range []string{
		"Subject: YouTube Channel Monitor - 1 New Videos (Jan 21, 2024)",
		"Alpha &amp; Co",
		"First &lt;video&gt;",
		`href="https://www.youtube.com/watch?v=vidA"`,
		"Full report: templates/index.html",
	} {
		if !strings.Contains(mail.msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSendDigestEmpty(t *testing.T) {
	s, sent := testSender(&config.EmailConfig{SMTPServer: "smtp.example.com", ToEmail: "me@example.com"}, nil)

	if err := s.SendDigest(&models.Digest{}); err != nil {
		t.Fatalf("SendDigest() failed: %v", err)
	}
	if len(*sent) != 0 {
		t.Error("Expected no email for an empty digest")
	}
	if err := s.SendDigest(nil); err == nil {
		t.Error("Expected error for nil digest")
	}
}

func TestSendHTMLErrors(t *testing.T) {
	cfg := &config.EmailConfig{SMTPServer: "smtp.example.com", SMTPPort: 25, ToEmail: "me@example.com"}
	smtpErr := errors.New("connection refused")
	s, sent := testSender(cfg, smtpErr)

	err := s.SendHTML("subject", "<p>body</p>")
	if !errors.Is(err, smtpErr) {
		t.Errorf("error %v should wrap %v", err, smtpErr)
	}
	if len(*sent) != 1 || (*sent)[0].auth != nil {
		t.Error("Expected one unauthenticated attempt")
	}
}
