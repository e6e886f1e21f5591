package services

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"time"

	"communityhub/internal/config"
	"communityhub/internal/logger"
	"communityhub/internal/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// 外部邮件服务的超时时间
const mailTimeout = 10 * time.Second

// MailMessage 一封待发送的邮件
type MailMessage struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Mailer 邮件发送通道
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// MailService 业务邮件模板
type MailService struct {
	mailer Mailer
}

func NewMailService(m Mailer) *MailService {
	return &MailService{mailer: m}
}

// SendLoginCode 登录验证码
func (s *MailService) SendLoginCode(ctx context.Context, email, name, code string) error {
	msg := MailMessage{
		To:      email,
		ToName:  name,
		Subject: "Your Login Code",
		HTML: fmt.Sprintf("<h2>Hello %s,</h2><p>Your one-time code is: <strong>%s</strong></p><p>Valid for 5 minutes.</p>",
			html.EscapeString(name), code),
	}
	return s.send(ctx, msg, "login")
}

// SendResetCode 重置密码验证码
func (s *MailService) SendResetCode(ctx context.Context, email, code string) error {
	msg := MailMessage{
		To:      email,
		Subject: "Password Reset Code",
		HTML:    fmt.Sprintf("<h2>Password Reset Request</h2><p>Your code: <strong>%s</strong></p><p>Valid for 5 minutes.</p>", code),
	}
	return s.send(ctx, msg, "reset")
}

func (s *MailService) send(ctx context.Context, msg MailMessage, purpose string) error {
	ctx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()

	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.Get().OTPSentTotal.WithLabelValues(purpose, "error").Inc()
		logger.Log.Error("Failed to send email", zap.String("purpose", purpose), zap.Error(err))
		return err
	}
	metrics.Get().OTPSentTotal.WithLabelValues(purpose, "ok").Inc()
	return nil
}

// NewMailerFromConfig 按 MAIL_PROVIDER 选择发送通道
func NewMailerFromConfig(cfg *config.Config) (Mailer, error) {
	switch cfg.MailProvider {
	case "brevo":
		if cfg.BrevoAPIKey == "" {
			return nil, fmt.Errorf("BREVO_API_KEY is required for the brevo mail provider")
		}
		return NewBrevoMailer(cfg.BrevoAPIKey, cfg.MailFrom, cfg.MailFromName), nil
	case "ses":
		return NewSESMailer(cfg.AWSRegion, cfg.MailFrom, cfg.MailFromName)
	case "smtp":
		if cfg.SMTPHost == "" || cfg.SMTPPort == "" {
			return nil, fmt.Errorf("SMTP_HOST and SMTP_PORT are required for the smtp mail provider")
		}
		return &SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
			FromName: cfg.MailFromName,
		}, nil
	case "", "log":
		logger.Log.Warn("MailService disabled: messages are written to the log")
		return LogMailer{}, nil
	}
	return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
}

// BrevoMailer 通过 Brevo 事务邮件 API 发送
type BrevoMailer struct {
	client   *resty.Client
	from     string
	fromName string
}

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

func NewBrevoMailer(apiKey, from, fromName string) *BrevoMailer {
	client := resty.New().
		SetTimeout(mailTimeout).
		SetHeader("api-key", apiKey).
		SetHeader("accept", "application/json").
		SetHeader("content-type", "application/json")
	return &BrevoMailer{client: client, from: from, fromName: fromName}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (m *BrevoMailer) Send(ctx context.Context, msg MailMessage) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(brevoRequest{
			Sender:      brevoAddress{Email: m.from, Name: m.fromName},
			To:          []brevoAddress{{Email: msg.To, Name: msg.ToName}},
			Subject:     msg.Subject,
			HTMLContent: msg.HTML,
		}).
		Post(brevoEndpoint)
	if err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	if resp.StatusCode() != 201 {
		return fmt.Errorf("brevo returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// SESMailer 通过 AWS SES 发送
type SESMailer struct {
	client   *ses.Client
	from     string
	fromName string
}

func NewSESMailer(region, from, fromName string) (*SESMailer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESMailer{client: ses.NewFromConfig(cfg), from: from, fromName: fromName}, nil
}

func (m *SESMailer) Send(ctx context.Context, msg MailMessage) error {
	from := m.from
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", m.fromName, m.from)
	}
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &sestypes.Destination{ToAddresses: []string{msg.To}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Html: &sestypes.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

// SMTPMailer 直连 SMTP 服务器
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) error {
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	body := []byte(fmt.Sprintf("To: %s\r\nFrom: %s <%s>\r\nSubject: %s\r\n%s\r\n%s",
		msg.To, m.FromName, m.From, msg.Subject, mime, msg.HTML))

	// net/smtp 不支持 context，放到 goroutine 里等待
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.From, []string{msg.To}, body)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

// LogMailer 开发环境使用，只写日志
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg MailMessage) error {
	logger.Log.Info("Mail (not sent)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", strings.TrimSpace(msg.HTML)),
	)
	return nil
}
