package emailsvc

import (
	"fmt"
	"log"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/caplc/backend/core"
)

type consoleService struct {
	conf             *core.Config
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
	logger           core.Logger
}

var _ core.EmailService = (*consoleService)(nil)

// NewConsoleService returns an EmailService printing the messages to the standard logger.
func NewConsoleService(conf *core.Config, logger core.Logger) core.EmailService {
	return &consoleService{
		conf:             conf,
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		logger:           logger,
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) bool {
	if err := msg.Render(svc.conf); err != nil {
		svc.logger.Error(fmt.Sprintf("rendering %s email: %v", msg.TemplateName, err), err)
		return false
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return false
	}
	out, err := svc.format(*msg)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("formatting %s email: %v", msg.TemplateName, err), err)
		return false
	}
	if !svc.disableOutput {
		log.Println(out)
	}
	return true
}

// format writes msg as a multipart/alternative MIME message.
func (svc consoleService) format(msg core.EmailMessage) (string, error) {
	body := new(strings.Builder)
	w := multipart.NewWriter(body)

	headers := [][2]string{
		{"From", svc.defaultFromEmail.String()},
		{"To", joinAddresses(msg.To)},
		{"Subject", svc.subjPrefix + msg.Subject},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"X-Category", msg.TemplateName},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + w.Boundary()},
	}
	if msg.ReplyTo != nil {
		headers = append(headers, [2]string{"Reply-To", msg.ReplyTo.String()})
	}
	for _, h := range headers {
		_, _ = fmt.Fprintf(body, "%s: %s\r\n", h[0], h[1])
	}
	_, _ = fmt.Fprint(body, "\r\n")

	parts := [][2]string{{"text/plain", msg.TextContent}, {"text/html", msg.HTMLContent}}
	for _, part := range parts {
		if part[1] == "" {
			continue
		}
		pw, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {part[0] + "; charset=utf-8"}})
		if err != nil {
			return "", errors.Wrap(err, "creating "+part[0]+" part")
		}
		_, _ = fmt.Fprintf(pw, "%s\r\n", part[1])
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return body.String(), nil
}

func joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}

// ConsoleServiceMock sends messages synchronously and keeps them for inspection.
type ConsoleServiceMock struct {
	consoleService
	mu   sync.Mutex
	sent []core.EmailMessage
}

func NewConsoleServiceMock(conf *core.Config, logger core.Logger) *ConsoleServiceMock {
	return &ConsoleServiceMock{
		consoleService: consoleService{
			conf:             conf,
			defaultFromEmail: conf.DefaultFromEmail,
			subjPrefix:       "[" + conf.AppName + "] ",
			disableOutput:    true,
			logger:           logger,
		},
	}
}

func (svc *ConsoleServiceMock) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		// run synchronously
		if svc.sendMessage(msg) {
			svc.mu.Lock()
			svc.sent = append(svc.sent, *msg)
			svc.mu.Unlock()
		}
	}
}

// SentMessages returns the messages sent so far.
func (svc *ConsoleServiceMock) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	msgs := make([]core.EmailMessage, len(svc.sent))
	copy(msgs, svc.sent)
	return msgs
}

// Reset forgets the sent messages.
func (svc *ConsoleServiceMock) Reset() {
	svc.mu.Lock()
	svc.sent = nil
	svc.mu.Unlock()
}
