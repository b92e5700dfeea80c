package emailsvc

import (
	"net/mail"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caplc/backend/core"
)

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Debug(string, ...interface{}) {}
func (l *recordingLogger) Info(string, ...interface{})  {}
func (l *recordingLogger) Warn(string, ...interface{})  {}
func (l *recordingLogger) Fatal(msg string, _ ...interface{}) {
	panic(msg)
}

func (l *recordingLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := core.NewTestConfig()
	to := []mail.Address{{Name: "Paul", Address: "paul@caplc.fr"}}

	tests := []struct {
		name     string
		msg      core.EmailMessage
		wantSent bool
		wantErr  string
	}{
		{
			name:     "rendered",
			msg:      core.EmailMessage{To: to, Subject: "Hi", TextContent: "Hello"},
			wantSent: true,
		},
		{
			name:    "unknown template",
			msg:     core.EmailMessage{To: to, TemplateName: "lol"},
			wantErr: "rendering lol email",
		},
		{
			name:    "missing template data",
			msg:     core.EmailMessage{To: to, TemplateName: "password_reset", TemplateData: map[string]string{}},
			wantErr: "rendering password_reset email",
		},
		{
			name: "no recipients",
			msg:  core.EmailMessage{TextContent: "Hello"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger := new(recordingLogger)
			svc := NewConsoleServiceMock(conf, logger)
			msg := tc.msg

			require.NotPanics(t, func() { svc.SendMessages(&msg) })

			if tc.wantSent {
				assert.Len(t, svc.SentMessages(), 1)
			} else {
				assert.Empty(t, svc.SentMessages())
			}
			if tc.wantErr == "" {
				assert.Empty(t, logger.errors)
				return
			}
			require.Len(t, logger.errors, 1)
			assert.True(t, strings.HasPrefix(logger.errors[0], tc.wantErr), logger.errors[0])
		})
	}
}

func TestConsoleService_format(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf, new(recordingLogger))

	out, err := svc.format(core.EmailMessage{
		To:           []mail.Address{{Name: "Paul", Address: "paul@caplc.fr"}, {Address: "jane@caplc.fr"}},
		ReplyTo:      &mail.Address{Name: "Zoe", Address: "zoe@caplc.fr"},
		Subject:      "Carbon form",
		TemplateName: "carbon_form",
		TextContent:  "Hello",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "To: \"Paul\" <paul@caplc.fr>, <jane@caplc.fr>\r\n")
	assert.Contains(t, out, "Reply-To: \"Zoe\" <zoe@caplc.fr>\r\n")
	assert.Contains(t, out, "Subject: ["+conf.AppName+"] Carbon form\r\n")
	assert.Contains(t, out, "X-Category: carbon_form\r\n")
	assert.Contains(t, out, "Content-Type: text/plain; charset=utf-8")
	assert.NotContains(t, out, "text/html")
}
