package core

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailMessage_Render(t *testing.T) {
	conf := NewTestConfig()
	conf.FrontendBaseURL = "https://caplc.test"

	for _, base := range []string{"_base.txt", "_base.gohtml"} {
		_, err := tmplFS.ReadFile(tmplDir + "/" + base)
		require.NoError(t, err, "%s must be embedded", base)
	}

	t.Run("carbon form", func(t *testing.T) {
		msg := &EmailMessage{
			To:           []mail.Address{{Name: "Paul Participant", Address: "paul@caplc.fr"}},
			TemplateName: "carbon_form",
			TemplateData: struct{ Name, WorkshopID, WorkshopName, StartAt string }{
				"Paul Participant", "w1", "Paris #1", "2021-03-01 18:00 UTC",
			},
		}
		require.NoError(t, msg.Render(conf))
		assert.Contains(t, msg.TextContent, "Hello Paul Participant,")
		assert.Contains(t, msg.TextContent, "https://caplc.test/carbon_form/w1")
		assert.Contains(t, msg.HTMLContent, "Paris #1")
		assert.True(t, msg.HasContent())
		assert.True(t, msg.HasRecipients())
	})

	t.Run("password reset", func(t *testing.T) {
		msg := &EmailMessage{
			TemplateName: "password_reset",
			TemplateData: map[string]string{"Name": "Zoe", "UID": "u1", "Token": "abc"},
		}
		require.NoError(t, msg.Render(conf))
		assert.True(t, msg.HasContent())
	})

	t.Run("missing data", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "password_reset", TemplateData: map[string]string{"Name": "Zoe"}}
		assert.Error(t, msg.Render(conf))
	})

	t.Run("unknown template", func(t *testing.T) {
		assert.Error(t, (&EmailMessage{TemplateName: "lol"}).Render(conf))
	})

	t.Run("no template", func(t *testing.T) {
		msg := &EmailMessage{}
		require.NoError(t, msg.Render(conf))
		assert.False(t, msg.HasContent())
	})
}
