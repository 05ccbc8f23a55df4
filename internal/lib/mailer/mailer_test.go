package mailer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestMailer_Send(t *testing.T) {
	d := &fakeDialer{}
	m := NewWithDialer(d, "noreply@sacoladeideias.com")

	err := m.Send(Email{To: "contato@sacoladeideias.com", ReplyTo: "a@x.com", Subject: "Olá", Body: "Mensagem"})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	msg := d.sent[0]
	assert.Equal(t, []string{"noreply@sacoladeideias.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"contato@sacoladeideias.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"a@x.com"}, msg.GetHeader("Reply-To"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Mensagem")
}

func TestMailer_SendWithoutReplyTo(t *testing.T) {
	d := &fakeDialer{}
	m := NewWithDialer(d, "from@x.com")

	require.NoError(t, m.Send(Email{To: "to@x.com", Subject: "s", Body: "b"}))
	assert.Empty(t, d.sent[0].GetHeader("Reply-To"))
}

func TestMailer_SendError(t *testing.T) {
	m := NewWithDialer(&fakeDialer{err: errors.New("dial failed")}, "from@x.com")

	err := m.Send(Email{To: "to@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailer.Send")
}
