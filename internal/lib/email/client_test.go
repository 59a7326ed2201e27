package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

type fakeSender struct {
	got *resend.SendEmailRequest
	err error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "email-123"}, nil
}

func TestClient_Publish(t *testing.T) {
	fake := &fakeSender{}
	log := zerolog.Nop()
	c := newClient(fake, "Notify <notify@example.com>", &log)

	id, err := c.Publish(context.Background(), "ops@example.com", "Alert", "disk <full>")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if id != "email-123" {
		t.Errorf("Publish() id = %q, want %q", id, "email-123")
	}
	if fake.got.From != "Notify <notify@example.com>" {
		t.Errorf("From = %q", fake.got.From)
	}
	if len(fake.got.To) != 1 || fake.got.To[0] != "ops@example.com" {
		t.Errorf("To = %v", fake.got.To)
	}
	if fake.got.Subject != "Alert" || fake.got.Text != "disk <full>" {
		t.Errorf("Subject/Text = %q/%q", fake.got.Subject, fake.got.Text)
	}
	if !strings.Contains(fake.got.Html, "disk &lt;full&gt;") {
		t.Errorf("Html should contain the escaped message, got %s", fake.got.Html)
	}
}

func TestClient_PublishError(t *testing.T) {
	log := zerolog.Nop()
	cause := errors.New("domain not verified")
	c := newClient(&fakeSender{err: cause}, "a@example.com", &log)

	_, err := c.Publish(context.Background(), "b@example.com", "s", "m")
	if !errors.Is(err, cause) {
		t.Errorf("Publish() error = %v, want wrapping %v", err, cause)
	}
}

func TestRender_Preview(t *testing.T) {
	for name, data := range PreviewData {
		html, err := Render(name, data)
		if err != nil {
			t.Fatalf("Render(%s) error = %v", name, err)
		}
		if !strings.Contains(html, data["Subject"]) {
			t.Errorf("Render(%s) missing subject", name)
		}
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	if _, err := Render("missing", nil); err == nil {
		t.Error("Render() error = nil for an unknown template")
	}
}
