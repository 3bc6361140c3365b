package mail

import (
	"log"

	"github.com/sony/gobreaker/v2"

	"marketplace/internal/breaker"
)

// logMailer prints messages instead of sending them. Used when no SMTP
// relay is configured.
type logMailer struct{}

func NewLogMailer() Mailer { return logMailer{} }

func (logMailer) Send(to, subject, body string) error {
	log.Printf("mail to=%s subject=%q\n%s", to, subject, body)
	return nil
}

type breakerMailer struct {
	next Mailer
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// WithBreaker stops calling next after repeated failures until it cools down.
func WithBreaker(next Mailer, s breaker.Settings) Mailer {
	return &breakerMailer{next: next, cb: breaker.New[struct{}]("mail", s)}
}

func (m *breakerMailer) Send(to, subject, body string) error {
	_, err := m.cb.Execute(func() (struct{}, error) {
		return struct{}{}, m.next.Send(to, subject, body)
	})
	return err
}

// ActivationMessage renders the account activation email.
func ActivationMessage(name, url string) (subject, body string) {
	return "Activate your account",
		"Hello " + name + ", please click on the link to activate your account: " + url
}
