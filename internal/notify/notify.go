// Package notify delivers the emails sent to requesters when an administrator
// acts on their ticket. Delivery is best-effort: callers log failures and move on.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"
)

// Email is one rendered message.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Notifier sends a rendered email.
type Notifier interface {
	Send(ctx context.Context, e Email) error
}

// LogNotifier only logs the message. It is used when no mail API is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, e Email) error {
	n.log.Info("email a ser enviado",
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("html", e.HTML),
	)
	return nil
}

// CancellationData feeds the cancellation template.
type CancellationData struct {
	TicketNumber int64
	UserEmail    string
	UserName     string
	Setor        string
	Description  string
	AdminName    string
	CancelledAt  time.Time
}

// AssignmentData feeds the assignment template.
type AssignmentData struct {
	TicketNumber int64
	UserEmail    string
	UserName     string
	Setor        string
	Description  string
	Technician   string
	AssignedAt   time.Time
}

var funcs = template.FuncMap{
	"ptbr": func(t time.Time) string { return t.Format("02/01/2006, 15:04:05") },
}

var cancellationTmpl = template.Must(template.New("cancellation").Funcs(funcs).Parse(`
<h2>Chamado Cancelado</h2>
<p>Olá <strong>{{.UserName}}</strong>,</p>
<p>Informamos que o seu chamado foi cancelado pelo administrador.</p>
<h3>Detalhes do Chamado:</h3>
<ul>
  <li><strong>Número:</strong> #{{.TicketNumber}}</li>
  <li><strong>Setor:</strong> {{.Setor}}</li>
  <li><strong>Descrição:</strong> {{.Description}}</li>
  <li><strong>Cancelado por:</strong> {{.AdminName}}</li>
  <li><strong>Data do cancelamento:</strong> {{ptbr .CancelledAt}}</li>
</ul>
<p>Se você acredita que este cancelamento foi feito por engano, entre em contato com o suporte.</p>
<p>Atenciosamente,<br>
Equipe CRTE - Núcleo de Educação AMS</p>
`))

var assignmentTmpl = template.Must(template.New("assignment").Funcs(funcs).Parse(`
<h2>Chamado em Atendimento</h2>
<p>Olá <strong>{{.UserName}}</strong>,</p>
<p>O seu chamado foi assumido por um técnico e já está em atendimento.</p>
<h3>Detalhes do Chamado:</h3>
<ul>
  <li><strong>Número:</strong> #{{.TicketNumber}}</li>
  <li><strong>Setor:</strong> {{.Setor}}</li>
  <li><strong>Descrição:</strong> {{.Description}}</li>
  <li><strong>Técnico responsável:</strong> {{.Technician}}</li>
  <li><strong>Data da atribuição:</strong> {{ptbr .AssignedAt}}</li>
</ul>
<p>Atenciosamente,<br>
Equipe CRTE - Núcleo de Educação AMS</p>
`))

// CancellationEmail renders the message sent to the owner of a cancelled ticket.
func CancellationEmail(d CancellationData) (Email, error) {
	var buf bytes.Buffer
	if err := cancellationTmpl.Execute(&buf, d); err != nil {
		return Email{}, fmt.Errorf("render cancellation email: %w", err)
	}
	return Email{
		To:      d.UserEmail,
		Subject: fmt.Sprintf("Chamado #%d - Cancelado", d.TicketNumber),
		HTML:    buf.String(),
	}, nil
}

// AssignmentEmail renders the message sent when a technician takes the ticket.
func AssignmentEmail(d AssignmentData) (Email, error) {
	var buf bytes.Buffer
	if err := assignmentTmpl.Execute(&buf, d); err != nil {
		return Email{}, fmt.Errorf("render assignment email: %w", err)
	}
	return Email{
		To:      d.UserEmail,
		Subject: fmt.Sprintf("Chamado #%d - Em atendimento", d.TicketNumber),
		HTML:    buf.String(),
	}, nil
}
