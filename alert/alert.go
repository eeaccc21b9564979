// Package alert emails when the comfort classification changes.
package alert

import (
	"context"
	"fmt"
	"math"
	"time"

	mailgun "github.com/mailgun/mailgun-go/v3"
	"go.uber.org/zap"

	"gitlab.com/lologarithm/comfortnode/actuator"
	"gitlab.com/lologarithm/comfortnode/climate"
	"gitlab.com/lologarithm/comfortnode/node"
)

// MailgunConfig is the settings needed to use Mailgun for emails.
type MailgunConfig struct {
	APIKey     string   `yaml:"api_key"`
	Domain     string   `yaml:"domain"`
	Sender     string   `yaml:"sender"`
	Recipients []string `yaml:"recipients"`
}

// Enabled reports whether enough is configured to send anything.
func (mc MailgunConfig) Enabled() bool {
	return mc.APIKey != "" && mc.Domain != "" && len(mc.Recipients) > 0
}

type Sender interface {
	Send(ctx context.Context, subj, msg string) error
}

// Mailer sends through Mailgun.
type Mailer struct {
	mg  mailgun.Mailgun
	cfg MailgunConfig
}

func NewMailer(mc MailgunConfig) *Mailer {
	return &Mailer{mg: mailgun.NewMailgun(mc.Domain, mc.APIKey), cfg: mc}
}

func (m *Mailer) Send(ctx context.Context, subj, msg string) error {
	message := m.mg.NewMessage(m.cfg.Sender, subj, msg, m.cfg.Recipients...)

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	resp, id, err := m.mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("send alert: %w", err)
	}
	if id == "" {
		return fmt.Errorf("send alert, invalid ID: %s", resp)
	}
	return nil
}

// Watcher follows reports and sends one email per comfort transition.
// The first report only sets the baseline.
type Watcher struct {
	name   string
	sender Sender
	log    *zap.SugaredLogger

	seen bool
	last climate.Comfort

	sent chan struct{}
}

func NewWatcher(name string, s Sender, log *zap.SugaredLogger) *Watcher {
	return &Watcher{name: name, sender: s, log: log}
}

// Reported is called from the control loop, so sending happens on its own goroutine.
func (w *Watcher) Reported(r node.Report) {
	prev, seen := w.last, w.seen
	w.last, w.seen = r.Comfort, true
	if !seen || prev == r.Comfort {
		return
	}

	subj := fmt.Sprintf("%s: comfort is now %s", w.name, r.Comfort)
	msg := fmt.Sprintf("%s changed from %s to %s at %s.\nTemperature: %s\nHumidity: %s\n",
		w.name, prev, r.Comfort, r.Stamp.ISO, reading(r.Sample.Temp, "C"), reading(r.Sample.Humi, "%"))
	go func() {
		if err := w.sender.Send(context.Background(), subj, msg); err != nil {
			w.log.Errorf("[Error] Failed to send alert: %s", err)
		}
		if w.sent != nil {
			w.sent <- struct{}{}
		}
	}()
}

func (w *Watcher) ActuatorsPolled(actuator.Command) {}

func reading(v float64, unit string) string {
	if math.IsNaN(v) {
		return "invalid"
	}
	return fmt.Sprintf("%.1f%s", v, unit)
}
