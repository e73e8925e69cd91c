package station

import (
	"errors"
	"log"

	"github.com/LeonardoBeccarini/waterlevel_station/internal/model"
)

// SMSSender is the modem surface the notifier needs.
type SMSSender interface {
	SendSMS(number, body string) error
}

// Notifier renders message codes and dispatches them to the contact list.
// Delivery outcomes are logged but never acted on; the SMS transport is
// fire-and-forget.
type Notifier struct {
	sms      SMSSender
	contacts []string
}

func NewNotifier(sms SMSSender, contacts []string) (*Notifier, error) {
	if sms == nil {
		return nil, errors.New("sms sender is nil")
	}
	if len(contacts) == 0 {
		return nil, errors.New("empty contact list")
	}
	return &Notifier{sms: sms, contacts: contacts}, nil
}

// Broadcast sends the rendered text to every contact in list order. A
// failing dispatch does not skip the remaining recipients.
func (n *Notifier) Broadcast(code model.MessageCode, level int) {
	body := model.RenderMessage(code, level)
	for _, num := range n.contacts {
		if err := n.sms.SendSMS(num, body); err != nil {
			log.Printf("notifier: sms to %s failed: %v", num, err)
		}
	}
}

// NotifyAdmin sends only to the first contact. Fault escalations follow the
// original station and warn the admin number alone.
func (n *Notifier) NotifyAdmin(code model.MessageCode, level int) {
	body := model.RenderMessage(code, level)
	if err := n.sms.SendSMS(n.contacts[0], body); err != nil {
		log.Printf("notifier: admin sms failed: %v", err)
	}
}
