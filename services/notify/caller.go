package notify

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/twilio/twilio-go/twiml"

	"voicedesk/config"
)

// Caller places outbound phone calls through the telephony provider.
type Caller struct {
	client *twilio.RestClient
	from   string
}

func NewCaller() *Caller {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: config.AppConfig.TwilioAccountSID,
		Password: config.AppConfig.TwilioAuthToken,
	})
	return &Caller{client: client, from: config.AppConfig.TwilioPhoneNumber}
}

// Call dials the number and speaks the message.
func (c *Caller) Call(to, message string) error {
	doc, err := twiml.Voice([]twiml.Element{
		twiml.VoiceSay{Message: message},
		twiml.VoiceHangup{},
	})
	if err != nil {
		return fmt.Errorf("failed to build call markup: %w", err)
	}

	params := &twilioApi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetTwiml(doc)

	if _, err := c.client.Api.CreateCall(params); err != nil {
		return fmt.Errorf("failed to place call to %s: %w", to, err)
	}
	return nil
}
