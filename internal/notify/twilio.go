package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioSMS sends the short-form summary through the Twilio Messages
// API. The request is a plain form POST; no SDK needed.
type TwilioSMS struct {
	accountSID string
	authToken  string
	fromNumber string

	httpClient *http.Client
	baseURL    string
}

func NewTwilioSMS(accountSID, authToken, fromNumber string) *TwilioSMS {
	return &TwilioSMS{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: http.DefaultClient,
		baseURL:    twilioAPIBase,
	}
}

func (t *TwilioSMS) Configured() bool {
	return t != nil && t.accountSID != "" && t.authToken != "" && t.fromNumber != ""
}

func (t *TwilioSMS) Send(ctx context.Context, phone, text string) (Outcome, error) {
	if !t.Configured() {
		return Outcome{Success: false, Error: "sms not configured"}, nil
	}
	if phone == "" {
		return Outcome{Success: false, Error: "no phone number provided"}, nil
	}

	form := url.Values{}
	form.Set("From", t.fromNumber)
	form.Set("To", phone)
	form.Set("Body", text)

	endpoint := t.baseURL + "/Accounts/" + t.accountSID + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Outcome{Success: false, Error: err.Error()}, nil
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := t.httpClient.Do(req)
	if err != nil {
		return Outcome{Success: false, Error: err.Error()}, nil
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return Outcome{Success: false, Error: "twilio send failed: " + strings.TrimSpace(string(body))}, nil
	}

	var created struct {
		Sid string `json:"sid"`
	}
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		// The message went out; a malformed response only loses the id.
		return Outcome{Success: true}, nil
	}
	return Outcome{Success: true, MessageID: created.Sid}, nil
}
