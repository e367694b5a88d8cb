// Package twilio places scripted voice calls through the Twilio REST API.
package twilio

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"

	"dealfinder/internal/adapters/apiclient"
	"dealfinder/internal/domain"
)

const DefaultBaseURL = "https://api.twilio.com"

type Client struct {
	api  *apiclient.Client
	sid  string
	from string
}

func New(base, sid, token, from string) (*Client, error) {
	if sid == "" || token == "" || from == "" {
		return nil, fmt.Errorf("twilio: account sid, auth token and from number are required")
	}
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		api:  apiclient.New("twilio", base, 1, apiclient.WithBasicAuth(sid, token)),
		sid:  sid,
		from: from,
	}, nil
}

type callResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

func (c *Client) PlaceCall(ctx context.Context, req domain.CallRequest) (domain.CallTicket, error) {
	twiml, err := TwiML(req.Product)
	if err != nil {
		return domain.CallTicket{}, err
	}
	form := url.Values{
		"To":    {req.Seller.Phone},
		"From":  {c.from},
		"Twiml": {twiml},
	}
	var out callResponse
	path := "/2010-04-01/Accounts/" + url.PathEscape(c.sid) + "/Calls.json"
	if err := c.api.PostForm(ctx, path, form, &out); err != nil {
		return domain.CallTicket{}, fmt.Errorf("twilio place call: %w", err)
	}
	if out.SID == "" {
		return domain.CallTicket{}, fmt.Errorf("twilio place call: empty sid")
	}
	return domain.CallTicket{ID: out.SID, Status: out.Status, Provider: "twilio"}, nil
}

type response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr"`
	Text    string   `xml:",chardata"`
}

type pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// TwiML renders the scripted price inquiry for product.
func TwiML(product string) (string, error) {
	lines := []string{
		fmt.Sprintf("Hello, this is Alex from DealFinder AI. I'm calling about %s. Do you have it available?", product),
		"What's your current price for this item?",
		"Is there any flexibility on the price for immediate purchase?",
		"Thank you for your time. I'll include this in my comparison.",
	}
	r := response{}
	for i, l := range lines {
		r.Verbs = append(r.Verbs, say{Voice: "alice", Text: l})
		if i < len(lines)-1 {
			r.Verbs = append(r.Verbs, pause{Length: 3})
		}
	}
	r.Verbs = append(r.Verbs, hangup{})
	b, err := xml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("render twiml: %w", err)
	}
	return xml.Header + string(b), nil
}

// Ping fetches the account resource, which any valid credential pair can read.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.api.GetJSON(ctx, "/2010-04-01/Accounts/"+url.PathEscape(c.sid)+".json", nil); err != nil {
		return fmt.Errorf("twilio ping: %w", err)
	}
	return nil
}
