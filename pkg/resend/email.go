package resend

// The file contains request definitions for the Emails API.
// https://resend.com/docs/api-reference/emails

import (
	"fmt"
	"net/http"

	"github.com/resend-community/go-client/pkg/client"
	"github.com/resend-community/go-client/pkg/request"
)

// EmailService sends and retrieves emails.
// The Client can be replaced, for example in tests.
type EmailService struct {
	Client client.Client
}

// Tag is a custom key-value pair attached to an email.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Attachment of an email, the Content is encoded to base64.
// Path is an URL of the attachment, it can be used instead of the Content.
type Attachment struct {
	Content  []byte `json:"content,omitempty"`
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
}

// SendEmailRequest is the body of the send email request.
type SendEmailRequest struct {
	Subject     string            `json:"subject"`
	From        string            `json:"from"`
	To          []string          `json:"to"`
	Cc          []string          `json:"cc,omitempty"`
	Bcc         []string          `json:"bcc,omitempty"`
	ReplyTo     string            `json:"reply_to,omitempty"`
	HTML        string            `json:"html,omitempty"`
	Text        string            `json:"text,omitempty"`
	Tags        []Tag             `json:"tags,omitempty"`
	Attachments []*Attachment     `json:"attachments,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type SendEmailResponse struct {
	ID string `json:"id"`
}

// Email is a sent email.
// Optional fields are nil if the value is null or missing.
type Email struct {
	ID        string    `json:"id"`
	Object    string    `json:"object"`
	From      string    `json:"from"`
	To        []string  `json:"to"`
	CreatedAt CreatedAt `json:"created_at"`
	Subject   string    `json:"subject"`
	HTML      *string   `json:"html"`
	Text      *string   `json:"text"`
	Bcc       []*string `json:"bcc"`
	Cc        []*string `json:"cc"`
	ReplyTo   []*string `json:"reply_to"`
	LastEvent string    `json:"last_event"`
}

func (v *SendEmailResponse) UnmarshalJSON(data []byte) error {
	type raw SendEmailResponse
	return decodeStrict(data, (*raw)(v), "id")
}

// UnmarshalJSON requires all fields except the optional html, text, bcc, cc and reply_to.
func (v *Email) UnmarshalJSON(data []byte) error {
	type raw Email
	return decodeStrict(data, (*raw)(v), "id", "object", "from", "to", "created_at", "subject", "last_event")
}

// SendRequest https://resend.com/docs/api-reference/emails/send-email
func (s *EmailService) SendRequest(email *SendEmailRequest) request.APIRequest[*SendEmailResponse] {
	result := &SendEmailResponse{}
	if email == nil {
		return request.NewAPIRequest(result, request.NewDefinitionError(fmt.Errorf("email must be set")))
	}
	req := newRequest(s.Client).
		WithResult(result).
		WithMethod(http.MethodPost).
		WithURL(EmailsAPIEmails).
		WithJSONBody(email)
	return request.NewAPIRequest(result, req)
}

// GetRequest https://resend.com/docs/api-reference/emails/retrieve-email
func (s *EmailService) GetRequest(emailID string) request.APIRequest[*Email] {
	result := &Email{}
	if emailID == "" {
		return request.NewAPIRequest(result, request.NewDefinitionError(fmt.Errorf("email id must be set")))
	}
	req := newRequest(s.Client).
		WithResult(result).
		WithMethod(http.MethodGet).
		WithURL(EmailsAPIEmail).
		AndPathParam("emailId", emailID)
	return request.NewAPIRequest(result, req)
}
