package resend

// The file contains request definitions for the Domains API.
// https://resend.com/docs/api-reference/domains

import (
	"fmt"
	"net/http"

	"github.com/resend-community/go-client/pkg/client"
	"github.com/resend-community/go-client/pkg/request"
)

// DomainService manages sending domains.
// The Client can be replaced, for example in tests.
type DomainService struct {
	Client client.Client
}

type DomainStatus string

const (
	DomainStatusPending          = DomainStatus("pending")
	DomainStatusVerified         = DomainStatus("verified")
	DomainStatusFailed           = DomainStatus("failed")
	DomainStatusTemporaryFailure = DomainStatus("temporary_failure")
	DomainStatusNotStarted       = DomainStatus("not_started")
)

func (v *DomainStatus) UnmarshalText(text []byte) error {
	return decodeEnum(v, text, DomainStatusPending, DomainStatusVerified, DomainStatusFailed, DomainStatusTemporaryFailure, DomainStatusNotStarted)
}

type DNSRecordType string

const (
	DNSRecordTypeMX    = DNSRecordType("MX")
	DNSRecordTypeCNAME = DNSRecordType("CNAME")
	DNSRecordTypeTXT   = DNSRecordType("TXT")
)

func (v *DNSRecordType) UnmarshalText(text []byte) error {
	return decodeEnum(v, text, DNSRecordTypeMX, DNSRecordTypeCNAME, DNSRecordTypeTXT)
}

// EmailDNSRecord is the purpose of a DNS record.
type EmailDNSRecord string

const (
	EmailDNSRecordSPF  = EmailDNSRecord("SPF")
	EmailDNSRecordDKIM = EmailDNSRecord("DKIM")
)

func (v *EmailDNSRecord) UnmarshalText(text []byte) error {
	return decodeEnum(v, text, EmailDNSRecordSPF, EmailDNSRecordDKIM)
}

type CreateDomainRequest struct {
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

// CreateDomainResponse - note the "dnsProvider" field is not snake case in the API.
type CreateDomainResponse struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	CreatedAt   CreatedAt    `json:"created_at"`
	Status      DomainStatus `json:"status"`
	Region      string       `json:"region"`
	DNSProvider string       `json:"dnsProvider"`
}

// DNSRecord must be set by the domain owner to verify the domain.
type DNSRecord struct {
	Record   EmailDNSRecord `json:"record"`
	Type     DNSRecordType  `json:"type"`
	Name     string         `json:"name"`
	TTL      string         `json:"ttl"`
	Status   DomainStatus   `json:"status"`
	Value    string         `json:"value"`
	Priority *uint16        `json:"priority"`
}

type DomainDetails struct {
	ID        string       `json:"id"`
	Object    string       `json:"object"`
	Name      string       `json:"name"`
	CreatedAt CreatedAt    `json:"created_at"`
	Status    DomainStatus `json:"status"`
	Region    string       `json:"region"`
	Records   []DNSRecord  `json:"records"`
}

type DomainSummary struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	CreatedAt CreatedAt    `json:"created_at"`
	Status    DomainStatus `json:"status"`
	Region    string       `json:"region"`
}

type ListDomainsResponse struct {
	Data []DomainSummary `json:"data"`
}

type VerifyDomainResponse struct {
	ID     string `json:"id"`
	Object string `json:"object"`
}

type DeleteDomainResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

func (v *CreateDomainResponse) UnmarshalJSON(data []byte) error {
	type raw CreateDomainResponse
	return decodeStrict(data, (*raw)(v), "id", "name", "created_at", "status", "region", "dnsProvider")
}

// UnmarshalJSON requires all fields except the priority, it is set only for MX records.
func (v *DNSRecord) UnmarshalJSON(data []byte) error {
	type raw DNSRecord
	return decodeStrict(data, (*raw)(v), "record", "type", "name", "ttl", "status", "value")
}

func (v *DomainDetails) UnmarshalJSON(data []byte) error {
	type raw DomainDetails
	return decodeStrict(data, (*raw)(v), "id", "object", "name", "created_at", "status", "region", "records")
}

func (v *DomainSummary) UnmarshalJSON(data []byte) error {
	type raw DomainSummary
	return decodeStrict(data, (*raw)(v), "id", "name", "created_at", "status", "region")
}

func (v *ListDomainsResponse) UnmarshalJSON(data []byte) error {
	type raw ListDomainsResponse
	return decodeStrict(data, (*raw)(v), "data")
}

func (v *VerifyDomainResponse) UnmarshalJSON(data []byte) error {
	type raw VerifyDomainResponse
	return decodeStrict(data, (*raw)(v), "id", "object")
}

func (v *DeleteDomainResponse) UnmarshalJSON(data []byte) error {
	type raw DeleteDomainResponse
	return decodeStrict(data, (*raw)(v), "id", "object", "deleted")
}

// CreateRequest https://resend.com/docs/api-reference/domains/create-domain
func (s *DomainService) CreateRequest(domain *CreateDomainRequest) request.APIRequest[*CreateDomainResponse] {
	result := &CreateDomainResponse{}
	if domain == nil {
		return request.NewAPIRequest(result, request.NewDefinitionError(fmt.Errorf("domain must be set")))
	}
	req := newRequest(s.Client).
		WithResult(result).
		WithMethod(http.MethodPost).
		WithURL(DomainsAPIDomains).
		WithJSONBody(domain)
	return request.NewAPIRequest(result, req)
}

// VerifyRequest starts verification of the domain DNS records.
// https://resend.com/docs/api-reference/domains/verify-domain
func (s *DomainService) VerifyRequest(domainID string) request.APIRequest[*VerifyDomainResponse] {
	result := &VerifyDomainResponse{}
	if domainID == "" {
		return request.NewAPIRequest(result, errDomainIDNotSet())
	}
	req := newRequest(s.Client).
		WithResult(result).
		WithMethod(http.MethodPost).
		WithURL(DomainsAPIDomain).
		AndPathParam("domainId", domainID)
	return request.NewAPIRequest(result, req)
}

// GetRequest https://resend.com/docs/api-reference/domains/get-domain
func (s *DomainService) GetRequest(domainID string) request.APIRequest[*DomainDetails] {
	result := &DomainDetails{}
	if domainID == "" {
		return request.NewAPIRequest(result, errDomainIDNotSet())
	}
	req := newRequest(s.Client).
		WithResult(result).
		WithMethod(http.MethodGet).
		WithURL(DomainsAPIDomain).
		AndPathParam("domainId", domainID)
	return request.NewAPIRequest(result, req)
}

// ListRequest https://resend.com/docs/api-reference/domains/list-domains
func (s *DomainService) ListRequest() request.APIRequest[*ListDomainsResponse] {
	result := &ListDomainsResponse{}
	req := newRequest(s.Client).
		WithResult(result).
		WithMethod(http.MethodGet).
		WithURL(DomainsAPIDomains)
	return request.NewAPIRequest(result, req)
}

// DeleteRequest https://resend.com/docs/api-reference/domains/delete-domain
func (s *DomainService) DeleteRequest(domainID string) request.APIRequest[*DeleteDomainResponse] {
	result := &DeleteDomainResponse{}
	if domainID == "" {
		return request.NewAPIRequest(result, errDomainIDNotSet())
	}
	req := newRequest(s.Client).
		WithResult(result).
		WithMethod(http.MethodDelete).
		WithURL(DomainsAPIDomain).
		AndPathParam("domainId", domainID)
	return request.NewAPIRequest(result, req)
}

func errDomainIDNotSet() request.Sendable {
	return request.NewDefinitionError(fmt.Errorf("domain id must be set"))
}
