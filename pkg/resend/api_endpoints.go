package resend

// api_endpoints.go contains definitions of all Resend API endpoints used by the services.

const (
	// Endpoints for emails.
	EmailsAPIEmails = "emails"
	EmailsAPIEmail  = "emails/{emailId}"

	// Endpoints for domains.
	DomainsAPIDomains = "domains"
	DomainsAPIDomain  = "domains/{domainId}"
)
