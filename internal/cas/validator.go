package cas

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrorKind classifies a ticket validation failure.
type ErrorKind string

const (
	// ErrNetwork means the CAS server could not be reached in time.
	ErrNetwork ErrorKind = "network"
	// ErrBadStatus means CAS answered with a non-200 status.
	ErrBadStatus ErrorKind = "bad_status"
	// ErrMalformedXML means the response body was not a CAS service response.
	ErrMalformedXML ErrorKind = "malformed_xml"
	// ErrUnauthenticated means CAS explicitly rejected the ticket.
	ErrUnauthenticated ErrorKind = "unauthenticated"
)

// ValidationError is returned for every validation failure; callers decide
// user-facing behavior from Kind.
type ValidationError struct {
	Kind ErrorKind
	Code string // CAS failure code, set for ErrUnauthenticated
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("cas validation failed (%s, code %s): %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("cas validation failed (%s): %v", e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Identity is the authenticated principal extracted from a CAS success
// response. Only NetID is guaranteed; Attributes carries whatever directory
// fields the CAS server chose to release.
type Identity struct {
	NetID      string
	Attributes map[string]string
}

// Validator validates CAS service tickets.
type Validator interface {
	Validate(ctx context.Context, ticket, serviceURL string) (*Identity, error)
}

// Client talks to a CAS server's serviceValidate endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a CAS client for a server base URL such as
// https://secure.its.yale.edu.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// LoginURL builds the CAS login URL that sends the browser through SSO and
// back to serviceURL.
func (c *Client) LoginURL(serviceURL string) string {
	return fmt.Sprintf("%s/cas/login?service=%s", c.baseURL, url.QueryEscape(serviceURL))
}

// serviceResponse mirrors the CAS 2.0 XML envelope.
type serviceResponse struct {
	XMLName xml.Name     `xml:"serviceResponse"`
	Success *authSuccess `xml:"authenticationSuccess"`
	Failure *authFailure `xml:"authenticationFailure"`
}

type authSuccess struct {
	User       string     `xml:"user"`
	Attributes *authAttrs `xml:"attributes"`
}

type authAttrs struct {
	Attrs []authAttr `xml:",any"`
}

type authAttr struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type authFailure struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

// Validate redeems a single-use ticket against the CAS server. serviceURL
// must match, byte for byte, the service parameter used when the browser was
// sent to CAS login; CAS rejects the ticket otherwise.
func (c *Client) Validate(ctx context.Context, ticket, serviceURL string) (*Identity, error) {
	validateURL := fmt.Sprintf("%s/cas/serviceValidate?ticket=%s&service=%s&format=XML",
		c.baseURL,
		url.QueryEscape(ticket),
		url.QueryEscape(serviceURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, validateURL, nil)
	if err != nil {
		return nil, &ValidationError{Kind: ErrNetwork, Err: err}
	}
	req.Header.Set("User-Agent", "YideShare-Mobile/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ValidationError{Kind: ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ValidationError{
			Kind: ErrBadStatus,
			Err:  fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ValidationError{Kind: ErrNetwork, Err: err}
	}

	return parseResponse(body)
}

func parseResponse(body []byte) (*Identity, error) {
	var sr serviceResponse
	if err := xml.Unmarshal(body, &sr); err != nil {
		return nil, &ValidationError{Kind: ErrMalformedXML, Err: err}
	}

	if sr.Failure != nil {
		return nil, &ValidationError{
			Kind: ErrUnauthenticated,
			Code: sr.Failure.Code,
			Err:  fmt.Errorf("%s", strings.TrimSpace(sr.Failure.Message)),
		}
	}

	if sr.Success == nil {
		return nil, &ValidationError{
			Kind: ErrMalformedXML,
			Err:  fmt.Errorf("no success or failure element in response"),
		}
	}

	if sr.Success.User == "" {
		return nil, &ValidationError{
			Kind: ErrMalformedXML,
			Err:  fmt.Errorf("success response missing user element"),
		}
	}

	identity := &Identity{
		NetID:      sr.Success.User,
		Attributes: make(map[string]string),
	}
	if sr.Success.Attributes != nil {
		for _, attr := range sr.Success.Attributes.Attrs {
			identity.Attributes[attr.XMLName.Local] = attr.Value
		}
	}

	return identity, nil
}
