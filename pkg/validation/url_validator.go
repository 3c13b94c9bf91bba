package validation

import (
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/asl-inspector-go/internal/errors"
)

// MaxURLLength bounds the length of image URLs accepted by the service
const MaxURLLength = 2048

// azureBlobSuffix is the public endpoint suffix of Azure Blob Storage
const azureBlobSuffix = ".blob.core.windows.net"

// URLValidator checks image URLs before they are fetched
type URLValidator struct {
	allowedSchemes []string
	// allowedHosts may contain exact hosts or wildcard entries such as
	// "*.blob.core.windows.net"; empty allows every host
	allowedHosts []string
}

// NewURLValidator creates a new URL validator with default settings
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{},
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateImageURL validates if the provided URL can be fetched for classification
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	_, err := v.Parse(imageURL)
	return err
}

// Parse validates imageURL and returns it parsed
func (v *URLValidator) Parse(imageURL string) (*url.URL, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, apperrors.NewValidationError("URL cannot be empty", nil)
	}
	if len(imageURL) > MaxURLLength {
		return nil, apperrors.NewValidationError("URL is too long", nil)
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(strings.ToLower(parsedURL.Scheme)) {
		return nil, apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Hostname() == "" {
		return nil, apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if !v.isHostAllowed(strings.ToLower(parsedURL.Hostname())) {
		return nil, apperrors.NewValidationError("URL host not allowed", nil)
	}

	return parsedURL, nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isHostAllowed checks if the URL host is in the allowed list
// Returns true if no host restrictions are set (empty allowedHosts)
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if suffix, ok := strings.CutPrefix(allowed, "*"); ok {
			if strings.HasSuffix(host, suffix) {
				return true
			}
			continue
		}
		if host == allowed {
			return true
		}
	}
	return false
}

// AzureBlobAccount returns the storage account of an Azure Blob URL such as
// https://account.blob.core.windows.net/container/hand.png
func AzureBlobAccount(u *url.URL) (string, bool) {
	host := strings.ToLower(u.Hostname())
	account, ok := strings.CutSuffix(host, azureBlobSuffix)
	if !ok || account == "" || strings.Contains(account, ".") {
		return "", false
	}
	return account, true
}
