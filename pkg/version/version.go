// Package version provides the SDK version, the provisioning API version
// negotiated with the service, and user-agent helpers.
package version

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// SDK is the version of this library.
const SDK = "1.0.0"

// ProvisioningAPIVersion is the service API version sent with every request.
const ProvisioningAPIVersion = "2019-03-31"

// Product is the product token used in the user agent.
const Product = "provisioning-go"

// apiVersionLayout is the date layout of provisioning API versions.
const apiVersionLayout = "2006-01-02"

// APIVersion represents a parsed "YYYY-MM-DD" provisioning API version.
type APIVersion struct {
	date time.Time
}

// ParseAPIVersion parses a "YYYY-MM-DD" API version string.
func ParseAPIVersion(s string) (APIVersion, error) {
	t, err := time.Parse(apiVersionLayout, s)
	if err != nil {
		return APIVersion{}, fmt.Errorf("invalid API version %q: expected YYYY-MM-DD", s)
	}
	return APIVersion{date: t}, nil
}

// CurrentAPIVersion returns the parsed ProvisioningAPIVersion.
func CurrentAPIVersion() APIVersion {
	v, err := ParseAPIVersion(ProvisioningAPIVersion)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as "YYYY-MM-DD".
func (v APIVersion) String() string {
	return v.date.Format(apiVersionLayout)
}

// IsZero reports whether v is the zero APIVersion.
func (v APIVersion) IsZero() bool {
	return v.date.IsZero()
}

// Before reports whether v predates other.
func (v APIVersion) Before(other APIVersion) bool {
	return v.date.Before(other.date)
}

// Supports returns true if a service speaking v accepts requests made with
// the client version. Services accept any client version up to their own.
func (v APIVersion) Supports(client APIVersion) bool {
	return !v.Before(client)
}

// UserAgent returns the user agent string sent to the service. A non-empty
// productInfo is appended after the SDK token.
func UserAgent(productInfo string) string {
	ua := fmt.Sprintf("%s/%s (%s; %s; %s)", Product, SDK, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if p := strings.TrimSpace(productInfo); p != "" {
		ua += " " + p
	}
	return ua
}
