package clientinfo

import (
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
)

// UnknownDevice is the label used when nothing can be resolved.
const UnknownDevice = "Unknown Device"

// unresolved is the placeholder uap-go returns for families it cannot match.
const unresolved = "Other"

// DeviceLabel applies the label precedence: "{vendor} {model}" when either
// is known, otherwise the OS name, otherwise UnknownDevice.
func DeviceLabel(vendor, model, os string) string {
	if label := strings.TrimSpace(strings.TrimSpace(vendor) + " " + strings.TrimSpace(model)); label != "" {
		return label
	}
	if os = strings.TrimSpace(os); os != "" {
		return os
	}
	return UnknownDevice
}

// DeviceParser turns User-Agent strings into device labels. The regex set is
// compiled once, so a single parser should be shared across requests.
type DeviceParser struct {
	parser *uaparser.Parser
}

// NewDeviceParser builds a parser from the regex definitions bundled with uap-go.
func NewDeviceParser() *DeviceParser {
	return &DeviceParser{parser: uaparser.NewFromSaved()}
}

// Label returns the device label for userAgent.
func (p *DeviceParser) Label(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return UnknownDevice
	}

	client := p.parser.Parse(userAgent)

	var vendor, model, os string
	if client.Device != nil {
		vendor = known(client.Device.Brand)
		model = known(client.Device.Model)
	}
	if client.Os != nil {
		os = known(client.Os.Family)
	}
	return DeviceLabel(vendor, model, os)
}

func known(s string) string {
	if s == unresolved {
		return ""
	}
	return s
}
