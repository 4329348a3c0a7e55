package provider

import "strings"

// Connection describes how to reach a model: the vendor-qualified model handle, the credential and an optional endpoint.
type Connection struct {
	Vendor  Vendor
	Model   string // "<vendor>/<model>", or the bare model id for custom endpoints
	APIKey  string
	BaseURL string
}

// ModelID returns the model id without the vendor qualifier.
func (c Connection) ModelID() string {
	if prefix, ok := vendorPrefixes[c.Vendor]; ok && prefix != "" {
		return strings.TrimPrefix(c.Model, prefix+"/")
	}
	return c.Model
}

// vendorPrefixes qualifies model ids per vendor; an empty prefix means the model id is used literally.
var vendorPrefixes = map[Vendor]string{
	VendorOpenAI:    "openai",
	VendorAnthropic: "anthropic",
	VendorGoogle:    "google",
	VendorGroq:      "groq",
	VendorDeepSeek:  "deepseek",
	VendorCustom:    "",
}

// Adapt maps a stored Provider to its Connection. Pure: no I/O, never fails.
// Unknown vendors get the model id literally.
func Adapt(p Provider) Connection {
	model := p.Model
	if prefix := vendorPrefixes[p.Vendor]; prefix != "" {
		model = prefix + "/" + strings.TrimPrefix(p.Model, prefix+"/")
	}
	return Connection{
		Vendor:  p.Vendor,
		Model:   model,
		APIKey:  p.APIKey,
		BaseURL: p.BaseURL,
	}
}
