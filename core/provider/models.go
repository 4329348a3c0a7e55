package provider

import (
	"time"

	"github.com/trezcool/darslik/core"
)

// Vendor tags a hosted AI completion API.
type Vendor string

const (
	VendorOpenAI    Vendor = "openai"
	VendorAnthropic Vendor = "anthropic"
	VendorGoogle    Vendor = "google"
	VendorGroq      Vendor = "groq"
	VendorDeepSeek  Vendor = "deepseek"
	VendorCustom    Vendor = "custom"
)

// Vendors lists every supported vendor, in display order.
var Vendors = []Vendor{VendorOpenAI, VendorAnthropic, VendorGoogle, VendorGroq, VendorDeepSeek, VendorCustom}

func (v Vendor) IsValid() bool {
	for _, vendor := range Vendors {
		if v == vendor {
			return true
		}
	}
	return false
}

// Provider is a teacher-owned AI provider configuration.
type Provider struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacher_id"`
	Name      string    `json:"name"`
	Vendor    Vendor    `json:"provider_type"`
	Model     string    `json:"model_name"`
	APIKey    string    `json:"-"`
	BaseURL   string    `json:"base_url,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// MaskedKey returns the API key with all but its last 4 characters hidden.
func (p Provider) MaskedKey() string {
	if len(p.APIKey) <= 4 {
		return "****"
	}
	return "****" + p.APIKey[len(p.APIKey)-4:]
}

// NewProvider contains information needed to register a Provider.
type NewProvider struct {
	Name    string `json:"name" validate:"required,notblank,max=100"`
	Vendor  Vendor `json:"provider_type" validate:"required,vendor"`
	Model   string `json:"model_name" validate:"required,notblank"`
	APIKey  string `json:"api_key" validate:"required,notblank"`
	BaseURL string `json:"base_url" validate:"omitempty,url"`
}

func (np *NewProvider) Clean() {
	np.Name = core.CleanString(np.Name)
	np.Vendor = Vendor(core.CleanString(string(np.Vendor), true /* lower */))
	np.Model = core.CleanString(np.Model)
	np.APIKey = core.CleanString(np.APIKey)
	np.BaseURL = core.CleanString(np.BaseURL)
}

// UpdateProvider toggles a Provider.
type UpdateProvider struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// TestRequest is a Provider configuration to check before saving it.
// ProviderID, when set, tests an already saved Provider instead.
type TestRequest struct {
	ProviderID string `json:"provider_id" validate:"omitempty,uuid"`
	NewProvider
}
