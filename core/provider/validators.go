package provider

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darslik/core"
)

var (
	vendorTag  = "vendor"
	vendorText = "unsupported provider type"

	baseURLRequiredTag  = "baseurlrequired"
	baseURLRequiredText = "base_url is required for custom providers"
)

// InitValidators registers the provider validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(vendorTag, vendorValidation)
	core.RegisterCustomTranslation(validate, translator, vendorTag, vendorText)

	validate.RegisterStructValidation(newProviderStructValidation, NewProvider{})
	core.RegisterCustomTranslation(validate, translator, baseURLRequiredTag, baseURLRequiredText)
}

func (np *NewProvider) Validate(validate *validator.Validate) error {
	np.Clean()
	return validate.Struct(np)
}

func (up UpdateProvider) Validate(validate *validator.Validate) error {
	return validate.Struct(up)
}

func (tr *TestRequest) Validate(validate *validator.Validate) error {
	if tr.ProviderID != "" {
		return validate.Var(tr.ProviderID, "uuid")
	}
	return tr.NewProvider.Validate(validate)
}

func vendorValidation(fl validator.FieldLevel) bool {
	return Vendor(fl.Field().String()).IsValid()
}

// newProviderStructValidation requires a base URL for custom vendors only.
func newProviderStructValidation(sl validator.StructLevel) {
	np, ok := sl.Current().Interface().(NewProvider)
	if !ok {
		return
	}
	if np.Vendor == VendorCustom && np.BaseURL == "" {
		sl.ReportError(np.BaseURL, "base_url", "BaseURL", baseURLRequiredTag, "")
	}
}
