package enrichment

import (
	"avelements/internal/address"
	"avelements/internal/verification/client"
	"avelements/internal/verification/controller"
)

// messageAttributes maps err-* form attributes to the kinds they override.
var messageAttributes = map[string]address.ErrorKind{
	"err-primary-line":     address.KindPrimaryLine,
	"err-city-state-zip":   address.KindCityStateZip,
	"err-country":          address.KindCountry,
	"err-zip":              address.KindZip,
	"err-undeliverable":    address.KindUndeliverable,
	"err-missing-unit":     address.KindMissingUnit,
	"err-unnecessary-unit": address.KindUnnecessaryUnit,
	"err-incorrect-unit":   address.KindIncorrectUnit,
	"err-confirm":          address.KindConfirm,
	"err-default":          address.KindDefault,
}

// Overrides is the integration-level configuration. Non-zero values win
// over what the form declares.
type Overrides struct {
	APIKey     string           `json:"api_key,omitempty" yaml:"api_key"`
	Strictness string           `json:"strictness,omitempty" yaml:"strictness"`
	Messages   address.Messages `json:"messages,omitempty" yaml:"messages"`
	Endpoints  client.Endpoints `json:"apis,omitempty" yaml:"apis"`
	Autosubmit bool             `json:"autosubmit,omitempty" yaml:"autosubmit"`
}

// Config is everything needed to wire one form.
type Config struct {
	APIKey     string            `json:"-"`
	Page       PageState         `json:"page"`
	Controller controller.Config `json:"controller"`
	Endpoints  client.Endpoints  `json:"apis"`
	Staging    bool              `json:"staging"`
}

// BuildConfig assembles the configuration of d.
func BuildConfig(d Descriptor, o Overrides) Config {
	page := Detect(d, o.Strictness)

	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = d.Value(AttrKey)
	}

	env := d.Value(AttrEnv)
	endpoints := client.DefaultEndpoints(env).Merge(o.Endpoints)

	return Config{
		APIKey: apiKey,
		Page:   page,
		Controller: controller.Config{
			Strictness:  page.Strictness,
			Denormalize: d.Value(AttrSecondary) != "false",
			Autosubmit:  o.Autosubmit || d.Value(AttrAutosubmit) == "true",
			Messages:    formMessages(d).Merge(o.Messages),
		},
		Endpoints: endpoints,
		Staging:   env == "staging",
	}
}

func formMessages(d Descriptor) address.Messages {
	overrides := make(address.Messages)
	for attr, kind := range messageAttributes {
		if v := d.Value(attr); v != "" {
			overrides[kind] = v
		}
	}
	return address.DefaultMessages().Merge(overrides)
}
