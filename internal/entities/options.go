package entities

// HotspotOptions carries the operator-requested configuration for one
// session. Structural validation runs through go-playground/validator;
// policy-level checks live in the preflight service because their
// output must include remediation text.
type HotspotOptions struct {
	Interface            string   `validate:"omitempty,max=15"`
	SSID                 string   `validate:"required,min=1,max=32"`
	Password             string   `validate:"required,min=8,max=63"`
	Band                 string   `validate:"oneof=bg a"`
	Hidden               bool     `validate:"-"`
	DNS                  string   `validate:"omitempty,ip"`
	MACMode              string   `validate:"oneof=block allow"`
	MACList              []string `validate:"dive,mac"`
	AutoOffMinutes       int      `validate:"min=0"`
	ExcludeVPN           bool     `validate:"-"`
	ForceSingleInterface bool     `validate:"-"`
}
