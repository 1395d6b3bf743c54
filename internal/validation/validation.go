// Package validation checks request bodies against embedded JSON Schemas.
package validation

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names accepted by Load.
const (
	Booking  = "booking"
	Flight   = "flight"
	Journey  = "journey"
	FareRule = "fare_rule"
)

// Validator validates documents against one compiled schema.
type Validator struct {
	name   string
	schema *gojsonschema.Schema
}

// Load compiles the embedded schema called name.
func Load(name string) (*Validator, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Validator{name: name, schema: schema}, nil
}

// MustLoad is Load that panics; the schemas are compiled into the binary so
// a failure is a programming error.
func MustLoad(name string) *Validator {
	v, err := Load(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate returns the schema violations of body, one string per error.
// A body that is not JSON yields a single error.
func (v *Validator) Validate(body []byte) []string {
	if !json.Valid(body) {
		return []string{"body is not valid JSON"}
	}
	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return []string{err.Error()}
	}
	if res.Valid() {
		return nil
	}
	errs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		errs = append(errs, fmt.Sprintf("%v", e))
	}
	return errs
}

var bookingFields = []string{
	"user_id", "user_email", "user_name", "flight_id", "passengers",
	"flight_from", "flight_to", "flight_date", "travel_class", "total_amount",
}

// BookingReceived reports for every required booking field whether body
// carries a usable value: a non-empty string, a non-empty passengers list,
// and any non-null total_amount (zero counts as present).
func BookingReceived(body []byte) map[string]bool {
	var doc map[string]any
	_ = json.Unmarshal(body, &doc)

	out := make(map[string]bool, len(bookingFields))
	for _, f := range bookingFields {
		v, ok := doc[f]
		switch f {
		case "passengers":
			list, isList := v.([]any)
			out[f] = isList && len(list) > 0
		case "total_amount":
			out[f] = ok && v != nil
		default:
			out[f] = truthy(v)
		}
	}
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}
