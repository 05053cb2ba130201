package validation

import (
	"math"
	"strings"

	"listing-portal/internal/draft"
	"listing-portal/internal/sections"
)

// SectionValid reports whether the named section's required fields are
// filled. It is a pure predicate over the draft; optional and advanced
// sections always validate.
func SectionValid(id sections.ID, d *draft.Draft) bool {
	switch id {
	case sections.Basic:
		return filled(d.ListingType) && filled(d.PropertyType) && filled(d.City) && filled(d.Locality)
	case sections.Price:
		return d.Price != nil && *d.Price > 0
	case sections.Details:
		return d.BuiltUpArea != nil && d.Bathrooms != nil
	case sections.Contact:
		return filled(d.OwnerName) && filled(d.PhoneNumber) && filled(d.ContactRole)
	default:
		return true
	}
}

// requiredFields is the fixed checklist the completeness score is computed
// over. It spans the whole draft, independent of the active section.
var requiredFields = []string{
	draft.FieldListingType,
	draft.FieldPropertyType,
	draft.FieldCity,
	draft.FieldLocality,
	draft.FieldPincode,
	draft.FieldBuiltUpArea,
	draft.FieldPrice,
	draft.FieldBathrooms,
	draft.FieldOwnerName,
	draft.FieldPhoneNumber,
}

// Completeness returns the percentage of the required-field checklist that
// is filled, rounded to an integer. Always in [0,100].
func Completeness(d *draft.Draft) int {
	done := 0
	for _, field := range requiredFields {
		if fieldFilled(d, field) {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(requiredFields)) * 100))
}

func fieldFilled(d *draft.Draft, field string) bool {
	switch field {
	case draft.FieldListingType:
		return filled(d.ListingType)
	case draft.FieldPropertyType:
		return filled(d.PropertyType)
	case draft.FieldCity:
		return filled(d.City)
	case draft.FieldLocality:
		return filled(d.Locality)
	case draft.FieldPincode:
		return filled(d.Pincode)
	case draft.FieldBuiltUpArea:
		return d.BuiltUpArea != nil
	case draft.FieldPrice:
		return d.Price != nil
	case draft.FieldBathrooms:
		return d.Bathrooms != nil
	case draft.FieldOwnerName:
		return filled(d.OwnerName)
	case draft.FieldPhoneNumber:
		return filled(d.PhoneNumber)
	}
	return false
}

// filled rejects empty and whitespace-only values.
func filled(s string) bool {
	return strings.TrimSpace(s) != ""
}
