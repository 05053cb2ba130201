package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-portal/internal/draft"
	"listing-portal/internal/models"
	"listing-portal/internal/sections"
)

func completeDraft() *draft.Draft {
	price := 45000.0
	area := 850.0
	baths := 2
	d := draft.New(&models.Listing{
		ListingType:  "rent",
		PropertyType: "apartment",
		City:         "Mumbai",
		Locality:     "Andheri West",
		Pincode:      "400058",
		Price:        &price,
		BuiltUpArea:  &area,
		Bathrooms:    &baths,
		OwnerName:    "R. Mehta",
		PhoneNumber:  "+91-9820000001",
		ContactRole:  "owner",
	}, draft.Options{})
	return d
}

func TestSectionValidBasic(t *testing.T) {
	d := completeDraft()
	assert.True(t, SectionValid(sections.Basic, d))

	require.NoError(t, d.SetField(draft.FieldCity, ""))
	assert.False(t, SectionValid(sections.Basic, d))

	// Whitespace does not count as filled
	require.NoError(t, d.SetField(draft.FieldCity, "   "))
	assert.False(t, SectionValid(sections.Basic, d))
}

func TestSectionValidPrice(t *testing.T) {
	d := completeDraft()
	assert.True(t, SectionValid(sections.Price, d))

	require.NoError(t, d.SetField(draft.FieldPrice, 0))
	assert.False(t, SectionValid(sections.Price, d), "zero price is not a valid price")

	require.NoError(t, d.SetField(draft.FieldPrice, nil))
	assert.False(t, SectionValid(sections.Price, d))
}

func TestSectionValidDetails(t *testing.T) {
	d := completeDraft()
	assert.True(t, SectionValid(sections.Details, d))

	require.NoError(t, d.SetField(draft.FieldBathrooms, nil))
	assert.False(t, SectionValid(sections.Details, d))
}

func TestSectionValidContact(t *testing.T) {
	d := completeDraft()
	assert.True(t, SectionValid(sections.Contact, d))

	require.NoError(t, d.SetField(draft.FieldPhoneNumber, ""))
	assert.False(t, SectionValid(sections.Contact, d))
}

func TestOptionalSectionsAlwaysValid(t *testing.T) {
	d := draft.New(&models.Listing{}, draft.Options{})
	for _, id := range []sections.ID{
		sections.Location, sections.Amenities, sections.Media,
		sections.Description, sections.Advanced,
	} {
		assert.True(t, SectionValid(id, d), "section %s has no required fields", id)
	}
}

func TestCompletenessBounds(t *testing.T) {
	empty := draft.New(&models.Listing{}, draft.Options{})
	assert.Equal(t, 0, Completeness(empty))

	assert.Equal(t, 100, Completeness(completeDraft()))
}

func TestCompletenessMonotonic(t *testing.T) {
	d := draft.New(&models.Listing{}, draft.Options{})

	prev := Completeness(d)
	steps := []struct {
		field string
		value interface{}
	}{
		{draft.FieldListingType, "rent"},
		{draft.FieldPropertyType, "apartment"},
		{draft.FieldCity, "Pune"},
		{draft.FieldLocality, "Baner"},
		{draft.FieldPincode, "411045"},
		{draft.FieldBuiltUpArea, 900},
		{draft.FieldPrice, 30000},
		{draft.FieldBathrooms, 2},
		{draft.FieldOwnerName, "S. Kulkarni"},
		{draft.FieldPhoneNumber, "+91-9890000001"},
	}

	for _, step := range steps {
		require.NoError(t, d.SetField(step.field, step.value))
		got := Completeness(d)
		assert.Greater(t, got, prev, "filling %s must raise the score", step.field)
		prev = got
	}
	assert.Equal(t, 100, prev)
}
