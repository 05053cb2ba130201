package sections

// ID identifies one page of the multi-step editor.
type ID string

const (
	Basic       ID = "basic"
	Location    ID = "location"
	Price       ID = "price"
	Details     ID = "details"
	Amenities   ID = "amenities"
	Media       ID = "media"
	Description ID = "description"
	Contact     ID = "contact"
	Advanced    ID = "advanced"
)

// Section is one statically ordered page of the editor. The field set and
// order are fixed by the listing domain.
type Section struct {
	ID         ID     `json:"id"`
	Title      string `json:"title"`
	IsAdvanced bool   `json:"isAdvanced"`
}

// All is the full static section list in editor order.
var All = []Section{
	{ID: Basic, Title: "Basic Info"},
	{ID: Location, Title: "Location"},
	{ID: Price, Title: "Price"},
	{ID: Details, Title: "Property Details"},
	{ID: Amenities, Title: "Amenities"},
	{ID: Media, Title: "Photos & Media"},
	{ID: Description, Title: "Description"},
	{ID: Contact, Title: "Contact"},
	{ID: Advanced, Title: "Advanced Settings", IsAdvanced: true},
}

// Visible filters the static list by the advanced toggle.
func Visible(showAdvanced bool) []Section {
	if showAdvanced {
		return All
	}
	out := make([]Section, 0, len(All))
	for _, s := range All {
		if !s.IsAdvanced {
			out = append(out, s)
		}
	}
	return out
}
