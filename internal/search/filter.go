package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"listing-portal/internal/models"
)

type FilterParams struct {
	Query        string
	City         string
	Localities   []string
	ListingType  string
	PropertyType string
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *int
	Furnishing   string
	SortBy       string
	Limit        int64
}

// FilterSearch performs advanced search with filters
func (s *SearchClient) FilterSearch(params FilterParams) ([]models.Listing, error) {
	var filters []string

	// Only published inventory is searchable
	filters = append(filters, "status = 'active'")

	if params.City != "" {
		filters = append(filters, fmt.Sprintf("city = '%s'", params.City))
	}

	// Locality filter
	if len(params.Localities) > 0 {
		localityFilters := make([]string, len(params.Localities))
		for i, loc := range params.Localities {
			localityFilters[i] = fmt.Sprintf("locality = '%s'", loc)
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(localityFilters, " OR ")))
	}

	if params.ListingType != "" {
		filters = append(filters, fmt.Sprintf("listingType = '%s'", params.ListingType))
	}
	if params.PropertyType != "" {
		filters = append(filters, fmt.Sprintf("propertyType = '%s'", params.PropertyType))
	}
	if params.Furnishing != "" {
		filters = append(filters, fmt.Sprintf("furnishing = '%s'", params.Furnishing))
	}

	// Price range filter
	if params.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price >= %g", *params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price <= %g", *params.MaxPrice))
	}

	if params.MinBedrooms != nil {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", *params.MinBedrooms))
	}

	// Determine sort order
	var sort []string
	if params.SortBy != "" {
		sort = []string{params.SortBy}
	}

	// Default limit
	if params.Limit == 0 {
		params.Limit = 20
	}

	// Perform search
	searchReq := &meilisearch.SearchRequest{
		Limit:  params.Limit,
		Filter: strings.Join(filters, " AND "),
	}

	if len(sort) > 0 {
		searchReq.Sort = sort
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	// Convert hits to listings
	var listings []models.Listing
	for _, hit := range searchRes.Hits {
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}

		var listing models.Listing
		if err := json.Unmarshal(hitJSON, &listing); err != nil {
			continue
		}

		listings = append(listings, listing)
	}

	return listings, nil
}
