package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"listing-portal/internal/database"
	"listing-portal/internal/models"
)

// Seeds the listings table with sample data for local development. Half the
// listings carry the legacy flat image array so the editor's media migration
// path has something to chew on.

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	gormDB, err := database.NewGormDB(
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "3306"),
		getEnv("DB_USER", "listing_user"),
		getEnv("DB_PASSWORD", "listing_pass"),
		getEnv("DB_NAME", "listing_db"),
	)
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer gormDB.Close()

	if err := gormDB.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	listings := sampleListings()
	saved := 0
	for i := range listings {
		if err := gormDB.SaveListing(&listings[i]); err != nil {
			log.Printf("[ERROR] Failed to save %s (%s): %v", listings[i].ID, listings[i].Title, err)
			continue
		}
		saved++
		log.Printf("Seeded %s: %s (%s, %s)", listings[i].ID, listings[i].Title, listings[i].City, listings[i].Status)
	}

	log.Printf("Done: %d/%d listings seeded", saved, len(listings))
}

func sampleListings() []models.Listing {
	now := time.Now()

	legacy := func(urls ...string) models.LegacyImageList {
		var list models.LegacyImageList
		for _, u := range urls {
			list = append(list, models.LegacyImage{RawURL: u})
		}
		return list
	}

	structured := func(urls ...string) *models.MediaSet {
		set := &models.MediaSet{}
		for i, u := range urls {
			set.Photos = append(set.Photos, models.MediaItem{
				ID:         uuid.New().String(),
				FileName:   fmt.Sprintf("photo-%d.jpg", i+1),
				FileType:   "image/jpeg",
				URL:        u,
				IsCover:    i == 0,
				SortOrder:  i,
				UploadDate: now,
			})
		}
		return set
	}

	return []models.Listing{
		{
			ID:           "seed-" + uuid.New().String()[:8],
			ListingType:  "rent",
			PropertyType: "apartment",
			Title:        "2BHK apartment near Andheri station",
			Description:  "Well-ventilated 2BHK on the 7th floor with society garden and covered parking.",
			City:         "Mumbai",
			Locality:     "Andheri West",
			Pincode:      "400058",
			Address:      "Lokhandwala Complex, Andheri West",
			Price:        ptrFloat(45000),
			SecurityDeposit: ptrFloat(135000),
			BuiltUpArea:  ptrFloat(850),
			Bedrooms:     ptrInt(2),
			Bathrooms:    ptrInt(2),
			Furnishing:   "semi-furnished",
			Amenities:    models.StringList{"lift", "parking", "security", "garden"},
			OwnerName:    "R. Mehta",
			PhoneNumber:  "+91-9820000001",
			ContactRole:  "owner",
			Images:       legacy("https://img.example.com/seed/andheri-1.jpg", "https://img.example.com/seed/andheri-2.jpg", "https://img.example.com/seed/andheri-3.jpg"),
			Status:       models.ListingStatusActive,
		},
		{
			ID:           "seed-" + uuid.New().String()[:8],
			ListingType:  "sale",
			PropertyType: "villa",
			Title:        "4BHK villa with private pool in Whitefield",
			Description:  "Gated community villa, east facing, ready to move.",
			City:         "Bengaluru",
			Locality:     "Whitefield",
			Pincode:      "560066",
			Price:        ptrFloat(32500000),
			PriceNegotiable: ptrBool(true),
			BuiltUpArea:  ptrFloat(3200),
			CarpetArea:   ptrFloat(2700),
			Bedrooms:     ptrInt(4),
			Bathrooms:    ptrInt(5),
			Furnishing:   "unfurnished",
			Facing:       "east",
			Amenities:    models.StringList{"pool", "clubhouse", "gym", "security"},
			OwnerName:    "S. Rao",
			PhoneNumber:  "+91-9880000002",
			ContactRole:  "owner",
			Media:        structured("https://img.example.com/seed/whitefield-1.jpg", "https://img.example.com/seed/whitefield-2.jpg"),
			Status:       models.ListingStatusActive,
		},
		{
			ID:           "seed-" + uuid.New().String()[:8],
			ListingType:  "rent",
			PropertyType: "apartment",
			Title:        "1BHK near HITEC City metro",
			City:         "Hyderabad",
			Locality:     "Madhapur",
			Price:        ptrFloat(18000),
			Bedrooms:     ptrInt(1),
			Bathrooms:    ptrInt(1),
			Furnishing:   "furnished",
			OwnerName:    "K. Reddy",
			PhoneNumber:  "+91-9700000003",
			ContactRole:  "agent",
			// Legacy object entries with size variants
			Images: models.LegacyImageList{
				{Optimized: "https://img.example.com/seed/madhapur-1-opt.jpg", Thumbnail: "https://img.example.com/seed/madhapur-1-thumb.jpg"},
				{Medium: "https://img.example.com/seed/madhapur-2-med.jpg"},
			},
			Status: models.ListingStatusActive,
		},
		{
			ID:           "seed-" + uuid.New().String()[:8],
			ListingType:  "sale",
			PropertyType: "plot",
			Title:        "Corner plot in Sector 57",
			City:         "Gurugram",
			Locality:     "Sector 57",
			Price:        ptrFloat(9500000),
			BuiltUpArea:  ptrFloat(1800),
			OwnerName:    "A. Singh",
			PhoneNumber:  "+91-9810000004",
			ContactRole:  "owner",
			Status:       models.ListingStatusSold,
		},
		{
			ID:           "seed-" + uuid.New().String()[:8],
			ListingType:  "rent",
			PropertyType: "apartment",
			Title:        "3BHK sea-facing flat at Marine Drive",
			Description:  "<p>Premium <b>sea-facing</b> apartment with full Queen's Necklace view.</p>",
			City:         "Mumbai",
			Locality:     "Marine Drive",
			Price:        ptrFloat(175000),
			Bedrooms:     ptrInt(3),
			Bathrooms:    ptrInt(3),
			Furnishing:   "furnished",
			OwnerName:    "D. Kapoor",
			PhoneNumber:  "+91-9930000005",
			ContactRole:  "agent",
			Images:       legacy("https://img.example.com/seed/marine-1.jpg"),
			Status:       models.ListingStatusInactive,
		},
	}
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }
func ptrBool(v bool) *bool        { return &v }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
