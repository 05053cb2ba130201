package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"listing-portal/internal/models"
)

type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname string) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the listings table if it doesn't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS listings (
		id VARCHAR(36) PRIMARY KEY,
		listing_type VARCHAR(20),
		property_type VARCHAR(30),
		title TEXT,
		description TEXT,

		city VARCHAR(100),
		locality VARCHAR(150),
		pincode VARCHAR(10),
		address TEXT,
		landmark TEXT,

		price DECIMAL(14, 2),
		price_negotiable BOOLEAN,
		maintenance_charge DECIMAL(12, 2),
		maintenance_period VARCHAR(20),
		security_deposit DECIMAL(12, 2),

		built_up_area DECIMAL(10, 2),
		carpet_area DECIMAL(10, 2),
		bedrooms INTEGER,
		bathrooms INTEGER,
		balconies INTEGER,
		total_floors INTEGER,
		floor_number INTEGER,
		property_age INTEGER,
		furnishing VARCHAR(30),
		facing VARCHAR(20),

		amenities TEXT,
		owner_name VARCHAR(150),
		phone_number VARCHAR(20),
		email VARCHAR(150),
		contact_role VARCHAR(30),
		rera_number VARCHAR(50),
		available_from VARCHAR(20),

		images TEXT,
		media TEXT,

		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city);
	CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);
	CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
	`

	_, err := db.conn.Exec(query)
	return err
}

// GetListingByID retrieves a listing by ID
func (db *DB) GetListingByID(id string) (*models.Listing, error) {
	row := db.conn.QueryRow(`
		SELECT id, listing_type, property_type, title, description,
			city, locality, pincode, address, landmark,
			price, price_negotiable, maintenance_charge, maintenance_period, security_deposit,
			built_up_area, carpet_area, bedrooms, bathrooms, balconies,
			total_floors, floor_number, property_age, furnishing, facing,
			amenities, owner_name, phone_number, email, contact_role,
			rera_number, available_from, images, media, status, created_at, updated_at
		FROM listings WHERE id = $1`, id)

	return scanListing(row)
}

// GetActiveListings retrieves all active listings ordered by creation date
func (db *DB) GetActiveListings() ([]models.Listing, error) {
	rows, err := db.conn.Query(`
		SELECT id, listing_type, property_type, title, description,
			city, locality, pincode, address, landmark,
			price, price_negotiable, maintenance_charge, maintenance_period, security_deposit,
			built_up_area, carpet_area, bedrooms, bathrooms, balconies,
			total_floors, floor_number, property_age, furnishing, facing,
			amenities, owner_name, phone_number, email, contact_role,
			rera_number, available_from, images, media, status, created_at, updated_at
		FROM listings WHERE status = 'active' ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

// SaveListing upserts a listing
func (db *DB) SaveListing(l *models.Listing) error {
	amenities, err := marshalNullable(l.Amenities)
	if err != nil {
		return err
	}
	images, err := marshalNullable(l.Images)
	if err != nil {
		return err
	}
	var mediaJSON sql.NullString
	if l.Media != nil {
		data, err := json.Marshal(l.Media)
		if err != nil {
			return err
		}
		mediaJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err = db.conn.Exec(`
		INSERT INTO listings (
			id, listing_type, property_type, title, description,
			city, locality, pincode, address, landmark,
			price, price_negotiable, maintenance_charge, maintenance_period, security_deposit,
			built_up_area, carpet_area, bedrooms, bathrooms, balconies,
			total_floors, floor_number, property_age, furnishing, facing,
			amenities, owner_name, phone_number, email, contact_role,
			rera_number, available_from, images, media, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35)
		ON CONFLICT (id) DO UPDATE SET
			listing_type = EXCLUDED.listing_type,
			property_type = EXCLUDED.property_type,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			city = EXCLUDED.city,
			locality = EXCLUDED.locality,
			pincode = EXCLUDED.pincode,
			address = EXCLUDED.address,
			landmark = EXCLUDED.landmark,
			price = EXCLUDED.price,
			price_negotiable = EXCLUDED.price_negotiable,
			maintenance_charge = EXCLUDED.maintenance_charge,
			maintenance_period = EXCLUDED.maintenance_period,
			security_deposit = EXCLUDED.security_deposit,
			built_up_area = EXCLUDED.built_up_area,
			carpet_area = EXCLUDED.carpet_area,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			balconies = EXCLUDED.balconies,
			total_floors = EXCLUDED.total_floors,
			floor_number = EXCLUDED.floor_number,
			property_age = EXCLUDED.property_age,
			furnishing = EXCLUDED.furnishing,
			facing = EXCLUDED.facing,
			amenities = EXCLUDED.amenities,
			owner_name = EXCLUDED.owner_name,
			phone_number = EXCLUDED.phone_number,
			email = EXCLUDED.email,
			contact_role = EXCLUDED.contact_role,
			rera_number = EXCLUDED.rera_number,
			available_from = EXCLUDED.available_from,
			images = EXCLUDED.images,
			media = EXCLUDED.media,
			status = EXCLUDED.status,
			updated_at = NOW()`,
		l.ID, l.ListingType, l.PropertyType, l.Title, l.Description,
		l.City, l.Locality, l.Pincode, l.Address, l.Landmark,
		l.Price, l.PriceNegotiable, l.MaintenanceCharge, l.MaintenancePeriod, l.SecurityDeposit,
		l.BuiltUpArea, l.CarpetArea, l.Bedrooms, l.Bathrooms, l.Balconies,
		l.TotalFloors, l.FloorNumber, l.PropertyAge, l.Furnishing, l.Facing,
		amenities, l.OwnerName, l.PhoneNumber, l.Email, l.ContactRole,
		l.ReraNumber, l.AvailableFrom, images, mediaJSON, string(l.Status),
	)
	return err
}

// scanner matches both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row scanner) (*models.Listing, error) {
	var l models.Listing
	var amenities, images, mediaJSON sql.NullString
	var status string

	err := row.Scan(
		&l.ID, &l.ListingType, &l.PropertyType, &l.Title, &l.Description,
		&l.City, &l.Locality, &l.Pincode, &l.Address, &l.Landmark,
		&l.Price, &l.PriceNegotiable, &l.MaintenanceCharge, &l.MaintenancePeriod, &l.SecurityDeposit,
		&l.BuiltUpArea, &l.CarpetArea, &l.Bedrooms, &l.Bathrooms, &l.Balconies,
		&l.TotalFloors, &l.FloorNumber, &l.PropertyAge, &l.Furnishing, &l.Facing,
		&amenities, &l.OwnerName, &l.PhoneNumber, &l.Email, &l.ContactRole,
		&l.ReraNumber, &l.AvailableFrom, &images, &mediaJSON, &status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Status = models.ListingStatus(status)
	if amenities.Valid && amenities.String != "" {
		if err := json.Unmarshal([]byte(amenities.String), &l.Amenities); err != nil {
			return nil, fmt.Errorf("failed to decode amenities for %s: %w", l.ID, err)
		}
	}
	if images.Valid && images.String != "" {
		if err := json.Unmarshal([]byte(images.String), &l.Images); err != nil {
			return nil, fmt.Errorf("failed to decode legacy images for %s: %w", l.ID, err)
		}
	}
	if mediaJSON.Valid && mediaJSON.String != "" {
		var set models.MediaSet
		if err := json.Unmarshal([]byte(mediaJSON.String), &set); err != nil {
			return nil, fmt.Errorf("failed to decode media for %s: %w", l.ID, err)
		}
		l.Media = &set
	}
	return &l, nil
}

func marshalNullable(v interface{}) (sql.NullString, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	s := string(data)
	if s == "null" || s == "[]" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: s, Valid: true}, nil
}
