package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/devtrail/devtrail-be/internal/apperr"
	"github.com/devtrail/devtrail-be/internal/geocoder"
	"github.com/devtrail/devtrail-be/internal/models"
	"github.com/google/uuid"
)

// Earth's radius in miles; radius search distances are given in miles.
const earthRadiusMiles = 3963.0

// BootcampServiceProvider defines the interface for bootcamp listing
// services.
type BootcampServiceProvider interface {
	GetBootcamps() ([]models.Bootcamp, error)
	GetBootcampByID(id string) (models.Bootcamp, error)
	CreateBootcamp(requester models.User, bootcamp models.Bootcamp) (models.Bootcamp, error)
	UpdateBootcamp(requester models.User, id string, bootcamp models.Bootcamp) (models.Bootcamp, error)
	DeleteBootcamp(requester models.User, id string) error
	GetBootcampsInRadius(ctx context.Context, zipcode string, distance float64) ([]models.Bootcamp, error)
	UpdatePhoto(requester models.User, id, filename string) (models.Bootcamp, error)
}

// BootcampService provides business logic for bootcamp listings.
type BootcampService struct {
	db       *sql.DB
	geocoder geocoder.Geocoder
	events   EventServiceProvider
}

// NewBootcampService creates a new BootcampService.
func NewBootcampService(db *sql.DB, geo geocoder.Geocoder, events EventServiceProvider) *BootcampService {
	return &BootcampService{db: db, geocoder: geo, events: events}
}

const bootcampColumns = "id, name, description, website, phone, email, address, latitude, longitude, careers_json, housing, job_assistance, job_guarantee, accept_gi_bill, average_cost, photo, user_id, created_at"

func scanBootcamp(row interface{ Scan(...any) error }) (models.Bootcamp, error) {
	var (
		b           models.Bootcamp
		careersJSON sql.NullString
		website     sql.NullString
		phone       sql.NullString
		email       sql.NullString
		address     sql.NullString
		lat         sql.NullFloat64
		lng         sql.NullFloat64
		avgCost     sql.NullInt64
	)
	err := row.Scan(&b.ID, &b.Name, &b.Description, &website, &phone, &email, &address,
		&lat, &lng, &careersJSON, &b.Housing, &b.JobAssistance, &b.JobGuarantee,
		&b.AcceptGIBill, &avgCost, &b.Photo, &b.UserID, &b.CreatedAt)
	if err != nil {
		return models.Bootcamp{}, err
	}
	b.Website = website.String
	b.Phone = phone.String
	b.Email = email.String
	b.Address = address.String
	b.Latitude = lat.Float64
	b.Longitude = lng.Float64
	b.AverageCost = int(avgCost.Int64)
	if careersJSON.String != "" {
		if err := json.Unmarshal([]byte(careersJSON.String), &b.Careers); err != nil {
			return models.Bootcamp{}, err
		}
	}
	return b, nil
}

// GetBootcamps retrieves all bootcamp listings.
func (s *BootcampService) GetBootcamps() ([]models.Bootcamp, error) {
	rows, err := s.db.Query("SELECT " + bootcampColumns + " FROM bootcamps ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBootcamps(rows)
}

func scanBootcamps(rows *sql.Rows) ([]models.Bootcamp, error) {
	var bootcamps []models.Bootcamp
	for rows.Next() {
		b, err := scanBootcamp(rows)
		if err != nil {
			return nil, err
		}
		bootcamps = append(bootcamps, b)
	}
	return bootcamps, rows.Err()
}

// GetBootcampByID retrieves a single bootcamp listing.
func (s *BootcampService) GetBootcampByID(id string) (models.Bootcamp, error) {
	b, err := scanBootcamp(s.db.QueryRow("SELECT "+bootcampColumns+" FROM bootcamps WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bootcamp{}, apperr.NotFound("bootcamp", id)
		}
		return models.Bootcamp{}, err
	}
	return b, nil
}

// CreateBootcamp creates a listing owned by the requester. A non-admin
// account that already owns a listing may not create a second one.
func (s *BootcampService) CreateBootcamp(requester models.User, bootcamp models.Bootcamp) (models.Bootcamp, error) {
	if bootcamp.Name == "" || bootcamp.Description == "" {
		return models.Bootcamp{}, apperr.Validationf("please add a name and description")
	}

	if !requester.IsAdmin() {
		var owned int
		if err := s.db.QueryRow("SELECT COUNT(1) FROM bootcamps WHERE user_id = ?", requester.ID).Scan(&owned); err != nil {
			return models.Bootcamp{}, err
		}
		if owned > 0 {
			return models.Bootcamp{}, apperr.Validationf("the user with ID %s has already published a bootcamp", requester.ID)
		}
	}

	bootcamp.ID = uuid.New().String()
	bootcamp.UserID = requester.ID
	bootcamp.Photo = "no-photo.jpg"
	bootcamp.CreatedAt = time.Now().UTC()

	careersJSON, err := json.Marshal(bootcamp.Careers)
	if err != nil {
		return models.Bootcamp{}, err
	}

	_, err = s.db.Exec(`INSERT INTO bootcamps
		(id, name, description, website, phone, email, address, latitude, longitude, careers_json,
		 housing, job_assistance, job_guarantee, accept_gi_bill, average_cost, photo, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bootcamp.ID, bootcamp.Name, bootcamp.Description, bootcamp.Website, bootcamp.Phone,
		bootcamp.Email, bootcamp.Address, bootcamp.Latitude, bootcamp.Longitude, string(careersJSON),
		bootcamp.Housing, bootcamp.JobAssistance, bootcamp.JobGuarantee, bootcamp.AcceptGIBill,
		bootcamp.AverageCost, bootcamp.Photo, bootcamp.UserID, bootcamp.CreatedAt)
	if err != nil {
		return models.Bootcamp{}, err
	}

	if s.events != nil {
		s.events.CreateEvent("bootcamp.create", "info", "Bootcamp created: "+bootcamp.Name, &bootcamp.ID)
	}
	return s.GetBootcampByID(bootcamp.ID)
}

// UpdateBootcamp applies an update after checking ownership against the
// freshly-read listing. The check and the write use the same row; there is
// no separate find-then-update against the inbound payload.
func (s *BootcampService) UpdateBootcamp(requester models.User, id string, bootcamp models.Bootcamp) (models.Bootcamp, error) {
	existing, err := s.GetBootcampByID(id)
	if err != nil {
		return models.Bootcamp{}, err
	}

	if existing.UserID != requester.ID && !requester.IsAdmin() {
		return models.Bootcamp{}, apperr.Forbidden("update this bootcamp")
	}

	if bootcamp.Name == "" || bootcamp.Description == "" {
		return models.Bootcamp{}, apperr.Validationf("please add a name and description")
	}

	careersJSON, err := json.Marshal(bootcamp.Careers)
	if err != nil {
		return models.Bootcamp{}, err
	}

	_, err = s.db.Exec(`UPDATE bootcamps SET
		name = ?, description = ?, website = ?, phone = ?, email = ?, address = ?,
		latitude = ?, longitude = ?, careers_json = ?, housing = ?, job_assistance = ?,
		job_guarantee = ?, accept_gi_bill = ?, average_cost = ?
		WHERE id = ?`,
		bootcamp.Name, bootcamp.Description, bootcamp.Website, bootcamp.Phone, bootcamp.Email,
		bootcamp.Address, bootcamp.Latitude, bootcamp.Longitude, string(careersJSON),
		bootcamp.Housing, bootcamp.JobAssistance, bootcamp.JobGuarantee, bootcamp.AcceptGIBill,
		bootcamp.AverageCost, id)
	if err != nil {
		return models.Bootcamp{}, err
	}

	if s.events != nil {
		s.events.CreateEvent("bootcamp.update", "info", "Bootcamp updated: "+bootcamp.Name, &id)
	}
	return s.GetBootcampByID(id)
}

// DeleteBootcamp removes a listing. Only the owner or an admin may delete.
func (s *BootcampService) DeleteBootcamp(requester models.User, id string) error {
	existing, err := s.GetBootcampByID(id)
	if err != nil {
		return err
	}

	if existing.UserID != requester.ID && !requester.IsAdmin() {
		return apperr.Forbidden("delete this bootcamp")
	}

	if _, err := s.db.Exec("DELETE FROM bootcamps WHERE id = ?", id); err != nil {
		return err
	}

	if s.events != nil {
		s.events.CreateEvent("bootcamp.delete", "info", "Bootcamp deleted: "+existing.Name, &id)
	}
	return nil
}

// GetBootcampsInRadius returns listings within distance miles of the given
// zipcode. The zipcode is geocoded, candidates are prefiltered with a
// bounding box in SQL, then the exact great-circle distance is applied.
func (s *BootcampService) GetBootcampsInRadius(ctx context.Context, zipcode string, distance float64) ([]models.Bootcamp, error) {
	if distance <= 0 {
		return nil, apperr.Validationf("distance must be a positive number of miles")
	}

	loc, err := s.geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}

	// One degree of latitude is ~69 miles; longitude degrees shrink with
	// the cosine of the latitude.
	latDelta := distance / 69.0
	lngDelta := distance / (69.0 * math.Cos(loc.Latitude*math.Pi/180))

	rows, err := s.db.Query("SELECT "+bootcampColumns+" FROM bootcamps WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?",
		loc.Latitude-latDelta, loc.Latitude+latDelta, loc.Longitude-lngDelta, loc.Longitude+lngDelta)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates, err := scanBootcamps(rows)
	if err != nil {
		return nil, err
	}

	var within []models.Bootcamp
	for _, b := range candidates {
		if haversineMiles(loc.Latitude, loc.Longitude, b.Latitude, b.Longitude) <= distance {
			within = append(within, b)
		}
	}
	return within, nil
}

// UpdatePhoto records an uploaded photo filename on the listing, gated by
// the same ownership rule as any other mutation.
func (s *BootcampService) UpdatePhoto(requester models.User, id, filename string) (models.Bootcamp, error) {
	existing, err := s.GetBootcampByID(id)
	if err != nil {
		return models.Bootcamp{}, err
	}

	if existing.UserID != requester.ID && !requester.IsAdmin() {
		return models.Bootcamp{}, apperr.Forbidden("update this bootcamp")
	}

	if _, err := s.db.Exec("UPDATE bootcamps SET photo = ? WHERE id = ?", filename, id); err != nil {
		return models.Bootcamp{}, err
	}
	return s.GetBootcampByID(id)
}

// haversineMiles computes the great-circle distance between two points.
func haversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
