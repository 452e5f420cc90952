package services

import (
	"context"
	"testing"

	"github.com/devtrail/devtrail-be/internal/apperr"
	"github.com/devtrail/devtrail-be/internal/geocoder"
	"github.com/devtrail/devtrail-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	loc geocoder.Location
	err error
}

func (f *fakeGeocoder) Geocode(ctx context.Context, zipcode string) (geocoder.Location, error) {
	if f.err != nil {
		return geocoder.Location{}, f.err
	}
	return f.loc, nil
}

type bootcampFixture struct {
	users     *UserService
	bootcamps *BootcampService
	geo       *fakeGeocoder
	publisher models.User
	admin     models.User
}

func newBootcampFixture(t *testing.T) *bootcampFixture {
	t.Helper()
	db := newTestDB(t)
	geo := &fakeGeocoder{}
	users := NewUserService(db, nil)

	publisher, err := users.CreateUser("Pub Lisher", "pub@example.com", "sup3rsecret", models.RolePublisher)
	require.NoError(t, err)
	admin, err := users.CreateUser("Ad Min", "admin@example.com", "sup3rsecret", models.RoleAdmin)
	require.NoError(t, err)

	return &bootcampFixture{
		users:     users,
		bootcamps: NewBootcampService(db, geo, nil),
		geo:       geo,
		publisher: publisher,
		admin:     admin,
	}
}

func TestCreateBootcampSetsOwner(t *testing.T) {
	f := newBootcampFixture(t)

	created, err := f.bootcamps.CreateBootcamp(f.publisher, models.Bootcamp{
		Name:        "Devworks",
		Description: "Full stack web development",
		Careers:     []string{"Web Development", "UI/UX"},
	})
	require.NoError(t, err)
	assert.Equal(t, f.publisher.ID, created.UserID)
	assert.Equal(t, "no-photo.jpg", created.Photo)
	assert.Equal(t, []string{"Web Development", "UI/UX"}, created.Careers)
}

func TestCreateBootcampOnePerPublisher(t *testing.T) {
	f := newBootcampFixture(t)

	_, err := f.bootcamps.CreateBootcamp(f.publisher, models.Bootcamp{Name: "First", Description: "d"})
	require.NoError(t, err)

	_, err = f.bootcamps.CreateBootcamp(f.publisher, models.Bootcamp{Name: "Second", Description: "d"})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)

	// Admins are exempt from the one-listing rule.
	_, err = f.bootcamps.CreateBootcamp(f.admin, models.Bootcamp{Name: "A1", Description: "d"})
	require.NoError(t, err)
	_, err = f.bootcamps.CreateBootcamp(f.admin, models.Bootcamp{Name: "A2", Description: "d"})
	require.NoError(t, err)
}

func TestUpdateBootcampOwnership(t *testing.T) {
	f := newBootcampFixture(t)

	created, err := f.bootcamps.CreateBootcamp(f.publisher, models.Bootcamp{Name: "Devworks", Description: "d"})
	require.NoError(t, err)

	other, err := f.users.CreateUser("Other", "other@example.com", "sup3rsecret", models.RolePublisher)
	require.NoError(t, err)

	var fe *apperr.ForbiddenError
	_, err = f.bootcamps.UpdateBootcamp(other, created.ID, models.Bootcamp{Name: "Hijacked", Description: "d"})
	require.ErrorAs(t, err, &fe)

	// The owner may update.
	updated, err := f.bootcamps.UpdateBootcamp(f.publisher, created.ID, models.Bootcamp{Name: "Devworks II", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, "Devworks II", updated.Name)
	assert.Equal(t, f.publisher.ID, updated.UserID)

	// So may an admin.
	updated, err = f.bootcamps.UpdateBootcamp(f.admin, created.ID, models.Bootcamp{Name: "Devworks III", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, "Devworks III", updated.Name)
}

func TestDeleteBootcampOwnership(t *testing.T) {
	f := newBootcampFixture(t)

	created, err := f.bootcamps.CreateBootcamp(f.publisher, models.Bootcamp{Name: "Devworks", Description: "d"})
	require.NoError(t, err)

	other, err := f.users.CreateUser("Other", "other@example.com", "sup3rsecret", models.RolePublisher)
	require.NoError(t, err)

	var fe *apperr.ForbiddenError
	err = f.bootcamps.DeleteBootcamp(other, created.ID)
	require.ErrorAs(t, err, &fe)

	require.NoError(t, f.bootcamps.DeleteBootcamp(f.publisher, created.ID))

	var nf *apperr.NotFoundError
	_, err = f.bootcamps.GetBootcampByID(created.ID)
	assert.ErrorAs(t, err, &nf)
}

func TestGetBootcampNotFound(t *testing.T) {
	f := newBootcampFixture(t)

	var nf *apperr.NotFoundError
	_, err := f.bootcamps.GetBootcampByID("missing-id")
	assert.ErrorAs(t, err, &nf)
}

func TestGetBootcampsInRadius(t *testing.T) {
	f := newBootcampFixture(t)

	// Geocode everything to downtown Boston.
	f.geo.loc = geocoder.Location{Latitude: 42.3601, Longitude: -71.0589}

	seed := []models.Bootcamp{
		{Name: "Boston Camp", Description: "d", Latitude: 42.3601, Longitude: -71.0589},
		{Name: "Cambridge Camp", Description: "d", Latitude: 42.3736, Longitude: -71.1097},
		{Name: "NYC Camp", Description: "d", Latitude: 40.7128, Longitude: -74.0060},
	}
	for _, b := range seed {
		_, err := f.bootcamps.CreateBootcamp(f.admin, b)
		require.NoError(t, err)
	}

	within, err := f.bootcamps.GetBootcampsInRadius(context.Background(), "02108", 10)
	require.NoError(t, err)
	require.Len(t, within, 2)
	names := []string{within[0].Name, within[1].Name}
	assert.Contains(t, names, "Boston Camp")
	assert.Contains(t, names, "Cambridge Camp")

	// A wide enough radius picks up New York too.
	within, err = f.bootcamps.GetBootcampsInRadius(context.Background(), "02108", 250)
	require.NoError(t, err)
	assert.Len(t, within, 3)

	_, err = f.bootcamps.GetBootcampsInRadius(context.Background(), "02108", -5)
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestGetBootcampsInRadiusGeocoderFailure(t *testing.T) {
	f := newBootcampFixture(t)
	f.geo.err = apperr.Upstream("geocode", assert.AnError)

	_, err := f.bootcamps.GetBootcampsInRadius(context.Background(), "02108", 10)
	var ue *apperr.UpstreamError
	assert.ErrorAs(t, err, &ue)
}

func TestUpdatePhotoOwnership(t *testing.T) {
	f := newBootcampFixture(t)

	created, err := f.bootcamps.CreateBootcamp(f.publisher, models.Bootcamp{Name: "Devworks", Description: "d"})
	require.NoError(t, err)

	other, err := f.users.CreateUser("Other", "other@example.com", "sup3rsecret", models.RolePublisher)
	require.NoError(t, err)

	var fe *apperr.ForbiddenError
	_, err = f.bootcamps.UpdatePhoto(other, created.ID, "photo_x.jpg")
	require.ErrorAs(t, err, &fe)

	updated, err := f.bootcamps.UpdatePhoto(f.publisher, created.ID, "photo_"+created.ID+".jpg")
	require.NoError(t, err)
	assert.Equal(t, "photo_"+created.ID+".jpg", updated.Photo)
}
