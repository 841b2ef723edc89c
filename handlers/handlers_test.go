package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/mikerp/coverage"
	"github.com/padraicbc/mikerp/db"
	"github.com/padraicbc/mikerp/models"
)

type fakeStore struct {
	lastKind, lastID string
	lastLimit        int
	notes            map[string]string
	err              error
}

func (f *fakeStore) Partnerships(_ context.Context, jockeyID, trainerID string, limit int) ([]models.JockeyTrainerStats, error) {
	f.lastID, f.lastLimit = jockeyID+"|"+trainerID, limit
	return []models.JockeyTrainerStats{{JockeyID: "jk1", TrainerID: "tr1", Summary: models.Summary{Runs: 12, Wins: 3}}}, f.err
}

func (f *fakeStore) DistanceStats(_ context.Context, kind, id string) ([]models.DistanceStats, error) {
	f.lastKind, f.lastID = kind, id
	return []models.DistanceStats{{EntityKind: kind, EntityID: id, DistanceBand: "7-8f"}}, f.err
}

func (f *fakeStore) VenueStats(_ context.Context, kind, id string) ([]models.VenueStats, error) {
	f.lastKind, f.lastID = kind, id
	return []models.VenueStats{{EntityKind: kind, EntityID: id, CourseID: "cr1"}}, f.err
}

func (f *fakeStore) PedigreeStats(_ context.Context, role, id string) (*models.PedigreeStats, error) {
	if id == "missing" {
		return nil, db.ErrNotFound
	}
	return &models.PedigreeStats{Role: role, AncestorID: id}, f.err
}

func (f *fakeStore) ListRuns(_ context.Context, kind string, limit int) ([]models.PipelineRun, error) {
	f.lastKind, f.lastLimit = kind, limit
	return []models.PipelineRun{{Kind: "ingest"}}, f.err
}

func (f *fakeStore) SearchTrainers(_ context.Context, q string, limit int) ([]models.Trainer, error) {
	f.lastID, f.lastLimit = q, limit
	return []models.Trainer{{TrainerID: "tr1", Trainer: "W P Mullins"}}, f.err
}

func (f *fakeStore) Trainer(_ context.Context, id string) (*models.Trainer, error) {
	n, ok := f.notes[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &models.Trainer{TrainerID: id, Trainer: "W P Mullins", Info: &n}, nil
}

func (f *fakeStore) SaveTrainerNotes(_ context.Context, id, notes string) error {
	if _, ok := f.notes[id]; !ok {
		return db.ErrNotFound
	}
	f.notes[id] = notes
	return nil
}

type fakeAuditor struct {
	rep coverage.Report
	err error
}

func (f fakeAuditor) Audit(context.Context) (coverage.Report, error) { return f.rep, f.err }

func newServer(store Store, auditor Auditor) *echo.Echo {
	e := echo.New()
	New(store, auditor, []byte("k")).Routes(e.Group("/rp"))
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPartnerships(t *testing.T) {
	store := &fakeStore{}
	e := newServer(store, fakeAuditor{})

	rec := do(e, http.MethodGet, "/rp/stats/partnerships?jockey=jk1&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jk1|", store.lastID)
	assert.Equal(t, 5, store.lastLimit)

	var rows []models.JockeyTrainerStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 12, rows[0].Runs)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/rp/stats/partnerships", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/rp/stats/partnerships?trainer=tr1&limit=x", "").Code)

	do(e, http.MethodGet, "/rp/stats/partnerships?trainer=tr1&limit=100000", "")
	assert.Equal(t, maxLimit, store.lastLimit)
}

func TestEntityStats(t *testing.T) {
	store := &fakeStore{}
	e := newServer(store, fakeAuditor{})

	rec := do(e, http.MethodGet, "/rp/stats/distance?id=hr1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "horse", store.lastKind)

	rec = do(e, http.MethodGet, "/rp/stats/venue?kind=jockey&id=jk1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jockey", store.lastKind)
	assert.Equal(t, "jk1", store.lastID)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/rp/stats/venue?kind=owner&id=ow1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/rp/stats/distance?kind=horse", "").Code)
}

func TestPedigreeStats(t *testing.T) {
	e := newServer(&fakeStore{}, fakeAuditor{})

	rec := do(e, http.MethodGet, "/rp/stats/pedigree/sire/sr1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var row models.PedigreeStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	assert.Equal(t, "sire", row.Role)
	assert.Equal(t, "sr1", row.AncestorID)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/rp/stats/pedigree/dam/missing", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/rp/stats/pedigree/grandsire/x", "").Code)
}

func TestStoreErrorIs500(t *testing.T) {
	e := newServer(&fakeStore{err: errors.New("boom")}, fakeAuditor{})
	assert.Equal(t, http.StatusInternalServerError, do(e, http.MethodGet, "/rp/runs", "").Code)
	assert.Equal(t, http.StatusInternalServerError, do(e, http.MethodGet, "/rp/stats/distance?id=hr1", "").Code)
}

func TestRuns(t *testing.T) {
	store := &fakeStore{}
	e := newServer(store, fakeAuditor{})

	rec := do(e, http.MethodGet, "/rp/runs?kind=aggregate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "aggregate", store.lastKind)
	assert.Equal(t, 50, store.lastLimit)
}

func TestCoverage(t *testing.T) {
	rep := coverage.Report{
		Lines:      []coverage.Line{{Field: coverage.Field{Table: "horses", Column: "dob"}, Total: 4, Populated: 3}},
		Unexpected: 1,
	}
	e := newServer(&fakeStore{}, fakeAuditor{rep: rep})

	rec := do(e, http.MethodGet, "/rp/coverage", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got coverage.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, rep, got)

	rec = do(e, http.MethodGet, "/rp/coverage?fields=only", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fields []coverage.Field
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	assert.Equal(t, coverage.Fields(), fields)

	e = newServer(&fakeStore{}, fakeAuditor{err: errors.New("db down")})
	assert.Equal(t, http.StatusInternalServerError, do(e, http.MethodGet, "/rp/coverage", "").Code)
}

func TestTrainerNotes(t *testing.T) {
	store := &fakeStore{notes: map[string]string{"tr1": ""}}
	e := newServer(store, fakeAuditor{})

	require.Equal(t, http.StatusOK, do(e, http.MethodPost, "/rp/trainers/tr1/notes", "good with debutants").Code)
	assert.Equal(t, "good with debutants", store.notes["tr1"])

	rec := do(e, http.MethodGet, "/rp/trainers/tr1/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got trainerText
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, trainerText{"tr1", "W P Mullins", "good with debutants"}, got)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/rp/trainers/tr9/notes", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPost, "/rp/trainers/tr9/notes", "x").Code)

	rec = do(e, http.MethodGet, "/rp/trainers?q=mull", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mull", store.lastID)
	assert.Equal(t, 20, store.lastLimit)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/rp/trainers", "").Code)
}
