/*
handlers_test.go - HTTP tests for the roster API

Tests for:
- Planning and template endpoints
- Generation confirmation gate (409 without confirm)
- Reconciled view, manual edit, absences
- Error mapping and the background scheduler
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roster-engine/backup"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/generic/store"
	"github.com/warp/roster-engine/planning"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	t       *testing.T
	handler *Handler
	router  http.Handler
	stores  *store.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, planning.Register())

	mem := store.NewMemory()
	ctx := context.Background()
	for _, p := range []generic.Person{
		{ID: "p1", Name: "Alain"},
		{ID: "p2", Name: "Béatrice"},
		{ID: "p3", Name: "Chantal"},
	} {
		require.NoError(t, mem.SavePerson(ctx, p))
	}

	log := zaptest.NewLogger(t)
	h := NewHandler(planning.NewPlanner(mem, log), log)
	return &testServer{t: t, handler: h, router: NewRouter(h, nil), stores: mem}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) seedTemplate() {
	s.t.Helper()
	rec := s.do(http.MethodPut, "/api/kinds/ramasse/template", TemplateDTO{Slots: []TemplateSlotDTO{
		{Day: "lundi", Slot: "chauffeur", Nominee: "p1"},
		{Day: "lundi", Slot: "equipier1", Nominee: "p2"},
		{Day: "mardi", Slot: "chauffeur", Nominee: "p1"},
	}})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
}

const rosterW10 = "/api/kinds/ramasse/rosters/2025/10"

func TestAPI_ListKinds(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/kinds", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	kinds := decode[[]KindDTO](t, rec)
	assert.Len(t, kinds, 5)
	for _, k := range kinds {
		if k.Kind == "distribution" {
			assert.Equal(t, []string{"mardi", "jeudi", "vendredi"}, k.Days)
		}
	}
}

func TestAPI_Template(t *testing.T) {
	s := newTestServer(t)
	s.seedTemplate()

	rec := s.do(http.MethodGet, "/api/kinds/ramasse/template", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tpl := decode[TemplateDTO](t, rec)
	assert.Len(t, tpl.Slots, 3)
	assert.Equal(t, "lundi", tpl.Slots[0].Day)

	rec = s.do(http.MethodPut, "/api/kinds/ramasse/template", TemplateDTO{Slots: []TemplateSlotDTO{
		{Day: "lundi", Slot: "pilote"},
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown seat")

	rec = s.do(http.MethodPut, "/api/kinds/ramasse/template", TemplateDTO{Slots: []TemplateSlotDTO{
		{Day: "samedi", Slot: "chauffeur"},
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "weekend day")

	rec = s.do(http.MethodGet, "/api/kinds/brocante/template", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_GenerateRequiresConfirmation(t *testing.T) {
	s := newTestServer(t)
	s.seedTemplate()

	// WHEN: generating a fresh week
	rec := s.do(http.MethodPost, rosterW10, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[GenerateResponse](t, rec)
	require.NotNil(t, first.Roster)
	assert.Len(t, first.Roster.Rows, 3)
	assert.Equal(t, "2025-03-03", first.Roster.Week.Monday)

	// THEN: a second generation is refused until confirmed
	rec = s.do(http.MethodPost, rosterW10, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, rosterW10+"?confirm=true", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[GenerateResponse](t, rec)
	assert.Equal(t, first.Roster.ID, second.Roster.ID)

	rec = s.do(http.MethodGet, "/api/kinds/ramasse/rosters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	weeks := decode[[]WeekDTO](t, rec)
	require.Len(t, weeks, 1)
	assert.Equal(t, "2025-W10", weeks[0].Label)
}

func TestAPI_GenerateEmptyTemplate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/kinds/vif/rosters/2025/10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[GenerateResponse](t, rec).EmptyTemplate)

	rec = s.do(http.MethodGet, "/api/kinds/vif/rosters/2025/10", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_InvalidWeek(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/kinds/ramasse/rosters/2025/53", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/kinds/ramasse/rosters/2025/x", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, rosterW10, nil).Code)
}

func TestAPI_AbsenceThenSubstitution(t *testing.T) {
	s := newTestServer(t)
	s.seedTemplate()
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, rosterW10, nil).Code)

	// GIVEN: p1 reports an absence for Monday
	rec := s.do(http.MethodPost, "/api/absences", CreateAbsenceRequest{
		Person: "p1", Start: "2025-03-03", End: "2025-03-03", Reason: "rendez-vous",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	absence := decode[AbsenceDTO](t, rec)

	// WHEN: the roster is viewed
	rec = s.do(http.MethodGet, rosterW10, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[RosterDTO](t, rec)

	// THEN: Monday's chauffeur is flagged but still shown until someone is chosen
	assert.Equal(t, 1, view.Changed)
	assert.True(t, view.Rows[0].Absent)
	assert.Equal(t, "p1", view.Assignments[0].Person)
	assert.False(t, view.Assignments[0].Substitution)
	assert.Equal(t, "2025-03-03", view.Assignments[0].Date)

	// WHEN: p3 is chosen for the seat
	rec = s.do(http.MethodPut, rosterW10+"/slots/lundi/chauffeur", EditSlotRequest{Person: "p3"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	row := decode[RowDTO](t, rec)
	assert.Equal(t, "p1", row.Assignee)
	assert.Equal(t, "p3", row.Substitute)

	// THEN: the substitution survives removing the absence
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/absences/"+absence.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/absences/"+absence.ID, nil).Code)

	view = decode[RosterDTO](t, s.do(http.MethodGet, rosterW10, nil))
	assert.Equal(t, 0, view.Changed)
	assert.True(t, view.Rows[0].Absent)
	assert.Equal(t, "p3", view.Assignments[0].Person)
	assert.True(t, view.Assignments[0].Substitution)
	assert.NotEmpty(t, view.Workload)
}

func TestAPI_EditErrors(t *testing.T) {
	s := newTestServer(t)
	s.seedTemplate()
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, rosterW10, nil).Code)

	tests := []struct {
		name   string
		path   string
		person string
		want   int
	}{
		{"unknown seat", rosterW10 + "/slots/mercredi/chauffeur", "p3", http.StatusNotFound},
		{"unknown person", rosterW10 + "/slots/lundi/chauffeur", "p9", http.StatusNotFound},
		{"invalid day", rosterW10 + "/slots/dimanche/chauffeur", "p3", http.StatusBadRequest},
		{"missing week", "/api/kinds/ramasse/rosters/2025/11/slots/lundi/chauffeur", "p3", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPut, tt.path, EditSlotRequest{Person: tt.person})
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestAPI_Persons(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/persons", PersonDTO{ID: "p4", Name: "Aaron", Phone: "0600000000"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/persons", PersonDTO{ID: "p5"}).Code)

	persons := decode[[]PersonDTO](t, s.do(http.MethodGet, "/api/persons", nil))
	require.Len(t, persons, 4)
	assert.Equal(t, "Aaron", persons[0].Name)
}

func TestAPI_AbsenceValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		req  CreateAbsenceRequest
		want int
	}{
		{"end before start", CreateAbsenceRequest{Person: "p1", Start: "2025-03-05", End: "2025-03-03"}, http.StatusBadRequest},
		{"bad date", CreateAbsenceRequest{Person: "p1", Start: "03/03/2025", End: "2025-03-03"}, http.StatusBadRequest},
		{"unknown person", CreateAbsenceRequest{Person: "p9", Start: "2025-03-03", End: "2025-03-03"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.do(http.MethodPost, "/api/absences", tt.req).Code)
		})
	}

	list := decode[[]AbsenceDTO](t, s.do(http.MethodGet, "/api/absences?person=p1", nil))
	assert.Empty(t, list)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", nil).Code)
	s.do(http.MethodGet, "/api/kinds", nil)

	rec := s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "roster_http_requests_total")
}

type fileSnapshot struct{}

func (fileSnapshot) Snapshot(_ context.Context, path string) error {
	return os.WriteFile(path, []byte("snapshot"), 0o600)
}

func TestScheduler_RunOnce(t *testing.T) {
	s := newTestServer(t)
	s.seedTemplate()
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, rosterW10, nil).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/absences", CreateAbsenceRequest{
		Person: "p2", Start: "2025-03-03", End: "2025-03-07",
	}).Code)

	sink, err := backup.NewDirectorySink(filepath.Join(t.TempDir(), "backups"), 3)
	require.NoError(t, err)
	pusher := backup.NewPusher(fileSnapshot{}, sink, zaptest.NewLogger(t))

	sched := NewReconciliationScheduler(s.handler.Planner, pusher, zaptest.NewLogger(t))
	sched.Now = func() generic.Week { return generic.Week{Year: 2025, Number: 9} }

	assert.Equal(t, []generic.Week{{Year: 2025, Number: 9}, {Year: 2025, Number: 10}}, sched.Weeks())

	report := sched.RunOnce(context.Background())
	assert.Equal(t, 1, report.Rosters)
	assert.Equal(t, 1, report.Changed)
	assert.Zero(t, report.Failed)

	names, err := sink.List()
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestServer(t)
	sched := NewReconciliationScheduler(s.handler.Planner, nil, zaptest.NewLogger(t))
	sched.Start()
	sched.Stop()
	sched.Stop()

	sched.Enabled = false
	sched.Start()
	sched.Stop()
}
