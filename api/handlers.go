/*
handlers.go - HTTP API handlers for the roster engine

PURPOSE:
  Exposes the weekly roster workflows via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the Planner.

ENDPOINTS:
  Plannings:
    GET    /api/kinds                                   List plannings
    GET    /api/kinds/{kind}/template                   Weekly pattern
    PUT    /api/kinds/{kind}/template                   Replace weekly pattern

  Rosters:
    GET    /api/kinds/{kind}/rosters                    Generated weeks
    POST   /api/kinds/{kind}/rosters/{year}/{week}      Generate (?confirm=true to overwrite)
    GET    /api/kinds/{kind}/rosters/{year}/{week}      Reconciled view
    PUT    /api/kinds/{kind}/rosters/{year}/{week}/slots/{day}/{slot}  Manual edit

  People:
    GET    /api/persons                                 List volunteers
    POST   /api/persons                                 Create or update volunteer
    GET    /api/absences                                List absences (?person=)
    POST   /api/absences                                Record absence
    DELETE /api/absences/{id}                           Remove absence

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call the Planner (generate, reconcile, edit)
  4. Serialize response
  5. Map errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid week, day, period, malformed roster
  - 404: Unknown planning, roster, seat, person, absence
  - 409: Roster exists without confirmation, concurrent regeneration
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The service runs on the food bank's internal network.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - planning/planner.go: Workflows
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/roster-engine/backup"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/planning"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Planner *planning.Planner
	Stores  generic.Stores
	Logger  *zap.Logger

	// Backup, when set, receives a snapshot after every roster change.
	Backup *backup.Pusher
}

// NewHandler creates a new handler on top of the planner's stores.
func NewHandler(planner *planning.Planner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Planner: planner, Stores: planner.Stores, Logger: logger}
}

// =============================================================================
// PLANNING HANDLERS
// =============================================================================

// ListKinds returns every registered planning.
func (h *Handler) ListKinds(w http.ResponseWriter, r *http.Request) {
	defs := generic.ListKinds()
	dtos := make([]KindDTO, len(defs))
	for i, d := range defs {
		dtos[i] = toKindDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTemplate returns the weekly pattern of a planning.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	def, ok := h.kind(w, r)
	if !ok {
		return
	}
	tpl, err := h.Stores.LoadTemplate(r.Context(), def.Kind)
	if err != nil {
		h.fail(w, "Failed to load template", err)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateDTO(tpl))
}

// PutTemplate replaces the weekly pattern of a planning.
// Already generated weeks keep their rows; they need a regeneration to follow.
func (h *Handler) PutTemplate(w http.ResponseWriter, r *http.Request) {
	def, ok := h.kind(w, r)
	if !ok {
		return
	}
	var req TemplateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tpl := generic.Template{Kind: def.Kind}
	for _, s := range req.Slots {
		day, err := generic.ParseDay(s.Day)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid day", err)
			return
		}
		tpl.Slots = append(tpl.Slots, generic.TemplateSlot{
			Day:     day,
			Slot:    generic.SlotKey(s.Slot),
			Nominee: generic.PersonID(s.Nominee),
		})
	}

	if err := h.Planner.SaveTemplate(r.Context(), tpl); err != nil {
		h.fail(w, "Failed to save template", err)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateDTO(tpl))
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// ListRosters returns the generated weeks of a planning, most recent first.
func (h *Handler) ListRosters(w http.ResponseWriter, r *http.Request) {
	def, ok := h.kind(w, r)
	if !ok {
		return
	}
	weeks, err := h.Stores.ListInstances(r.Context(), def.Kind)
	if err != nil {
		h.fail(w, "Failed to list rosters", err)
		return
	}
	dtos := make([]WeekDTO, len(weeks))
	for i, wk := range weeks {
		dtos[i] = toWeekDTO(wk)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GenerateRoster instantiates the template for a week.
// POST /api/kinds/{kind}/rosters/{year}/{week}?confirm=true
//
// Without confirm, an existing week is left untouched and 409 is returned so
// the client can ask the user before discarding manual edits.
func (h *Handler) GenerateRoster(w http.ResponseWriter, r *http.Request) {
	def, ok := h.kind(w, r)
	if !ok {
		return
	}
	week, ok := h.week(w, r)
	if !ok {
		return
	}
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	gen, err := h.Planner.Generate(r.Context(), def.Kind, week, planning.GenerateOptions{Overwrite: confirm})
	if err != nil {
		h.fail(w, "Failed to generate roster", err)
		return
	}
	if gen.EmptyTemplate {
		writeJSON(w, http.StatusOK, GenerateResponse{EmptyTemplate: true})
		return
	}

	h.pushBackup(r.Context())
	dto := toRosterDTO(gen.Instance)
	dto.Label = def.Label
	writeJSON(w, http.StatusCreated, GenerateResponse{Roster: dto})
}

// GetRoster reconciles a week against the absence ledger and returns it.
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	def, ok := h.kind(w, r)
	if !ok {
		return
	}
	week, ok := h.week(w, r)
	if !ok {
		return
	}
	view, err := h.Planner.View(r.Context(), def.Kind, week)
	if err != nil {
		h.fail(w, "Failed to load roster", err)
		return
	}
	writeJSON(w, http.StatusOK, toViewDTO(view))
}

// EditSlot records the person chosen for a seat.
// PUT /api/kinds/{kind}/rosters/{year}/{week}/slots/{day}/{slot}
func (h *Handler) EditSlot(w http.ResponseWriter, r *http.Request) {
	def, ok := h.kind(w, r)
	if !ok {
		return
	}
	week, ok := h.week(w, r)
	if !ok {
		return
	}
	day, err := generic.ParseDay(chi.URLParam(r, "day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid day", err)
		return
	}
	var req EditSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	row, err := h.Planner.Edit(r.Context(), def.Kind, week, day,
		generic.SlotKey(chi.URLParam(r, "slot")), generic.PersonID(req.Person))
	if err != nil {
		h.fail(w, "Failed to edit seat", err)
		return
	}
	h.pushBackup(r.Context())
	writeJSON(w, http.StatusOK, toRowDTO(row))
}

// =============================================================================
// PEOPLE HANDLERS
// =============================================================================

// ListPersons returns all volunteers sorted by name.
func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.Stores.ListPersons(r.Context())
	if err != nil {
		h.fail(w, "Failed to list persons", err)
		return
	}
	dtos := make([]PersonDTO, len(persons))
	for i, p := range persons {
		dtos[i] = toPersonDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SavePerson creates or updates a volunteer.
func (h *Handler) SavePerson(w http.ResponseWriter, r *http.Request) {
	var req PersonDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	p := generic.Person{ID: generic.PersonID(req.ID), Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := h.Stores.SavePerson(r.Context(), p); err != nil {
		h.fail(w, "Failed to save person", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonDTO(p))
}

// ListAbsences returns absences, optionally for one person.
func (h *Handler) ListAbsences(w http.ResponseWriter, r *http.Request) {
	list, err := h.Stores.ListAbsences(r.Context(), generic.PersonID(r.URL.Query().Get("person")))
	if err != nil {
		h.fail(w, "Failed to list absences", err)
		return
	}
	dtos := make([]AbsenceDTO, len(list))
	for i, a := range list {
		dtos[i] = toAbsenceDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAbsence records an absence range. Rosters pick it up on their next view.
func (h *Handler) CreateAbsence(w http.ResponseWriter, r *http.Request) {
	var req CreateAbsenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Person == "" {
		writeError(w, http.StatusBadRequest, "person is required", nil)
		return
	}
	start, err := generic.ParseDate(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return
	}
	end, err := generic.ParseDate(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return
	}
	period, err := generic.NewPeriod(start, end)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	if _, err := h.Stores.DisplayName(r.Context(), generic.PersonID(req.Person)); err != nil {
		h.fail(w, "Unknown person", err)
		return
	}

	a := generic.AbsenceRange{
		ID:       uuid.NewString(),
		PersonID: generic.PersonID(req.Person),
		Period:   period,
		Reason:   req.Reason,
	}
	if err := h.Stores.SaveAbsence(r.Context(), a); err != nil {
		h.fail(w, "Failed to save absence", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAbsenceDTO(a))
}

// DeleteAbsence removes an absence range.
func (h *Handler) DeleteAbsence(w http.ResponseWriter, r *http.Request) {
	if err := h.Stores.DeleteAbsence(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete absence", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) kind(w http.ResponseWriter, r *http.Request) (generic.KindDefinition, bool) {
	def, err := generic.LookupKind(generic.Kind(chi.URLParam(r, "kind")))
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown planning", err)
		return generic.KindDefinition{}, false
	}
	return def, true
}

func (h *Handler) week(w http.ResponseWriter, r *http.Request) (generic.Week, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return generic.Week{}, false
	}
	number, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week", err)
		return generic.Week{}, false
	}
	week, err := generic.NewWeek(year, number)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week", err)
		return generic.Week{}, false
	}
	return week, true
}

func (h *Handler) pushBackup(ctx context.Context) {
	if h.Backup == nil {
		return
	}
	// failures are logged by the pusher; the change itself is saved
	h.Backup.Push(ctx)
}

func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error(message, zap.Error(err))
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsConflict(err):
		return http.StatusConflict
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
