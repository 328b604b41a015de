/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal roster model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Plannings:  KindDTO, SlotDTO, TemplateDTO, TemplateSlotDTO
  Rosters:    WeekDTO, RosterDTO, RowDTO, AssignmentDTO, WorkloadDTO, GenerateResponse
  Edits:      EditSlotRequest
  People:     PersonDTO, AbsenceDTO, CreateAbsenceRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
  Days travel as French day names (lundi..vendredi); dates as YYYY-MM-DD.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/planning"
)

// =============================================================================
// PLANNINGS
// =============================================================================

// KindDTO describes one planning.
type KindDTO struct {
	Kind  string    `json:"kind"`
	Label string    `json:"label"`
	Days  []string  `json:"days"`
	Slots []SlotDTO `json:"slots"`
}

// SlotDTO describes a seat of a planning.
type SlotDTO struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Hours string `json:"hours"`
}

// TemplateDTO is the weekly pattern of a planning.
type TemplateDTO struct {
	Kind  string            `json:"kind"`
	Slots []TemplateSlotDTO `json:"slots"`
}

// TemplateSlotDTO is one seat of the weekly pattern.
type TemplateSlotDTO struct {
	Day     string `json:"day"`
	Slot    string `json:"slot"`
	Nominee string `json:"nominee,omitempty"`
}

// =============================================================================
// ROSTERS
// =============================================================================

// WeekDTO identifies an ISO week.
type WeekDTO struct {
	Year   int    `json:"year"`
	Week   int    `json:"week"`
	Label  string `json:"label"`
	Monday string `json:"monday,omitempty"`
}

// RowDTO is a stored seat.
type RowDTO struct {
	Day        string `json:"day"`
	Slot       string `json:"slot"`
	Assignee   string `json:"assignee,omitempty"`
	Absent     bool   `json:"absent"`
	Substitute string `json:"substitute,omitempty"`
}

// AssignmentDTO is who effectively holds a seat on a date.
type AssignmentDTO struct {
	Day          string `json:"day"`
	Date         string `json:"date"`
	Slot         string `json:"slot"`
	Person       string `json:"person,omitempty"`
	Substitution bool   `json:"substitution"`
}

// WorkloadDTO is one person's share of the week.
type WorkloadDTO struct {
	Person        string `json:"person"`
	Seats         int    `json:"seats"`
	Substitutions int    `json:"substitutions"`
	Hours         string `json:"hours"`
}

// RosterDTO is a reconciled week ready for display.
type RosterDTO struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Label       string          `json:"label,omitempty"`
	Week        WeekDTO         `json:"week"`
	GeneratedAt string          `json:"generated_at"`
	Rows        []RowDTO        `json:"rows"`
	Assignments []AssignmentDTO `json:"assignments,omitempty"`
	Workload    []WorkloadDTO   `json:"workload,omitempty"`
	TotalHours  string          `json:"total_hours,omitempty"`
	Changed     int             `json:"changed"`
}

// GenerateResponse is returned by roster generation.
type GenerateResponse struct {
	EmptyTemplate bool       `json:"empty_template"`
	Roster        *RosterDTO `json:"roster,omitempty"`
}

// EditSlotRequest names the person chosen for a seat. An empty person clears it.
type EditSlotRequest struct {
	Person string `json:"person"`
}

// =============================================================================
// PEOPLE
// =============================================================================

// PersonDTO is a volunteer.
type PersonDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// AbsenceDTO is an absence range in API responses.
type AbsenceDTO struct {
	ID     string `json:"id"`
	Person string `json:"person"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason,omitempty"`
}

// CreateAbsenceRequest is the request to record an absence.
type CreateAbsenceRequest struct {
	Person string `json:"person"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toKindDTO(def generic.KindDefinition) KindDTO {
	days := def.Days
	if len(days) == 0 {
		days = generic.WorkDays
	}
	dto := KindDTO{Kind: string(def.Kind), Label: def.Label, Days: make([]string, len(days))}
	for i, d := range days {
		dto.Days[i] = d.String()
	}
	for _, s := range def.Slots {
		dto.Slots = append(dto.Slots, SlotDTO{Key: string(s.Key), Label: s.Label, Hours: s.Hours.String()})
	}
	return dto
}

func toTemplateDTO(tpl generic.Template) TemplateDTO {
	dto := TemplateDTO{Kind: string(tpl.Kind), Slots: []TemplateSlotDTO{}}
	for _, s := range tpl.Slots {
		dto.Slots = append(dto.Slots, TemplateSlotDTO{
			Day:     s.Day.String(),
			Slot:    string(s.Slot),
			Nominee: string(s.Nominee),
		})
	}
	return dto
}

func toWeekDTO(w generic.Week) WeekDTO {
	dto := WeekDTO{Year: w.Year, Week: w.Number, Label: w.String()}
	if monday, err := w.Monday(); err == nil {
		dto.Monday = monday.String()
	}
	return dto
}

func toRosterDTO(inst *generic.Instance) *RosterDTO {
	dto := &RosterDTO{
		ID:          inst.ID,
		Kind:        string(inst.Kind),
		Week:        toWeekDTO(inst.Week),
		GeneratedAt: inst.GeneratedAt.Format(time.RFC3339),
		Rows:        make([]RowDTO, len(inst.Rows)),
	}
	for i, r := range inst.Rows {
		dto.Rows[i] = toRowDTO(r)
	}
	return dto
}

func toRowDTO(r generic.Row) RowDTO {
	return RowDTO{
		Day:        r.Day.String(),
		Slot:       string(r.Slot),
		Assignee:   string(r.Assignee),
		Absent:     r.Absent,
		Substitute: string(r.Substitute),
	}
}

func toViewDTO(v *planning.View) *RosterDTO {
	dto := toRosterDTO(v.Instance)
	dto.Label = v.Definition.Label
	dto.Changed = v.Changed
	for _, a := range v.Assignments {
		ad := AssignmentDTO{
			Day:          a.Day.String(),
			Slot:         string(a.Slot),
			Person:       string(a.Person),
			Substitution: a.Substitution,
		}
		if !a.Date.IsZero() {
			ad.Date = a.Date.String()
		}
		dto.Assignments = append(dto.Assignments, ad)
	}
	for _, l := range v.Workload {
		dto.Workload = append(dto.Workload, WorkloadDTO{
			Person:        string(l.Person),
			Seats:         l.Seats,
			Substitutions: l.Substitutions,
			Hours:         l.Hours.String(),
		})
	}
	dto.TotalHours = generic.TotalHours(v.Workload).String()
	return dto
}

func toPersonDTO(p generic.Person) PersonDTO {
	return PersonDTO{ID: string(p.ID), Name: p.Name, Email: p.Email, Phone: p.Phone}
}

func toAbsenceDTO(a generic.AbsenceRange) AbsenceDTO {
	return AbsenceDTO{
		ID:     a.ID,
		Person: string(a.PersonID),
		Start:  a.Period.Start.String(),
		End:    a.Period.End.String(),
		Reason: a.Reason,
	}
}
