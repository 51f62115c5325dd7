package housing

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	// Counted in characters, matching the schema's char_length checks.
	maxTitleLen       = 200
	maxDescriptionLen = 5000
)

// ComplaintInput is the client payload for a new complaint.
type ComplaintInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	IsSecret    *bool  `json:"is_secret"`
}

// Validate normalizes and checks the payload, applying defaults for
// optional absent fields.
func (in ComplaintInput) Validate() (ComplaintInput, error) {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(in.Type) == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return in, errMissing(missing...)
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return in, errTooLong("title", maxTitleLen)
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		return in, errTooLong("description", maxDescriptionLen)
	}
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if !ComplaintType(in.Type).Valid() {
		return in, errInvalidEnum("type", string(ComplaintGeneral), string(ComplaintUrgent))
	}
	if in.IsSecret == nil {
		f := false
		in.IsSecret = &f
	}
	return in, nil
}

// MaintenanceInput is the client payload for a new maintenance request.
type MaintenanceInput struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (in MaintenanceInput) Validate() (MaintenanceInput, error) {
	var missing []string
	if strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return in, errMissing(missing...)
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		return in, errTooLong("description", maxDescriptionLen)
	}
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if !MaintenanceCategory(in.Category).Valid() {
		return in, errInvalidEnum("category",
			string(MaintenancePlumbing), string(MaintenanceElectric),
			string(MaintenanceNet), string(MaintenanceFurniture), string(MaintenanceOther))
	}
	return in, nil
}

// PermissionInput is the client payload for a new permission request.
// Start and End are populated by Validate.
type PermissionInput struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

// Validate checks fields, parses the dates, and enforces that the range is
// ordered and strictly in the future relative to now.
func (in PermissionInput) Validate(now time.Time) (PermissionInput, error) {
	var missing []string
	if strings.TrimSpace(in.Type) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(in.StartDate) == "" {
		missing = append(missing, "start_date")
	}
	if strings.TrimSpace(in.EndDate) == "" {
		missing = append(missing, "end_date")
	}
	if strings.TrimSpace(in.Reason) == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return in, errMissing(missing...)
	}

	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if !PermissionType(in.Type).Valid() {
		return in, errInvalidEnum("type", string(PermissionLate), string(PermissionTravel))
	}

	var err error
	in.Start, err = time.Parse(dateLayout, in.StartDate)
	if err != nil {
		return in, errInvalidDate("start_date")
	}
	in.End, err = time.Parse(dateLayout, in.EndDate)
	if err != nil {
		return in, errInvalidDate("end_date")
	}
	if in.End.Before(in.Start) {
		return in, &ValidationError{Field: "end_date", Message: "end_date must be on or after start_date"}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !in.Start.After(today) {
		return in, &ValidationError{Field: "start_date", Message: "start_date must be in the future"}
	}
	return in, nil
}

// AttendanceFilter narrows the attendance listing to a month or a single date.
type AttendanceFilter struct {
	Month string
	Date  string
}

func (f AttendanceFilter) Validate() (AttendanceFilter, error) {
	if f.Date != "" {
		if _, err := time.Parse(dateLayout, f.Date); err != nil {
			return f, errInvalidDate("date")
		}
	}
	if f.Month != "" {
		if _, err := time.Parse(monthLayout, f.Month); err != nil {
			return f, &ValidationError{Field: "month", Message: "invalid month, expected YYYY-MM"}
		}
	}
	return f, nil
}

// ComplaintFilter narrows the complaint listing.
type ComplaintFilter struct {
	Status string
	Type   string
}

func (f ComplaintFilter) Validate() (ComplaintFilter, error) {
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	if f.Status != "" && !ComplaintStatus(f.Status).Valid() {
		return f, errInvalidEnum("status", string(ComplaintPending), string(ComplaintResolved))
	}
	if f.Type != "" && !ComplaintType(f.Type).Valid() {
		return f, errInvalidEnum("type", string(ComplaintGeneral), string(ComplaintUrgent))
	}
	return f, nil
}

// MaintenanceFilter narrows the maintenance listing.
type MaintenanceFilter struct {
	Status   string
	Category string
}

func (f MaintenanceFilter) Validate() (MaintenanceFilter, error) {
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	if f.Status != "" && !MaintenanceStatus(f.Status).Valid() {
		return f, errInvalidEnum("status",
			string(MaintenanceOpen), string(MaintenanceInProgress), string(MaintenanceFixed))
	}
	if f.Category != "" && !MaintenanceCategory(f.Category).Valid() {
		return f, errInvalidEnum("category",
			string(MaintenancePlumbing), string(MaintenanceElectric),
			string(MaintenanceNet), string(MaintenanceFurniture), string(MaintenanceOther))
	}
	return f, nil
}

// PermissionFilter narrows the permission listing.
type PermissionFilter struct {
	Status string
	Type   string
}

func (f PermissionFilter) Validate() (PermissionFilter, error) {
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	if f.Status != "" && !PermissionStatus(f.Status).Valid() {
		return f, errInvalidEnum("status",
			string(PermissionPending), string(PermissionApproved), string(PermissionRejected))
	}
	if f.Type != "" && !PermissionType(f.Type).Valid() {
		return f, errInvalidEnum("type", string(PermissionLate), string(PermissionTravel))
	}
	return f, nil
}

// AnnouncementFilter narrows the announcement listing.
type AnnouncementFilter struct {
	Category string
	Limit    int
}
