package housing

import "time"

// ComplaintType classifies a complaint.
type ComplaintType string

const (
	ComplaintGeneral ComplaintType = "general"
	ComplaintUrgent  ComplaintType = "urgent"
)

// Valid returns true when the type is a supported value.
func (t ComplaintType) Valid() bool {
	return t == ComplaintGeneral || t == ComplaintUrgent
}

// ComplaintStatus is the resolution state of a complaint.
type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "pending"
	ComplaintResolved ComplaintStatus = "resolved"
)

func (s ComplaintStatus) Valid() bool {
	return s == ComplaintPending || s == ComplaintResolved
}

// MaintenanceCategory classifies a maintenance request.
type MaintenanceCategory string

const (
	MaintenancePlumbing  MaintenanceCategory = "plumbing"
	MaintenanceElectric  MaintenanceCategory = "electric"
	MaintenanceNet       MaintenanceCategory = "net"
	MaintenanceFurniture MaintenanceCategory = "furniture"
	MaintenanceOther     MaintenanceCategory = "other"
)

func (c MaintenanceCategory) Valid() bool {
	switch c {
	case MaintenancePlumbing, MaintenanceElectric, MaintenanceNet, MaintenanceFurniture, MaintenanceOther:
		return true
	default:
		return false
	}
}

// MaintenanceStatus is the repair state of a maintenance request.
type MaintenanceStatus string

const (
	MaintenanceOpen       MaintenanceStatus = "open"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceFixed      MaintenanceStatus = "fixed"
)

func (s MaintenanceStatus) Valid() bool {
	return s == MaintenanceOpen || s == MaintenanceInProgress || s == MaintenanceFixed
}

// PermissionType classifies a permission request.
type PermissionType string

const (
	PermissionLate   PermissionType = "late"
	PermissionTravel PermissionType = "travel"
)

func (t PermissionType) Valid() bool {
	return t == PermissionLate || t == PermissionTravel
}

// PermissionStatus is the review state of a permission request.
type PermissionStatus string

const (
	PermissionPending  PermissionStatus = "pending"
	PermissionApproved PermissionStatus = "approved"
	PermissionRejected PermissionStatus = "rejected"
)

func (s PermissionStatus) Valid() bool {
	return s == PermissionPending || s == PermissionApproved || s == PermissionRejected
}

// AttendanceStatus marks a student present or absent for a calendar date.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// User is an account row; Subject of issued tokens is the student id.
type User struct {
	ID           string `json:"id"`
	NationalID   string `json:"national_id"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	Suspended    bool   `json:"-"`
	StudentID    string `json:"student_id"`
}

// Room is a dormitory room.
type Room struct {
	ID         string `json:"id"`
	RoomNumber string `json:"room_number"`
	Building   string `json:"building"`
	Floor      int    `json:"floor"`
	Capacity   int    `json:"capacity"`
}

// StudentProfile is the student row with its room joined in; Room is nil
// when the student is unassigned.
type StudentProfile struct {
	ID         string    `json:"id"`
	NationalID string    `json:"national_id"`
	FullName   string    `json:"full_name"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	College    *string   `json:"college,omitempty"`
	Level      *int      `json:"level,omitempty"`
	Room       *Room     `json:"room"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttendanceLog is one record per (student, date).
type AttendanceLog struct {
	ID        string           `json:"id"`
	StudentID string           `json:"student_id"`
	Date      time.Time        `json:"date"`
	Status    AttendanceStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// Complaint is a student-owned complaint.
type Complaint struct {
	ID          string          `json:"id"`
	StudentID   string          `json:"student_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        ComplaintType   `json:"type"`
	Status      ComplaintStatus `json:"status"`
	AdminReply  *string         `json:"admin_reply,omitempty"`
	IsSecret    bool            `json:"is_secret"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MaintenanceRequest is tied to the owning student's room.
type MaintenanceRequest struct {
	ID              string              `json:"id"`
	StudentID       string              `json:"student_id"`
	RoomID          string              `json:"room_id"`
	Category        MaintenanceCategory `json:"category"`
	Description     string              `json:"description"`
	Status          MaintenanceStatus   `json:"status"`
	SupervisorReply *string             `json:"supervisor_reply,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// PermissionRequest is a late-return or travel permission.
type PermissionRequest struct {
	ID        string           `json:"id"`
	StudentID string           `json:"student_id"`
	Type      PermissionType   `json:"type"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
	Reason    string           `json:"reason"`
	Status    PermissionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// Activity is a global event students can subscribe to.
type Activity struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	Location        *string   `json:"location,omitempty"`
	EventDate       time.Time `json:"event_date"`
	MaxParticipants int       `json:"max_participants"`
}

// ActivityView extends Activity with per-principal annotations, computed in
// one combined query.
type ActivityView struct {
	Activity
	ParticipantCount int  `json:"participant_count"`
	IsSubscribed     bool `json:"is_subscribed"`
}

// Subscription joins a student to an activity.
type Subscription struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	ActivityID string    `json:"activity_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Clearance holds the two exit checkpoints; status and percentage are
// derived at read time, never stored.
type Clearance struct {
	StudentID       string    `json:"student_id"`
	RoomCheckPassed bool      `json:"room_check_passed"`
	KeysReturned    bool      `json:"keys_returned"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ClearanceView is the API shape of Clearance.
type ClearanceView struct {
	RoomCheckPassed bool   `json:"room_check_passed"`
	KeysReturned    bool   `json:"keys_returned"`
	Percentage      int    `json:"percentage"`
	Status          string `json:"status"`
}

// View derives progress and status from the checkpoints.
func (c Clearance) View() ClearanceView {
	passed := 0
	if c.RoomCheckPassed {
		passed++
	}
	if c.KeysReturned {
		passed++
	}
	status := "pending"
	if passed == 2 {
		status = "completed"
	}
	return ClearanceView{
		RoomCheckPassed: c.RoomCheckPassed,
		KeysReturned:    c.KeysReturned,
		Percentage:      passed * 100 / 2,
		Status:          status,
	}
}

// Announcement is global and immutable once created.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  *string   `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
