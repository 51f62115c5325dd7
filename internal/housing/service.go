package housing

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence surface the service needs; *Repository satisfies it.
type Store interface {
	GetUserByNationalID(ctx context.Context, nationalID string) (*User, error)
	GetProfile(ctx context.Context, studentID string) (*StudentProfile, error)
	StudentRoomID(ctx context.Context, studentID string) (*string, error)
	ListAttendance(ctx context.Context, studentID string, f AttendanceFilter) ([]AttendanceLog, error)
	GetClearance(ctx context.Context, studentID string) (*Clearance, error)
	ListComplaints(ctx context.Context, studentID string, f ComplaintFilter) ([]Complaint, error)
	InsertComplaint(ctx context.Context, c Complaint) (Complaint, error)
	ListMaintenance(ctx context.Context, studentID string, f MaintenanceFilter) ([]MaintenanceRequest, error)
	InsertMaintenance(ctx context.Context, m MaintenanceRequest) (MaintenanceRequest, error)
	ListPermissions(ctx context.Context, studentID string, f PermissionFilter) ([]PermissionRequest, error)
	InsertPermission(ctx context.Context, p PermissionRequest) (PermissionRequest, error)
	ListActivities(ctx context.Context, studentID string, limit int) ([]ActivityView, error)
	GetActivity(ctx context.Context, id string) (*Activity, error)
	CountSubscriptions(ctx context.Context, activityID string) (int, error)
	HasSubscription(ctx context.Context, studentID, activityID string) (bool, error)
	InsertSubscription(ctx context.Context, s Subscription) (Subscription, error)
	ListAnnouncements(ctx context.Context, f AnnouncementFilter) ([]Announcement, error)
}

// Service validates input and shapes queries for the student-facing API.
// The authenticated principal's student id is threaded explicitly through
// every call.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Login verifies credentials and returns the account. Unknown accounts,
// wrong passwords and suspended accounts all map to ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, nationalID, password string) (*User, error) {
	var missing []string
	if nationalID == "" {
		missing = append(missing, "national_id")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, errMissing(missing...)
	}
	u, err := s.store.GetUserByNationalID(ctx, nationalID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Suspended {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Profile returns the student's profile with its room joined in.
func (s *Service) Profile(ctx context.Context, studentID string) (*StudentProfile, error) {
	p, err := s.store.GetProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Attendance lists the student's attendance records, optionally narrowed to
// a month or a single date.
func (s *Service) Attendance(ctx context.Context, studentID string, f AttendanceFilter) ([]AttendanceLog, error) {
	f, err := f.Validate()
	if err != nil {
		return nil, err
	}
	return s.store.ListAttendance(ctx, studentID, f)
}

// Clearance returns the derived clearance view; a student with no clearance
// row reads as all-false pending.
func (s *Service) Clearance(ctx context.Context, studentID string) (ClearanceView, error) {
	c, err := s.store.GetClearance(ctx, studentID)
	if err != nil {
		return ClearanceView{}, err
	}
	if c == nil {
		return Clearance{StudentID: studentID}.View(), nil
	}
	return c.View(), nil
}

// Complaints lists the student's complaints.
func (s *Service) Complaints(ctx context.Context, studentID string, f ComplaintFilter) ([]Complaint, error) {
	f, err := f.Validate()
	if err != nil {
		return nil, err
	}
	return s.store.ListComplaints(ctx, studentID, f)
}

// CreateComplaint validates and persists a new complaint in its initial state.
func (s *Service) CreateComplaint(ctx context.Context, studentID string, in ComplaintInput) (Complaint, error) {
	in, err := in.Validate()
	if err != nil {
		return Complaint{}, err
	}
	return s.store.InsertComplaint(ctx, Complaint{
		StudentID:   studentID,
		Title:       in.Title,
		Description: in.Description,
		Type:        ComplaintType(in.Type),
		Status:      ComplaintPending,
		IsSecret:    *in.IsSecret,
	})
}

// Maintenance lists the student's maintenance requests; the student must be
// assigned to a room.
func (s *Service) Maintenance(ctx context.Context, studentID string, f MaintenanceFilter) ([]MaintenanceRequest, error) {
	f, err := f.Validate()
	if err != nil {
		return nil, err
	}
	if _, err := s.requireRoom(ctx, studentID); err != nil {
		return nil, err
	}
	return s.store.ListMaintenance(ctx, studentID, f)
}

// CreateMaintenance validates and persists a new maintenance request against
// the student's current room.
func (s *Service) CreateMaintenance(ctx context.Context, studentID string, in MaintenanceInput) (MaintenanceRequest, error) {
	in, err := in.Validate()
	if err != nil {
		return MaintenanceRequest{}, err
	}
	roomID, err := s.requireRoom(ctx, studentID)
	if err != nil {
		return MaintenanceRequest{}, err
	}
	return s.store.InsertMaintenance(ctx, MaintenanceRequest{
		StudentID:   studentID,
		RoomID:      roomID,
		Category:    MaintenanceCategory(in.Category),
		Description: in.Description,
		Status:      MaintenanceOpen,
	})
}

func (s *Service) requireRoom(ctx context.Context, studentID string) (string, error) {
	roomID, err := s.store.StudentRoomID(ctx, studentID)
	if err != nil {
		return "", err
	}
	if roomID == nil {
		return "", ErrNoRoomAssigned
	}
	return *roomID, nil
}

// Permissions lists the student's permission requests.
func (s *Service) Permissions(ctx context.Context, studentID string, f PermissionFilter) ([]PermissionRequest, error) {
	f, err := f.Validate()
	if err != nil {
		return nil, err
	}
	return s.store.ListPermissions(ctx, studentID, f)
}

// CreatePermission validates and persists a new permission request. Rejected
// input never reaches the store.
func (s *Service) CreatePermission(ctx context.Context, studentID string, in PermissionInput) (PermissionRequest, error) {
	in, err := in.Validate(s.now())
	if err != nil {
		return PermissionRequest{}, err
	}
	return s.store.InsertPermission(ctx, PermissionRequest{
		StudentID: studentID,
		Type:      PermissionType(in.Type),
		StartDate: in.Start,
		EndDate:   in.End,
		Reason:    in.Reason,
		Status:    PermissionPending,
	})
}

// Activities lists all activities annotated for the requesting student.
func (s *Service) Activities(ctx context.Context, studentID string, limit int) ([]ActivityView, error) {
	return s.store.ListActivities(ctx, studentID, limit)
}

// Subscribe runs the ordered subscription checks, each short-circuiting:
// activity existence, capacity, duplicate. The checks give precise errors;
// the conditional insert and the unique constraint are the authority under
// concurrency.
func (s *Service) Subscribe(ctx context.Context, studentID, activityID string) (Subscription, error) {
	if activityID == "" {
		return Subscription{}, errMissing("activity_id")
	}
	act, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return Subscription{}, err
	}
	if act == nil {
		return Subscription{}, ErrNotFound
	}
	current, err := s.store.CountSubscriptions(ctx, activityID)
	if err != nil {
		return Subscription{}, err
	}
	if current >= act.MaxParticipants {
		return Subscription{}, &ActivityFullError{Current: current, Max: act.MaxParticipants}
	}
	subscribed, err := s.store.HasSubscription(ctx, studentID, activityID)
	if err != nil {
		return Subscription{}, err
	}
	if subscribed {
		return Subscription{}, ErrAlreadySubscribed
	}
	return s.store.InsertSubscription(ctx, Subscription{StudentID: studentID, ActivityID: activityID})
}

// Announcements lists announcements, newest first.
func (s *Service) Announcements(ctx context.Context, f AnnouncementFilter) ([]Announcement, error) {
	return s.store.ListAnnouncements(ctx, f)
}
