package housing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Repository persists housing data in Postgres. Every query is parameterized;
// filters only ever add positional AND predicates.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetUserByNationalID returns the account joined with its student row.
func (r *Repository) GetUserByNationalID(ctx context.Context, nationalID string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT u.id, u.national_id, u.password_hash, u.role, u.suspended, s.id
		FROM users u
		JOIN students s ON s.user_id = u.id
		WHERE u.national_id = $1
	`, nationalID)
	var u User
	if err := row.Scan(&u.ID, &u.NationalID, &u.PasswordHash, &u.Role, &u.Suspended, &u.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetProfile returns the student with its room joined in; the room is nil
// when unassigned, so an unassigned student still gets profile data.
func (r *Repository) GetProfile(ctx context.Context, studentID string) (*StudentProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT s.id, u.national_id, s.full_name, s.email, s.phone, s.college, s.level, s.created_at,
		       r.id, r.room_number, r.building, r.floor, r.capacity
		FROM students s
		JOIN users u ON u.id = s.user_id
		LEFT JOIN rooms r ON r.id = s.room_id
		WHERE s.id = $1
	`, studentID)
	var p StudentProfile
	var roomID, roomNumber, building sql.NullString
	var floor, capacity sql.NullInt64
	err := row.Scan(&p.ID, &p.NationalID, &p.FullName, &p.Email, &p.Phone, &p.College, &p.Level, &p.CreatedAt,
		&roomID, &roomNumber, &building, &floor, &capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if roomID.Valid {
		p.Room = &Room{
			ID:         roomID.String,
			RoomNumber: roomNumber.String,
			Building:   building.String,
			Floor:      int(floor.Int64),
			Capacity:   int(capacity.Int64),
		}
	}
	return &p, nil
}

// StudentRoomID returns the student's room reference, nil when unassigned.
func (r *Repository) StudentRoomID(ctx context.Context, studentID string) (*string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT room_id FROM students WHERE id = $1`, studentID)
	var roomID sql.NullString
	if err := row.Scan(&roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !roomID.Valid {
		return nil, nil
	}
	return &roomID.String, nil
}

// ListAttendance returns the student's attendance records, newest first.
func (r *Repository) ListAttendance(ctx context.Context, studentID string, f AttendanceFilter) ([]AttendanceLog, error) {
	query := `SELECT id, student_id, date, status, created_at FROM attendance_logs`
	args := []any{studentID}
	clauses := []string{"student_id = $1"}
	if f.Date != "" {
		clauses = append(clauses, "date = $"+strconv.Itoa(len(args)+1))
		args = append(args, f.Date)
	}
	if f.Month != "" {
		clauses = append(clauses, "to_char(date, 'YYYY-MM') = $"+strconv.Itoa(len(args)+1))
		args = append(args, f.Month)
	}
	query += " WHERE " + joinClauses(clauses, " AND ") + " ORDER BY date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []AttendanceLog
	for rows.Next() {
		var a AttendanceLog
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Date, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// GetClearance returns the student's clearance row, nil when absent.
func (r *Repository) GetClearance(ctx context.Context, studentID string) (*Clearance, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT student_id, room_check_passed, keys_returned, updated_at
		FROM clearance_process WHERE student_id = $1
	`, studentID)
	var c Clearance
	if err := row.Scan(&c.StudentID, &c.RoomCheckPassed, &c.KeysReturned, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListComplaints returns the student's complaints, newest first.
func (r *Repository) ListComplaints(ctx context.Context, studentID string, f ComplaintFilter) ([]Complaint, error) {
	query := `SELECT id, student_id, title, description, type, status, admin_reply, is_secret, created_at FROM complaints`
	args := []any{studentID}
	clauses := []string{"student_id = $1"}
	if f.Status != "" {
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)+1))
		args = append(args, f.Status)
	}
	if f.Type != "" {
		clauses = append(clauses, "type = $"+strconv.Itoa(len(args)+1))
		args = append(args, f.Type)
	}
	query += " WHERE " + joinClauses(clauses, " AND ") + " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Complaint
	for rows.Next() {
		var c Complaint
		if err := rows.Scan(&c.ID, &c.StudentID, &c.Title, &c.Description, &c.Type, &c.Status, &c.AdminReply, &c.IsSecret, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// InsertComplaint writes a new complaint.
func (r *Repository) InsertComplaint(ctx context.Context, c Complaint) (Complaint, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO complaints (id, student_id, title, description, type, status, is_secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, c.ID, c.StudentID, c.Title, c.Description, c.Type, c.Status, c.IsSecret)
	if err := row.Scan(&c.CreatedAt); err != nil {
		return Complaint{}, err
	}
	return c, nil
}

// ListMaintenance returns the student's maintenance requests, newest first.
func (r *Repository) ListMaintenance(ctx context.Context, studentID string, f MaintenanceFilter) ([]MaintenanceRequest, error) {
	query := `SELECT id, student_id, room_id, category, description, status, supervisor_reply, created_at FROM maintenance_requests`
	args := []any{studentID}
	clauses := []string{"student_id = $1"}
	if f.Status != "" {
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)+1))
		args = append(args, f.Status)
	}
	if f.Category != "" {
		clauses = append(clauses, "category = $"+strconv.Itoa(len(args)+1))
		args = append(args, f.Category)
	}
	query += " WHERE " + joinClauses(clauses, " AND ") + " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []MaintenanceRequest
	for rows.Next() {
		var m MaintenanceRequest
		if err := rows.Scan(&m.ID, &m.StudentID, &m.RoomID, &m.Category, &m.Description, &m.Status, &m.SupervisorReply, &m.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// InsertMaintenance writes a new maintenance request.
func (r *Repository) InsertMaintenance(ctx context.Context, m MaintenanceRequest) (MaintenanceRequest, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO maintenance_requests (id, student_id, room_id, category, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, m.ID, m.StudentID, m.RoomID, m.Category, m.Description, m.Status)
	if err := row.Scan(&m.CreatedAt); err != nil {
		return MaintenanceRequest{}, err
	}
	return m, nil
}

// ListPermissions returns the student's permission requests, soonest first.
func (r *Repository) ListPermissions(ctx context.Context, studentID string, f PermissionFilter) ([]PermissionRequest, error) {
	query := `SELECT id, student_id, type, start_date, end_date, reason, status, created_at FROM permissions`
	args := []any{studentID}
	clauses := []string{"student_id = $1"}
	if f.Status != "" {
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)+1))
		args = append(args, f.Status)
	}
	if f.Type != "" {
		clauses = append(clauses, "type = $"+strconv.Itoa(len(args)+1))
		args = append(args, f.Type)
	}
	query += " WHERE " + joinClauses(clauses, " AND ") + " ORDER BY start_date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []PermissionRequest
	for rows.Next() {
		var p PermissionRequest
		if err := rows.Scan(&p.ID, &p.StudentID, &p.Type, &p.StartDate, &p.EndDate, &p.Reason, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// InsertPermission writes a new permission request.
func (r *Repository) InsertPermission(ctx context.Context, p PermissionRequest) (PermissionRequest, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO permissions (id, student_id, type, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, p.ID, p.StudentID, p.Type, p.StartDate, p.EndDate, p.Reason, p.Status)
	if err := row.Scan(&p.CreatedAt); err != nil {
		return PermissionRequest{}, err
	}
	return p, nil
}

// ListActivities returns all activities annotated with the subscriber count
// and whether the given student is subscribed, in one combined query,
// soonest event first.
func (r *Repository) ListActivities(ctx context.Context, studentID string, limit int) ([]ActivityView, error) {
	query := `
		SELECT a.id, a.title, a.description, a.location, a.event_date, a.max_participants,
		       (SELECT COUNT(*) FROM activity_subscriptions sub WHERE sub.activity_id = a.id) AS participant_count,
		       EXISTS (SELECT 1 FROM activity_subscriptions mine WHERE mine.activity_id = a.id AND mine.student_id = $1) AS is_subscribed
		FROM activities a
		ORDER BY a.event_date ASC
	`
	args := []any{studentID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ActivityView
	for rows.Next() {
		var v ActivityView
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.Location, &v.EventDate, &v.MaxParticipants, &v.ParticipantCount, &v.IsSubscribed); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

// GetActivity returns a single activity, nil when absent.
func (r *Repository) GetActivity(ctx context.Context, id string) (*Activity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, location, event_date, max_participants
		FROM activities WHERE id = $1
	`, id)
	var a Activity
	if err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Location, &a.EventDate, &a.MaxParticipants); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// CountSubscriptions returns the subscriber count for an activity.
func (r *Repository) CountSubscriptions(ctx context.Context, activityID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM activity_subscriptions WHERE activity_id = $1
	`, activityID).Scan(&n)
	return n, err
}

// HasSubscription reports whether the (student, activity) pair is subscribed.
func (r *Repository) HasSubscription(ctx context.Context, studentID, activityID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM activity_subscriptions WHERE student_id = $1 AND activity_id = $2)
	`, studentID, activityID).Scan(&exists)
	return exists, err
}

// InsertSubscription inserts a subscription only while the activity has
// spare capacity, in a single conditional statement. The unique constraint
// on (student_id, activity_id) is the authority against concurrent
// duplicates and maps to ErrAlreadySubscribed.
func (r *Repository) InsertSubscription(ctx context.Context, s Subscription) (Subscription, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO activity_subscriptions (id, student_id, activity_id)
		SELECT $1, $2, $3
		WHERE (SELECT COUNT(*) FROM activity_subscriptions WHERE activity_id = $3)
		    < (SELECT max_participants FROM activities WHERE id = $3)
		RETURNING created_at
	`, s.ID, s.StudentID, s.ActivityID)
	if err := row.Scan(&s.CreatedAt); err != nil {
		if isUniqueViolation(err, "") {
			return Subscription{}, ErrAlreadySubscribed
		}
		if errors.Is(err, sql.ErrNoRows) {
			current, cerr := r.CountSubscriptions(ctx, s.ActivityID)
			if cerr != nil {
				return Subscription{}, cerr
			}
			act, aerr := r.GetActivity(ctx, s.ActivityID)
			if aerr != nil {
				return Subscription{}, aerr
			}
			if act == nil {
				return Subscription{}, ErrNotFound
			}
			return Subscription{}, &ActivityFullError{Current: current, Max: act.MaxParticipants}
		}
		return Subscription{}, err
	}
	return s, nil
}

// ListAnnouncements returns announcements, newest first.
func (r *Repository) ListAnnouncements(ctx context.Context, f AnnouncementFilter) ([]Announcement, error) {
	query := `SELECT id, title, body, category, created_at FROM announcements`
	args := []any{}
	clauses := []string{}
	if f.Category != "" {
		clauses = append(clauses, "category = $"+strconv.Itoa(len(args)+1))
		args = append(args, f.Category)
	}
	if len(clauses) > 0 {
		query += " WHERE " + joinClauses(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT $" + strconv.Itoa(len(args)+1)
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Announcement
	for rows.Next() {
		var a Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.Category, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// InsertAttendance writes a new attendance record; a second record for the
// same (student, date) trips the unique constraint.
func (r *Repository) InsertAttendance(ctx context.Context, a AttendanceLog) (AttendanceLog, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_logs (id, student_id, date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, a.ID, a.StudentID, a.Date, a.Status)
	if err := row.Scan(&a.CreatedAt); err != nil {
		if isUniqueViolation(err, "") {
			return AttendanceLog{}, fmt.Errorf("attendance for %s on %s: %w",
				a.StudentID, a.Date.Format(dateLayout), ErrAlreadyRecorded)
		}
		return AttendanceLog{}, err
	}
	return a, nil
}

func joinClauses(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += sep + parts[i]
	}
	return out
}
