// Seeder command for populating demo housing data against a dev database.
//
// Only runs when APP_ENV=dev and --confirm is provided.
//
// Usage:
//
//	APP_ENV=dev go run cmd/seed/main.go --confirm
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"housing/internal/config"
	"housing/internal/housing"
	"housing/internal/store"
)

func main() {
	confirm := flag.Bool("confirm", false, "Confirm seeding (required)")
	flag.Parse()

	cfg := config.Load()
	if cfg.Env != "dev" {
		log.Fatal("seeder only runs with APP_ENV=dev")
	}
	if !*confirm {
		log.Fatal("--confirm flag is required")
	}

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	if err := store.Migrate(ctx, db.Client); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	roomID := uuid.NewString()
	if _, err := db.Client.ExecContext(ctx, `
		INSERT INTO rooms (id, room_number, building, floor, capacity)
		VALUES ($1, 'B-204', 'B', 2, 3)
		ON CONFLICT (room_number) DO NOTHING
	`, roomID); err != nil {
		log.Fatalf("seed room: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("student123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}
	userID := uuid.NewString()
	if _, err := db.Client.ExecContext(ctx, `
		INSERT INTO users (id, national_id, password_hash, role)
		VALUES ($1, '29901011234567', $2, 'student')
		ON CONFLICT (national_id) DO NOTHING
	`, userID, string(hash)); err != nil {
		log.Fatalf("seed user: %v", err)
	}

	studentID := uuid.NewString()
	if _, err := db.Client.ExecContext(ctx, `
		INSERT INTO students (id, user_id, full_name, email, college, level, room_id)
		SELECT $1, u.id, 'Sara Ahmed', 'sara@university.edu', 'Engineering', 2, r.id
		FROM users u, rooms r
		WHERE u.national_id = '29901011234567' AND r.room_number = 'B-204'
		ON CONFLICT (user_id) DO NOTHING
	`, studentID); err != nil {
		log.Fatalf("seed student: %v", err)
	}
	if err := db.Client.QueryRowContext(ctx,
		`SELECT id FROM students WHERE user_id = (SELECT id FROM users WHERE national_id = '29901011234567')`,
	).Scan(&studentID); err != nil {
		log.Fatalf("lookup student: %v", err)
	}

	if _, err := db.Client.ExecContext(ctx, `
		INSERT INTO activities (id, title, description, location, event_date, max_participants)
		VALUES ($1, 'Football Tournament', 'Inter-building five-a-side', 'Main pitch', $2, 50)
	`, uuid.NewString(), time.Now().AddDate(0, 0, 14)); err != nil {
		log.Fatalf("seed activity: %v", err)
	}

	if _, err := db.Client.ExecContext(ctx, `
		INSERT INTO announcements (id, title, body, category)
		VALUES ($1, 'Water outage', 'Building B water is off Friday 09:00-12:00.', 'maintenance')
	`, uuid.NewString()); err != nil {
		log.Fatalf("seed announcement: %v", err)
	}

	if _, err := db.Client.ExecContext(ctx, `
		INSERT INTO clearance_process (id, student_id, room_check_passed, keys_returned)
		VALUES ($1, $2, TRUE, FALSE)
		ON CONFLICT (student_id) DO NOTHING
	`, uuid.NewString(), studentID); err != nil {
		log.Fatalf("seed clearance: %v", err)
	}

	repo := housing.NewRepository(db.Client)
	for i := 0; i < 7; i++ {
		status := housing.AttendancePresent
		if i%3 == 2 {
			status = housing.AttendanceAbsent
		}
		_, err := repo.InsertAttendance(ctx, housing.AttendanceLog{
			StudentID: studentID,
			Date:      time.Now().AddDate(0, 0, -i),
			Status:    status,
		})
		if err != nil && !errors.Is(err, housing.ErrAlreadyRecorded) {
			log.Fatalf("seed attendance: %v", err)
		}
	}

	if _, err := repo.InsertComplaint(ctx, housing.Complaint{
		StudentID:   studentID,
		Title:       "Noise Complaint",
		Description: "Loud music after midnight in the corridor.",
		Type:        housing.ComplaintGeneral,
		Status:      housing.ComplaintPending,
	}); err != nil {
		log.Fatalf("seed complaint: %v", err)
	}

	log.Println("seed complete: login with national_id 29901011234567 / student123")
}
