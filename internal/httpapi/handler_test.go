package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"housing/internal/auth"
	"housing/internal/housing"
	"housing/internal/httpapi"
)

const (
	testIssuer = "housing-test"
	testKey    = "test-signing-key"
)

// stubStore is a canned-response housing.Store for handler tests.
type stubStore struct {
	user       *housing.User
	profile    *housing.StudentProfile
	roomID     *string
	clearance  *housing.Clearance
	attendance []housing.AttendanceLog
	activity   *housing.Activity
	subCount   int
	hasSub     bool
}

func (s *stubStore) GetUserByNationalID(_ context.Context, nationalID string) (*housing.User, error) {
	if s.user != nil && s.user.NationalID == nationalID {
		return s.user, nil
	}
	return nil, nil
}
func (s *stubStore) GetProfile(context.Context, string) (*housing.StudentProfile, error) {
	return s.profile, nil
}
func (s *stubStore) StudentRoomID(context.Context, string) (*string, error) { return s.roomID, nil }
func (s *stubStore) ListAttendance(context.Context, string, housing.AttendanceFilter) ([]housing.AttendanceLog, error) {
	return s.attendance, nil
}
func (s *stubStore) GetClearance(context.Context, string) (*housing.Clearance, error) {
	return s.clearance, nil
}
func (s *stubStore) ListComplaints(context.Context, string, housing.ComplaintFilter) ([]housing.Complaint, error) {
	return nil, nil
}
func (s *stubStore) InsertComplaint(_ context.Context, c housing.Complaint) (housing.Complaint, error) {
	c.ID = "c-1"
	c.CreatedAt = time.Now()
	return c, nil
}
func (s *stubStore) ListMaintenance(context.Context, string, housing.MaintenanceFilter) ([]housing.MaintenanceRequest, error) {
	return nil, nil
}
func (s *stubStore) InsertMaintenance(_ context.Context, m housing.MaintenanceRequest) (housing.MaintenanceRequest, error) {
	m.ID = "m-1"
	m.CreatedAt = time.Now()
	return m, nil
}
func (s *stubStore) ListPermissions(context.Context, string, housing.PermissionFilter) ([]housing.PermissionRequest, error) {
	return nil, nil
}
func (s *stubStore) InsertPermission(_ context.Context, p housing.PermissionRequest) (housing.PermissionRequest, error) {
	p.ID = "p-1"
	p.CreatedAt = time.Now()
	return p, nil
}
func (s *stubStore) ListActivities(context.Context, string, int) ([]housing.ActivityView, error) {
	return nil, nil
}
func (s *stubStore) GetActivity(context.Context, string) (*housing.Activity, error) {
	return s.activity, nil
}
func (s *stubStore) CountSubscriptions(context.Context, string) (int, error) {
	return s.subCount, nil
}
func (s *stubStore) HasSubscription(context.Context, string, string) (bool, error) {
	return s.hasSub, nil
}
func (s *stubStore) InsertSubscription(_ context.Context, sub housing.Subscription) (housing.Subscription, error) {
	sub.ID = "s-1"
	sub.CreatedAt = time.Now()
	return sub, nil
}
func (s *stubStore) ListAnnouncements(context.Context, housing.AnnouncementFilter) ([]housing.Announcement, error) {
	return nil, nil
}

func setupAPI(t *testing.T, store housing.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := housing.NewService(store)
	h := httpapi.New(svc, nil, httpapi.TokenConfig{
		Issuer:     testIssuer,
		SigningKey: testKey,
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
	r := gin.New()
	h.Register(r)
	return r
}

func studentToken(t *testing.T) string {
	t.Helper()
	pair, err := auth.Issue("st-1", "student", testIssuer, testKey, time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return pair.AccessToken
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return w, parsed
}

func TestRequiresBearer(t *testing.T) {
	r := setupAPI(t, &stubStore{})
	paths := []string{"/student/profile", "/student/attendance", "/services/complaints", "/activities", "/announcements"}
	for _, path := range paths {
		w, body := doJSON(t, r, http.MethodGet, path, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status %d, want 401", path, w.Code)
		}
		if body["success"] != false {
			t.Errorf("GET %s: success = %v, want false", path, body["success"])
		}
	}

	w, _ := doJSON(t, r, http.MethodGet, "/student/profile", "garbage-token", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: status %d, want 401", w.Code)
	}
}

func TestProfileWithRoomIsIdempotent(t *testing.T) {
	email := "sara@university.edu"
	store := &stubStore{profile: &housing.StudentProfile{
		ID:         "st-1",
		NationalID: "29901011234567",
		FullName:   "Sara Ahmed",
		Email:      &email,
		Room:       &housing.Room{ID: "r-1", RoomNumber: "B-204", Building: "B", Floor: 2, Capacity: 3},
		CreatedAt:  time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
	}}
	r := setupAPI(t, store)
	token := studentToken(t)

	w1, body := doJSON(t, r, http.MethodGet, "/student/profile", token, "")
	if w1.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %v", w1.Code, body)
	}
	data := body["data"].(map[string]any)
	if data["full_name"] != "Sara Ahmed" {
		t.Errorf("full_name = %v", data["full_name"])
	}
	room, ok := data["room"].(map[string]any)
	if !ok {
		t.Fatalf("room not nested: %v", data["room"])
	}
	if room["room_number"] != "B-204" {
		t.Errorf("room_number = %v", room["room_number"])
	}

	w2, _ := doJSON(t, r, http.MethodGet, "/student/profile", token, "")
	if w1.Body.String() != w2.Body.String() {
		t.Error("repeated GET /student/profile returned different bodies")
	}
}

func TestProfileWithoutRoom(t *testing.T) {
	store := &stubStore{profile: &housing.StudentProfile{
		ID: "st-1", NationalID: "299", FullName: "Omar",
	}}
	r := setupAPI(t, store)

	w, body := doJSON(t, r, http.MethodGet, "/student/profile", studentToken(t), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	data := body["data"].(map[string]any)
	if data["room"] != nil {
		t.Errorf("room = %v, want null", data["room"])
	}
}

func TestAttendanceEmptyList(t *testing.T) {
	r := setupAPI(t, &stubStore{})

	w, body := doJSON(t, r, http.MethodGet, "/student/attendance?date=2025-01-25", studentToken(t), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	if body["count"] != float64(0) {
		t.Errorf("count = %v, want 0", body["count"])
	}
	if items, ok := body["data"].([]any); !ok || len(items) != 0 {
		t.Errorf("data = %v, want empty array", body["data"])
	}
}

func TestAttendanceBadDate(t *testing.T) {
	r := setupAPI(t, &stubStore{})

	w, body := doJSON(t, r, http.MethodGet, "/student/attendance?date=25-01-2025", studentToken(t), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	if body["success"] != false || body["message"] == nil {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestCreateComplaintScenario(t *testing.T) {
	r := setupAPI(t, &stubStore{})

	w, body := doJSON(t, r, http.MethodPost, "/services/complaints", studentToken(t),
		`{"title":"Noise Complaint","description":"Loud music after midnight","type":"general"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201: %v", w.Code, body)
	}
	data := body["data"].(map[string]any)
	if data["status"] != "pending" {
		t.Errorf("status = %v, want pending", data["status"])
	}
	if data["is_secret"] != false {
		t.Errorf("is_secret = %v, want false", data["is_secret"])
	}
	if _, present := data["admin_reply"]; present {
		t.Errorf("admin_reply present on creation: %v", data["admin_reply"])
	}
}

func TestCreateComplaintValidation(t *testing.T) {
	r := setupAPI(t, &stubStore{})

	w, body := doJSON(t, r, http.MethodPost, "/services/complaints", studentToken(t),
		`{"title":"No description","type":"general"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "description") {
		t.Errorf("message %q does not name the missing field", msg)
	}
}

func TestMaintenanceWithoutRoom(t *testing.T) {
	r := setupAPI(t, &stubStore{})
	token := studentToken(t)

	w, _ := doJSON(t, r, http.MethodGet, "/services/maintenance", token, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("list: status %d, want 404", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodPost, "/services/maintenance", token,
		`{"category":"plumbing","description":"leaking tap"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("create: status %d, want 404", w.Code)
	}
}

func TestCreatePermissionBadRange(t *testing.T) {
	r := setupAPI(t, &stubStore{})

	w, body := doJSON(t, r, http.MethodPost, "/services/permissions", studentToken(t),
		`{"type":"travel","start_date":"2100-01-10","end_date":"2100-01-05","reason":"trip"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400: %v", w.Code, body)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/services/permissions", studentToken(t),
		`{"type":"travel","start_date":"2020-01-05","end_date":"2100-01-10","reason":"trip"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("past start_date: status %d, want 400", w.Code)
	}

	w, body = doJSON(t, r, http.MethodPost, "/services/permissions", studentToken(t),
		`{"type":"travel","start_date":"2100-01-05","end_date":"2100-01-10","reason":"trip"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("valid range: status %d, want 201: %v", w.Code, body)
	}
	data := body["data"].(map[string]any)
	if data["status"] != "pending" {
		t.Errorf("status = %v, want pending", data["status"])
	}
}

func TestSubscribeOutcomes(t *testing.T) {
	token := studentToken(t)

	t.Run("activity not found", func(t *testing.T) {
		r := setupAPI(t, &stubStore{})
		w, _ := doJSON(t, r, http.MethodPost, "/activities/subscribe", token, `{"activity_id":"a-missing"}`)
		if w.Code != http.StatusNotFound {
			t.Errorf("status %d, want 404", w.Code)
		}
	})

	t.Run("full", func(t *testing.T) {
		r := setupAPI(t, &stubStore{
			activity: &housing.Activity{ID: "a-1", MaxParticipants: 50},
			subCount: 50,
		})
		w, body := doJSON(t, r, http.MethodPost, "/activities/subscribe", token, `{"activity_id":"a-1"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", w.Code)
		}
		msg, _ := body["message"].(string)
		if !strings.Contains(msg, "50/50") {
			t.Errorf("message %q does not report counts", msg)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		r := setupAPI(t, &stubStore{
			activity: &housing.Activity{ID: "a-1", MaxParticipants: 50},
			subCount: 10,
			hasSub:   true,
		})
		w, _ := doJSON(t, r, http.MethodPost, "/activities/subscribe", token, `{"activity_id":"a-1"}`)
		if w.Code != http.StatusConflict {
			t.Errorf("status %d, want 409", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		r := setupAPI(t, &stubStore{
			activity: &housing.Activity{ID: "a-1", MaxParticipants: 50},
			subCount: 49,
		})
		w, body := doJSON(t, r, http.MethodPost, "/activities/subscribe", token, `{"activity_id":"a-1"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("status %d, want 201: %v", w.Code, body)
		}
	})
}

func TestLoginFlow(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	store := &stubStore{
		user: &housing.User{
			ID: "u-1", NationalID: "29901011234567", PasswordHash: string(hash),
			Role: "student", StudentID: "st-1",
		},
		profile: &housing.StudentProfile{ID: "st-1", NationalID: "29901011234567", FullName: "Sara Ahmed"},
	}
	r := setupAPI(t, store)

	w, body := doJSON(t, r, http.MethodPost, "/auth/login", "",
		`{"national_id":"29901011234567","password":"s3cret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status %d: %v", w.Code, body)
	}
	data := body["data"].(map[string]any)
	token, _ := data["access_token"].(string)
	if token == "" {
		t.Fatal("no access token issued")
	}

	w, _ = doJSON(t, r, http.MethodGet, "/student/profile", token, "")
	if w.Code != http.StatusOK {
		t.Errorf("profile with issued token: status %d, want 200", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/auth/login", "",
		`{"national_id":"29901011234567","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status %d, want 401", w.Code)
	}
}

func TestClearanceView(t *testing.T) {
	r := setupAPI(t, &stubStore{clearance: &housing.Clearance{
		StudentID: "st-1", RoomCheckPassed: true,
	}})

	w, body := doJSON(t, r, http.MethodGet, "/student/clearance", studentToken(t), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	data := body["data"].(map[string]any)
	if data["percentage"] != float64(50) || data["status"] != "pending" {
		t.Errorf("got %v%% %v, want 50%% pending", data["percentage"], data["status"])
	}
}
