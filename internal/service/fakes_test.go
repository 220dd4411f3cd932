package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/internal/wizard"
)

// fakeAcademic serves a small MD/NS catalog: MD years 1-3, NS years 1-2.
type fakeAcademic struct {
	programs map[string]models.Program
	years    map[string]models.Year
	courses  []models.Course
	err      error
}

func newFakeAcademic() *fakeAcademic {
	a := &fakeAcademic{
		programs: map[string]models.Program{
			"prog-md": {ID: "prog-md", Code: "MD", Name: "Doctor of Medicine"},
			"prog-ns": {ID: "prog-ns", Code: "NS", Name: "Nursing"},
		},
		years: map[string]models.Year{},
	}
	for n := 1; n <= 3; n++ {
		id := fmt.Sprintf("md-y%d", n)
		a.years[id] = models.Year{ID: id, ProgramID: "prog-md", YearNumber: n, Name: fmt.Sprintf("Year %d", n)}
	}
	for n := 1; n <= 2; n++ {
		id := fmt.Sprintf("ns-y%d", n)
		a.years[id] = models.Year{ID: id, ProgramID: "prog-ns", YearNumber: n, Name: fmt.Sprintf("Year %d", n)}
	}
	a.courses = []models.Course{
		{ID: "md-c1", ProgramID: "prog-md", YearID: "md-y1", YearNumber: 1, Code: "MD101", Name: "Anatomy"},
		{ID: "md-c2", ProgramID: "prog-md", YearID: "md-y1", YearNumber: 1, Code: "MD102", Name: "Physiology"},
		{ID: "md-c3", ProgramID: "prog-md", YearID: "md-y2", YearNumber: 2, Code: "MD201", Name: "Pathology"},
		{ID: "md-c4", ProgramID: "prog-md", YearID: "md-y3", YearNumber: 3, Code: "MD301", Name: "Surgery"},
		{ID: "ns-c1", ProgramID: "prog-ns", YearID: "ns-y1", YearNumber: 1, Code: "NS101", Name: "Nursing Foundations"},
	}
	return a
}

func (a *fakeAcademic) ListPrograms(ctx context.Context) ([]models.Program, error) {
	if a.err != nil {
		return nil, a.err
	}
	programs := make([]models.Program, 0, len(a.programs))
	for _, p := range a.programs {
		programs = append(programs, p)
	}
	sort.Slice(programs, func(i, j int) bool { return programs[i].Code < programs[j].Code })
	return programs, nil
}

func (a *fakeAcademic) FindProgram(ctx context.Context, id string) (*models.Program, error) {
	if a.err != nil {
		return nil, a.err
	}
	p, ok := a.programs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (a *fakeAcademic) FindYear(ctx context.Context, id string) (*models.Year, error) {
	if a.err != nil {
		return nil, a.err
	}
	y, ok := a.years[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &y, nil
}

func (a *fakeAcademic) ListYears(ctx context.Context, programID string, belowYear int) ([]models.Year, error) {
	var years []models.Year
	for _, y := range a.years {
		if y.ProgramID != programID || (belowYear > 0 && y.YearNumber >= belowYear) {
			continue
		}
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i].YearNumber < years[j].YearNumber })
	return years, nil
}

func (a *fakeAcademic) ListVisibleCourses(ctx context.Context, programID string, maxYear int) ([]models.Course, error) {
	if a.err != nil {
		return nil, a.err
	}
	var courses []models.Course
	for _, c := range a.courses {
		if c.ProgramID == programID && c.YearNumber <= maxYear {
			courses = append(courses, c)
		}
	}
	return courses, nil
}

func (a *fakeAcademic) Catalog(ctx context.Context) (map[string]models.ProgramCatalog, error) {
	if a.err != nil {
		return nil, a.err
	}
	catalog := make(map[string]models.ProgramCatalog, len(a.programs))
	for _, p := range a.programs {
		entry := models.ProgramCatalog{Program: p, Years: map[int]models.Year{}}
		for _, y := range a.years {
			if y.ProgramID == p.ID {
				entry.Years[y.YearNumber] = y
			}
		}
		catalog[p.Code] = entry
	}
	return catalog, nil
}

// fakeUserRepo keeps users and student profiles in memory.
type fakeUserRepo struct {
	users     map[string]*models.User
	students  map[string]*models.Student
	auditLogs []*models.AuditLog
	createErr error
	seq       int
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*models.User{}, students: map[string]*models.Student{}}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (r *fakeUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, len(users), nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	for _, u := range r.users {
		if u.ID != excludeID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) StudentIDTaken(ctx context.Context, studentID, excludeID string) (bool, error) {
	for _, u := range r.users {
		if u.ID != excludeID && u.StudentID != nil && *u.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User, student *models.Student) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	copied := *user
	r.users[user.ID] = &copied
	if student != nil {
		student.ID = "student-" + user.ID
		student.UserID = user.ID
		r.students[user.ID] = student
	}
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User, student *models.Student) error {
	if _, ok := r.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *user
	r.users[user.ID] = &copied
	if student != nil {
		student.UserID = user.ID
		r.students[user.ID] = student
	}
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.users, id)
	delete(r.students, id)
	return nil
}

func (r *fakeUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.auditLogs = append(r.auditLogs, log)
	return nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int, error) {
	return len(r.users), nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	n := 0
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// fakeProfiles maps user ids to student profiles.
type fakeProfiles map[string]*models.StudentProfile

func (p fakeProfiles) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	profile, ok := p[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return profile, nil
}

func mdProfile(userID string, yearNumber int) *models.StudentProfile {
	return &models.StudentProfile{
		Student: models.Student{
			ID:        "student-" + userID,
			UserID:    userID,
			ProgramID: "prog-md",
			YearID:    fmt.Sprintf("md-y%d", yearNumber),
		},
		ProgramCode: "MD",
		YearNumber:  yearNumber,
	}
}

// memoryWizardStore round-trips states through JSON like the Redis store does.
type memoryWizardStore struct {
	states map[string][]byte
}

func newMemoryWizardStore() *memoryWizardStore {
	return &memoryWizardStore{states: map[string][]byte{}}
}

func (m *memoryWizardStore) Get(ctx context.Context, id string) (*wizard.State, error) {
	raw, ok := m.states[id]
	if !ok {
		return nil, wizard.ErrNotFound
	}
	var state wizard.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *memoryWizardStore) Save(ctx context.Context, state *wizard.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.states[state.ID] = raw
	return nil
}

func (m *memoryWizardStore) Delete(ctx context.Context, id string) error {
	delete(m.states, id)
	return nil
}

// fakeSettings is a map-backed configuration repository.
type fakeSettings struct {
	values   map[string]string
	upserted []*models.Configuration
}

func newFakeSettings(kv ...string) *fakeSettings {
	s := &fakeSettings{values: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		s.values[kv[i]] = kv[i+1]
	}
	return s
}

func (s *fakeSettings) List(ctx context.Context) ([]models.Configuration, error) {
	configs := make([]models.Configuration, 0, len(s.values))
	for k, v := range s.values {
		configs = append(configs, models.Configuration{Key: k, Value: v})
	}
	return configs, nil
}

func (s *fakeSettings) Get(ctx context.Context, key string) (*models.Configuration, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.Configuration{Key: key, Value: v}, nil
}

func (s *fakeSettings) Upsert(ctx context.Context, cfg *models.Configuration) error {
	s.values[cfg.Key] = cfg.Value
	s.upserted = append(s.upserted, cfg)
	return nil
}

// fakeAudit records audit entries.
type fakeAudit struct {
	entries []*models.AuditLog
}

func (a *fakeAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.entries = append(a.entries, log)
	return nil
}
