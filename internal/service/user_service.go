package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
	"github.com/noah-isme/pal-tracker-api/pkg/validation"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	StudentIDTaken(ctx context.Context, studentID, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User, student *models.Student) error
	Update(ctx context.Context, user *models.User, student *models.Student) error
	Delete(ctx context.Context, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type studentProfileReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
}

type academicLookup interface {
	FindProgram(ctx context.Context, id string) (*models.Program, error)
	FindYear(ctx context.Context, id string) (*models.Year, error)
	Catalog(ctx context.Context) (map[string]models.ProgramCatalog, error)
}

// UserImportConfig tunes the bulk import workflow.
type UserImportConfig struct {
	DefaultPassword string
	SampleErrors    int
}

// UserService handles user management workflows.
type UserService struct {
	repo      userRepository
	students  studentProfileReader
	academic  academicLookup
	validator *validation.Validator
	logger    *zap.Logger
	metrics   *MetricsService
	imports   UserImportConfig
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, students studentProfileReader, academic academicLookup, validate *validation.Validator, logger *zap.Logger, metrics *MetricsService, imports UserImportConfig) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if imports.DefaultPassword == "" {
		imports.DefaultPassword = defaultImportPassword
	}
	if imports.SampleErrors <= 0 {
		imports.SampleErrors = 10
	}
	return &UserService{
		repo:      repo,
		students:  students,
		academic:  academic,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		imports:   imports,
	}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a user together with the student profile when one exists.
func (s *UserService) Get(ctx context.Context, id string) (*models.UserDetail, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.UserDetail{User: *user}
	profile, err := s.students.FindByUserID(ctx, id)
	switch {
	case err == nil:
		detail.Student = &profile.Student
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	return detail, nil
}

// Create adds a new user. Students get their academic profile in the same transaction.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest, actorID string, meta models.RequestMeta) (*models.UserDetail, error) {
	if err := s.validator.Check(req, "invalid create user payload"); err != nil {
		return nil, err
	}

	studentID := strings.TrimSpace(req.StudentID)
	if req.Role == models.RoleStudent && studentID == "" {
		return nil, appErrors.Validation("student_id", studentIDRequiredMessage)
	}
	if err := s.ensureUnique(ctx, req.Email, studentID, ""); err != nil {
		return nil, err
	}

	var student *models.Student
	if req.Role == models.RoleStudent {
		var err error
		if student, err = s.studentProfile(ctx, req.ProgramID, req.YearID); err != nil {
			return nil, err
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(passwordHash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         req.Role,
		StudentID:    optionalString(studentID),
		Active:       true,
	}
	if err := s.repo.Create(ctx, user, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	newPayload, _ := json.Marshal(map[string]interface{}{"id": user.ID, "email": user.Email, "role": user.Role})
	s.audit(ctx, actorID, models.AuditActionUserCreate, user.ID, nil, newPayload, meta)

	return &models.UserDetail{User: *user, Student: student}, nil
}

// Update modifies the user attributes and upserts the student profile for students.
func (s *UserService) Update(ctx context.Context, id string, req models.UpdateUserRequest, actorID string, meta models.RequestMeta) (*models.UserDetail, error) {
	if err := s.validator.Check(req, "invalid update user payload"); err != nil {
		return nil, err
	}

	studentID := strings.TrimSpace(req.StudentID)
	if req.Role == models.RoleStudent && studentID == "" {
		return nil, appErrors.Validation("student_id", studentIDRequiredMessage)
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, req.Email, studentID, id); err != nil {
		return nil, err
	}

	var student *models.Student
	if req.Role == models.RoleStudent && (req.ProgramID != "" || req.YearID != "") {
		if student, err = s.studentProfile(ctx, req.ProgramID, req.YearID); err != nil {
			return nil, err
		}
	}

	oldPayload, _ := json.Marshal(map[string]interface{}{"email": user.Email, "role": user.Role, "active": user.Active})

	user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Role = req.Role
	user.StudentID = optionalString(studentID)
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.repo.Update(ctx, user, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	newPayload, _ := json.Marshal(map[string]interface{}{"email": user.Email, "role": user.Role, "active": user.Active})
	s.audit(ctx, actorID, models.AuditActionUserUpdate, user.ID, oldPayload, newPayload, meta)

	return &models.UserDetail{User: *user, Student: student}, nil
}

// Delete removes a user. Administrators cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, id string, actorID string, meta models.RequestMeta) error {
	if id == actorID {
		return appErrors.Clone(appErrors.ErrForbidden, "You cannot delete your own account!")
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}

	oldPayload, _ := json.Marshal(map[string]interface{}{"email": user.Email, "role": user.Role})
	s.audit(ctx, actorID, models.AuditActionUserDelete, user.ID, oldPayload, nil, meta)
	return nil
}

func (s *UserService) load(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func (s *UserService) ensureUnique(ctx context.Context, email, studentID, excludeID string) error {
	taken, err := s.repo.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if taken {
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrConflict, "email already exists"),
			map[string]string{"email": "A user with this email already exists."})
	}
	if studentID == "" {
		return nil
	}
	taken, err = s.repo.StudentIDTaken(ctx, studentID, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student id uniqueness")
	}
	if taken {
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrConflict, "student id already exists"),
			map[string]string{"student_id": "A user with this student ID already exists."})
	}
	return nil
}

// studentProfile resolves program and year ids into a profile, checking the year belongs to the program.
func (s *UserService) studentProfile(ctx context.Context, programID, yearID string) (*models.Student, error) {
	if programID == "" {
		return nil, appErrors.Validation("program_id", "Program is required for Student role")
	}
	if yearID == "" {
		return nil, appErrors.Validation("year_id", "Year is required for Student role")
	}
	if _, err := s.academic.FindProgram(ctx, programID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Validation("program_id", "Select a valid program")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	year, err := s.academic.FindYear(ctx, yearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Validation("year_id", "Select a valid year")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year")
	}
	if year.ProgramID != programID {
		return nil, appErrors.Validation("year_id", "Year does not belong to the selected program")
	}
	return &models.Student{ProgramID: programID, YearID: yearID}, nil
}

func (s *UserService) audit(ctx context.Context, actorID, action, resourceID string, oldValues, newValues []byte, meta models.RequestMeta) {
	entry := &models.AuditLog{
		Action:     action,
		Resource:   "users",
		ResourceID: optionalString(resourceID),
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record user audit log", zap.String("action", action), zap.Error(err))
	}
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
