package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
	"github.com/noah-isme/pal-tracker-api/pkg/export"
	"github.com/noah-isme/pal-tracker-api/pkg/sheet"
)

const (
	defaultImportPassword = "changeme123"

	studentIDRequiredMessage = "Student ID is required for Student role"

	// ImportTemplateFilename is the download name of the blank import workbook.
	ImportTemplateFilename = "bulk_upload_template.xlsx"
	// ImportTemplateCSVFilename is the CSV flavour of the same template.
	ImportTemplateCSVFilename = "bulk_upload_template.csv"
)

// ImportColumns are the recognised header names of an import file.
var ImportColumns = []string{"email", "password", "first_name", "last_name", "role", "student_id", "program", "year"}

// programYearLimits caps year numbers for the programs of this curriculum.
var programYearLimits = map[string]struct {
	name string
	max  int
}{
	"MD": {name: "MD", max: 6},
	"NS": {name: "Nursing", max: 4},
}

// ImportCandidate is a row that passed structural validation.
type ImportCandidate struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.UserRole
	StudentID string
	ProgramID string
	YearID    string
}

// ImportRowResult is the tagged outcome of validating one row: either a
// candidate or the reason it was rejected.
type ImportRowResult struct {
	Line      int
	Candidate *ImportCandidate
	Reason    string
}

// OK reports whether the row may be applied.
func (r ImportRowResult) OK() bool {
	return r.Reason == ""
}

// Message renders the rejection reason with its spreadsheet line number.
func (r ImportRowResult) Message() string {
	return fmt.Sprintf("Row %d: %s", r.Line, r.Reason)
}

// ValidateImportRow checks the structure of row index against the catalog
// without touching storage. Line numbers account for the header row.
func ValidateImportRow(index int, row sheet.Row, catalog map[string]models.ProgramCatalog, defaultPassword string) ImportRowResult {
	result := ImportRowResult{Line: index + 2}
	reject := func(format string, args ...interface{}) ImportRowResult {
		result.Reason = fmt.Sprintf(format, args...)
		return result
	}

	email := strings.ToLower(row.Get("email"))
	firstName := row.Get("first_name")
	lastName := row.Get("last_name")
	role := models.UserRole(row.Get("role"))
	studentID := row.Get("student_id")

	if email == "" || firstName == "" || lastName == "" || role == "" {
		return reject("Missing required fields (email, first_name, last_name, role)")
	}
	if !role.Valid() {
		names := make([]string, len(models.Roles))
		for i, r := range models.Roles {
			names[i] = string(r)
		}
		return reject("Invalid role %q. Must be one of: %s", role, strings.Join(names, ", "))
	}

	password := row.Get("password")
	if password == "" {
		password = defaultPassword
	}
	candidate := &ImportCandidate{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		StudentID: studentID,
	}

	if role == models.RoleStudent {
		programCode := strings.ToUpper(row.Get("program"))
		rawYear := row.Get("year")
		if studentID == "" {
			return reject(studentIDRequiredMessage)
		}
		if programCode == "" {
			return reject("Program is required for Student role")
		}
		if rawYear == "" {
			return reject("Year is required for Student role")
		}

		entry, ok := catalog[programCode]
		if !ok {
			return reject("Invalid program code %q. Must be MD or NS", programCode)
		}
		yearNumber, ok := parseYearNumber(rawYear)
		if !ok {
			return reject("Invalid year number %q for program %s", rawYear, programCode)
		}
		if limit, known := programYearLimits[programCode]; known && (yearNumber < 1 || yearNumber > limit.max) {
			return reject("Year for %s must be between 1 and %d", limit.name, limit.max)
		}
		year, ok := entry.Years[yearNumber]
		if !ok {
			return reject("Invalid year number %q for program %s", rawYear, programCode)
		}
		candidate.ProgramID = entry.Program.ID
		candidate.YearID = year.ID
	}

	result.Candidate = candidate
	return result
}

// parseYearNumber accepts "3" as well as spreadsheet renderings such as "3.0".
func parseYearNumber(raw string) (int, bool) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Import reads an uploaded sheet and creates one user per valid row. A failing
// row never aborts the batch.
func (s *UserService) Import(ctx context.Context, file io.Reader, filename, actorID string, meta models.RequestMeta) (*models.ImportResult, error) {
	rows, err := sheet.Read(file, filename)
	if err != nil {
		return nil, appErrors.Validation("file", err.Error())
	}
	catalog, err := s.academic.Catalog(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}

	result := &models.ImportResult{Errors: []string{}}
	fail := func(message string) {
		result.ErrorCount++
		if len(result.Errors) < s.imports.SampleErrors {
			result.Errors = append(result.Errors, message)
		}
	}

	seenEmails := make(map[string]struct{})
	seenStudentIDs := make(map[string]struct{})
	for i, row := range rows {
		if row.Blank() {
			continue
		}
		outcome := ValidateImportRow(i, row, catalog, s.imports.DefaultPassword)
		if !outcome.OK() {
			fail(outcome.Message())
			continue
		}
		if err := s.applyImportRow(ctx, outcome.Candidate, seenEmails, seenStudentIDs); err != nil {
			fail(fmt.Sprintf("Row %d: %s", outcome.Line, err.Error()))
			continue
		}
		result.SuccessCount++
	}

	s.metrics.RecordImportRows(result.SuccessCount, result.ErrorCount)
	payload, _ := json.Marshal(map[string]interface{}{
		"file":          filename,
		"success_count": result.SuccessCount,
		"error_count":   result.ErrorCount,
	})
	s.audit(ctx, actorID, models.AuditActionUserImport, "", nil, payload, meta)
	s.logger.Info("user import finished",
		zap.String("file", filename),
		zap.Int("success_count", result.SuccessCount),
		zap.Int("error_count", result.ErrorCount),
	)
	return result, nil
}

func (s *UserService) applyImportRow(ctx context.Context, c *ImportCandidate, seenEmails, seenStudentIDs map[string]struct{}) error {
	if _, dup := seenEmails[c.Email]; dup {
		return fmt.Errorf("Email %s already exists", c.Email)
	}
	taken, err := s.repo.EmailTaken(ctx, c.Email, "")
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return fmt.Errorf("Email %s already exists", c.Email)
	}

	if c.StudentID != "" {
		if _, dup := seenStudentIDs[c.StudentID]; dup {
			return fmt.Errorf("Student ID %s already exists", c.StudentID)
		}
		taken, err := s.repo.StudentIDTaken(ctx, c.StudentID, "")
		if err != nil {
			return fmt.Errorf("failed to check student id: %w", err)
		}
		if taken {
			return fmt.Errorf("Student ID %s already exists", c.StudentID)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        c.Email,
		PasswordHash: string(hash),
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Role:         c.Role,
		StudentID:    optionalString(c.StudentID),
		Active:       true,
	}
	var student *models.Student
	if c.Role == models.RoleStudent {
		student = &models.Student{ProgramID: c.ProgramID, YearID: c.YearID}
	}
	if err := s.repo.Create(ctx, user, student); err != nil {
		s.logger.Warn("import row failed", zap.String("email", c.Email), zap.Error(err))
		return fmt.Errorf("failed to create user")
	}

	seenEmails[c.Email] = struct{}{}
	if c.StudentID != "" {
		seenStudentIDs[c.StudentID] = struct{}{}
	}
	return nil
}

// ImportTemplate renders the import headers with sample rows. format is
// "csv" or "xlsx"; anything else falls back to the workbook.
func (s *UserService) ImportTemplate(format string) (*ExportFile, error) {
	samples := [][]string{
		{"student1@agu.edu", "password123", "John", "Doe", "Student", "STU001", "MD", "1"},
		{"student2@agu.edu", "password123", "Jane", "Smith", "Student", "STU002", "NS", "2"},
		{"tutor1@agu.edu", "password123", "Bob", "Johnson", "Tutor", "TUT001", "", ""},
	}

	if strings.EqualFold(format, "csv") {
		exporter := export.NewCSVExporter()
		data := export.Dataset{Headers: ImportColumns}
		for _, sample := range samples {
			row := make(map[string]string, len(ImportColumns))
			for i, column := range ImportColumns {
				row[column] = sample[i]
			}
			data.Rows = append(data.Rows, row)
		}
		payload, err := exporter.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render import template")
		}
		return &ExportFile{Filename: ImportTemplateCSVFilename, ContentType: exporter.ContentType(), Payload: payload}, nil
	}

	rows := make([][]interface{}, 0, len(samples))
	for _, sample := range samples {
		row := make([]interface{}, len(sample))
		for i, cell := range sample {
			row[i] = cell
		}
		rows = append(rows, row)
	}
	exporter := export.NewXLSXExporter(export.DefaultHeaderStyle)
	payload, err := exporter.Render([]export.Sheet{{Name: "Users", Headers: ImportColumns, Rows: rows, ColumnWidth: 18}})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render import template")
	}
	return &ExportFile{Filename: ImportTemplateFilename, ContentType: exporter.ContentType(), Payload: payload}, nil
}
