package models

// StudentStep1Request is the personal information step of student registration.
type StudentStep1Request struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,notblank,max=150"`
	LastName  string `json:"last_name" validate:"required,notblank,max=150"`
	StudentID string `json:"student_id" validate:"required,notblank,max=20"`
}

// ProgramSelectionRequest picks a program and one of its years.
type ProgramSelectionRequest struct {
	ProgramID string `json:"program_id" validate:"required"`
	YearID    string `json:"year_id" validate:"required"`
}

// CourseSelectionRequest is the final step of both wizards.
type CourseSelectionRequest struct {
	CourseIDs []string `json:"course_ids" validate:"dive,required"`
}

// TutorStep1Request captures interest and PAL engagement answers.
type TutorStep1Request struct {
	Name              string        `json:"name" validate:"required,notblank,max=200"`
	StudentID         string        `json:"student_id" validate:"required,notblank,max=50"`
	Email             string        `json:"email" validate:"required,email"`
	Mobile            string        `json:"mobile" validate:"omitempty,mobile8"`
	EngagedInPAL      PALEngagement `json:"engaged_in_pal" validate:"required,oneof=tutor learner both solo"`
	WantsTraining     bool          `json:"wants_training"`
	WantsCertificate  bool          `json:"wants_certificate"`
	Suggestions       string        `json:"suggestions" validate:"max=2000"`
	InterestedAsTutor bool          `json:"interested_as_tutor"`
}

// TutorStep2Request captures academic details and teaching preferences.
type TutorStep2Request struct {
	ProgramID          string   `json:"program_id" validate:"required"`
	YearID             string   `json:"year_id" validate:"required"`
	GPA                *float64 `json:"gpa" validate:"omitempty,min=0,max=4"`
	Motivation         string   `json:"motivation" validate:"required,notblank,max=2000"`
	ConfidenceRating   int      `json:"confidence_rating" validate:"required,min=1,max=5"`
	PreferredDays      []string `json:"preferred_days" validate:"dive,max=20"`
	PreferredTimes     []string `json:"preferred_times" validate:"dive,max=40"`
	PreferredMode      string   `json:"preferred_mode" validate:"omitempty,oneof=On-campus Online Hybrid"`
	MaxSessionsPerWeek *int     `json:"max_sessions_per_week" validate:"omitempty,min=1"`
	Consent            bool     `json:"consent"`
}

// WizardStepResult reports the outcome of a wizard step.
type WizardStepResult struct {
	WizardID  string `json:"wizard_id,omitempty"`
	Step      int    `json:"step"`
	NextStep  int    `json:"next_step,omitempty"`
	Completed bool   `json:"completed"`
	Declined  bool   `json:"declined,omitempty"`
	Message   string `json:"message,omitempty"`
	// RecordID is the student profile or tutor application created on commit.
	RecordID string `json:"record_id,omitempty"`
}

// CourseOptions lists the courses selectable in the final wizard step.
type CourseOptions struct {
	WizardID      string   `json:"wizard_id"`
	ProgramID     string   `json:"program_id"`
	YearNumber    int      `json:"year_number"`
	Courses       []Course `json:"courses"`
	MaxSelections int      `json:"max_selections"`
	ExactCount    bool     `json:"exact_count"`
}
