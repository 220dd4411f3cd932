package models

import "time"

// ApplicationStatus is the moderation state of a tutor application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationApproved ApplicationStatus = "Approved"
	ApplicationRejected ApplicationStatus = "Rejected"
)

// PALEngagement answers "have you engaged in PAL before".
type PALEngagement string

const (
	EngagedAsTutor   PALEngagement = "tutor"
	EngagedAsLearner PALEngagement = "learner"
	EngagedAsBoth    PALEngagement = "both"
	EngagedSolo      PALEngagement = "solo"
)

// TutorApplication records a tutor registration.
type TutorApplication struct {
	ID                 string            `db:"id" json:"id"`
	UserID             string            `db:"user_id" json:"user_id"`
	Mobile             string            `db:"mobile" json:"mobile"`
	EngagedInPAL       PALEngagement     `db:"engaged_in_pal" json:"engaged_in_pal"`
	WantsTraining      bool              `db:"wants_training" json:"wants_training"`
	WantsCertificate   bool              `db:"wants_certificate" json:"wants_certificate"`
	Suggestions        string            `db:"suggestions" json:"suggestions"`
	InterestedAsTutor  bool              `db:"interested_as_tutor" json:"interested_as_tutor"`
	ProgramID          string            `db:"program_id" json:"program_id"`
	YearID             string            `db:"year_id" json:"year_id"`
	GPA                *float64          `db:"gpa" json:"gpa,omitempty"`
	Motivation         string            `db:"motivation" json:"motivation"`
	ConfidenceRating   int               `db:"confidence_rating" json:"confidence_rating"`
	PreferredDays      string            `db:"preferred_days" json:"preferred_days"`
	PreferredTimes     string            `db:"preferred_times" json:"preferred_times"`
	PreferredMode      string            `db:"preferred_mode" json:"preferred_mode"`
	MaxSessionsPerWeek *int              `db:"max_sessions_per_week" json:"max_sessions_per_week,omitempty"`
	Consent            bool              `db:"consent" json:"consent"`
	Status             ApplicationStatus `db:"status" json:"status"`
	TrainingCompleted  bool              `db:"training_completed" json:"training_completed"`
	CertificationURL   string            `db:"certification_url" json:"certification_url"`
	CourseIDs          []string          `db:"-" json:"course_ids"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}

// TutorApplicationView joins an application with applicant and program labels.
type TutorApplicationView struct {
	TutorApplication
	ApplicantName  string `db:"applicant_name" json:"applicant_name"`
	ApplicantEmail string `db:"applicant_email" json:"applicant_email"`
	StudentID      string `db:"student_id" json:"student_id"`
	ProgramCode    string `db:"program_code" json:"program_code"`
	YearNumber     int    `db:"year_number" json:"year_number"`
}

// TutorApplicationFilter narrows application listings.
type TutorApplicationFilter struct {
	Status   *ApplicationStatus
	Page     int
	PageSize int
}

// UpdateApplicationStatusRequest moderates an application.
type UpdateApplicationStatusRequest struct {
	Status ApplicationStatus `json:"status" validate:"required,oneof=Pending Approved Rejected"`
}

// EligibleTutor is an approved tutor offered to learners on the feedback form.
type EligibleTutor struct {
	UserID    string `db:"user_id" json:"user_id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}
