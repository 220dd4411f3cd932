package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PAL Tracker API",
        "description": "Peer Assisted Learning registration, session tracking and analytics",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Login and token lifecycle"},
        {"name": "Catalog", "description": "Programs, years and courses"},
        {"name": "Registration", "description": "Student and tutor registration wizards"},
        {"name": "Users", "description": "Account administration and bulk import"},
        {"name": "Settings", "description": "Runtime configuration keys"},
        {"name": "Evaluation Years", "description": "Academic evaluation periods"},
        {"name": "Sessions", "description": "Tutoring sessions"},
        {"name": "Feedback", "description": "Learner feedback on tutors"},
        {"name": "Tutor Applications", "description": "Tutor application review"},
        {"name": "Dashboard", "description": "Role dashboards"},
        {"name": "Analytics", "description": "Program analytics and exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/logout": {
            "post": {"tags": ["Auth"], "summary": "Revoke a refresh token", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/auth/me": {
            "get": {"tags": ["Auth"], "summary": "Current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/programs": {
            "get": {"tags": ["Catalog"], "summary": "List programs", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/programs/{id}/years": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List years of a program",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "below_own_year", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/programs/{id}/courses": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List courses of a program",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "max_year", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/register/student/step1": {
            "post": {
                "tags": ["Registration"],
                "summary": "Student wizard step 1: identity",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "X-Wizard-ID", "in": "header", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentStep1Request"}}
                ],
                "responses": {"200": {"description": "Next step", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/register/student/step2": {
            "post": {
                "tags": ["Registration"],
                "summary": "Student wizard step 2: program and year",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "X-Wizard-ID", "in": "header", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProgramSelectionRequest"}}
                ],
                "responses": {"200": {"description": "Next step"}, "303": {"description": "Wizard state missing, restart at step 1"}}
            }
        },
        "/register/student/step3": {
            "get": {
                "tags": ["Registration"],
                "summary": "Course options for the student wizard",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "X-Wizard-ID", "in": "header", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "303": {"description": "Wizard state missing, restart at step 1"}}
            },
            "post": {
                "tags": ["Registration"],
                "summary": "Student wizard step 3: courses, completes registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "X-Wizard-ID", "in": "header", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseSelectionRequest"}}
                ],
                "responses": {"200": {"description": "Completed"}, "303": {"description": "Wizard state missing, restart at step 1"}}
            }
        },
        "/register/tutor/step1": {
            "post": {
                "tags": ["Registration"],
                "summary": "Tutor wizard step 1: interest",
                "parameters": [
                    {"name": "X-Wizard-ID", "in": "header", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "Next step or declined"}}
            }
        },
        "/register/tutor/step2": {
            "post": {
                "tags": ["Registration"],
                "summary": "Tutor wizard step 2: academics and preferences",
                "parameters": [
                    {"name": "X-Wizard-ID", "in": "header", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "Next step"}, "303": {"description": "Wizard state missing, restart at step 1"}}
            }
        },
        "/register/tutor/step3": {
            "get": {
                "tags": ["Registration"],
                "summary": "Course options for the tutor wizard",
                "parameters": [{"name": "X-Wizard-ID", "in": "header", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "303": {"description": "Wizard state missing, restart at step 1"}}
            },
            "post": {
                "tags": ["Registration"],
                "summary": "Tutor wizard step 3: courses, submits the application",
                "parameters": [
                    {"name": "X-Wizard-ID", "in": "header", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseSelectionRequest"}}
                ],
                "responses": {"200": {"description": "Completed"}, "303": {"description": "Wizard state missing, restart at step 1"}}
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {"tags": ["Users"], "summary": "Create user", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/users/{id}": {
            "get": {"tags": ["Users"], "summary": "Get user", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Users"], "summary": "Update user", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Users"], "summary": "Delete user", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/users/import": {
            "post": {
                "tags": ["Users"],
                "summary": "Bulk import users from a spreadsheet",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [{"name": "file", "in": "formData", "required": true, "type": "file"}],
                "responses": {"200": {"description": "Import summary"}, "413": {"description": "File too large"}}
            }
        },
        "/users/import/template": {
            "get": {"tags": ["Users"], "summary": "Download the import template", "security": [{"BearerAuth": []}], "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "text/csv"], "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["xlsx", "csv"]}], "responses": {"200": {"description": "Workbook"}}}
        },
        "/settings": {
            "get": {"tags": ["Settings"], "summary": "List settings", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/settings/{key}": {
            "put": {
                "tags": ["Settings"],
                "summary": "Update a setting",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateConfigurationRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/evaluation-years": {
            "get": {"tags": ["Evaluation Years"], "summary": "List evaluation years", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["Evaluation Years"],
                "summary": "Create evaluation year",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EvaluationYearRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/evaluation-years/active": {
            "get": {"tags": ["Evaluation Years"], "summary": "Active evaluation year", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/evaluation-years/{id}": {
            "get": {"tags": ["Evaluation Years"], "summary": "Get evaluation year", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Evaluation Years"], "summary": "Update evaluation year", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Evaluation Years"], "summary": "Delete evaluation year", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/evaluation-years/{id}/activate": {
            "post": {"tags": ["Evaluation Years"], "summary": "Make an evaluation year the active one", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Log a tutoring session",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/sessions/mine": {
            "get": {"tags": ["Sessions"], "summary": "Sessions as tutor or learner", "security": [{"BearerAuth": []}], "parameters": [{"name": "limit", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}}}
        },
        "/feedback": {
            "post": {
                "tags": ["Feedback"],
                "summary": "Submit feedback about a tutor",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitFeedbackRequest"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Feedback already submitted for this session"}}
            }
        },
        "/feedback/tutors": {
            "get": {"tags": ["Feedback"], "summary": "Tutors the learner may rate", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/tutor-applications": {
            "get": {
                "tags": ["Tutor Applications"],
                "summary": "List tutor applications",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["Pending", "Approved", "Rejected"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tutor-applications/{id}/status": {
            "patch": {"tags": ["Tutor Applications"], "summary": "Change application status", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard/admin": {
            "get": {"tags": ["Dashboard"], "summary": "Administrator totals", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard/me": {
            "get": {"tags": ["Dashboard"], "summary": "Personal dashboard", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/analytics": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Analytics dashboard",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "program_id", "in": "query", "type": "string"},
                    {"name": "evaluation_year_id", "in": "query", "type": "string"},
                    {"name": "start_date", "in": "query", "type": "string", "format": "date"},
                    {"name": "end_date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/analytics/leaderboard": {
            "get": {"tags": ["Analytics"], "summary": "Tutor and course leaderboard", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/analytics/export/excel": {
            "get": {"tags": ["Analytics"], "summary": "Export analytics workbook", "security": [{"BearerAuth": []}], "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "Workbook"}}}
        },
        "/analytics/export/pdf": {
            "get": {"tags": ["Analytics"], "summary": "Export analytics report", "security": [{"BearerAuth": []}], "produces": ["application/pdf"], "responses": {"200": {"description": "PDF report"}}}
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}},
            "required": ["email", "password"]
        },
        "RefreshRequest": {
            "type": "object",
            "properties": {"refresh_token": {"type": "string"}},
            "required": ["refresh_token"]
        },
        "StudentStep1Request": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "student_id": {"type": "string"}
            },
            "required": ["email", "first_name", "last_name", "student_id"]
        },
        "ProgramSelectionRequest": {
            "type": "object",
            "properties": {"program_id": {"type": "string"}, "year_id": {"type": "string"}},
            "required": ["program_id", "year_id"]
        },
        "CourseSelectionRequest": {
            "type": "object",
            "properties": {"course_ids": {"type": "array", "items": {"type": "string"}}}
        },
        "UpdateConfigurationRequest": {
            "type": "object",
            "properties": {"value": {"type": "string"}, "description": {"type": "string"}},
            "required": ["value"]
        },
        "EvaluationYearRequest": {
            "type": "object",
            "properties": {
                "label": {"type": "string", "example": "2025-26"},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"},
                "is_active": {"type": "boolean"},
                "program_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["label", "start_date", "end_date"]
        },
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "learner_id": {"type": "string"},
                "course_id": {"type": "string"},
                "evaluation_year_id": {"type": "string"},
                "session_date": {"type": "string", "format": "date-time"},
                "duration": {"type": "integer"},
                "status": {"type": "string", "enum": ["Scheduled", "Completed", "Cancelled"]},
                "notes": {"type": "string"}
            },
            "required": ["learner_id", "course_id", "session_date", "duration"]
        },
        "SubmitFeedbackRequest": {
            "type": "object",
            "properties": {
                "program_id": {"type": "string"},
                "year_id": {"type": "string"},
                "tutor_id": {"type": "string"},
                "session_id": {"type": "string"},
                "topic": {"type": "string"},
                "duration": {"type": "string", "enum": ["less_30", "30_60", "60_90", "more_90"]},
                "explanation_rating": {"type": "integer"},
                "usefulness_rating": {"type": "integer"},
                "attend_again": {"type": "boolean"},
                "well_organized": {"type": "boolean"},
                "comments": {"type": "string"}
            },
            "required": ["program_id", "year_id", "tutor_id", "topic", "duration", "explanation_rating", "usefulness_rating", "attend_again", "well_organized"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
