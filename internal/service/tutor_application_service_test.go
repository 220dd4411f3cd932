package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
)

type fakeApplications struct {
	apps map[string]*models.TutorApplicationView
}

func (f *fakeApplications) List(ctx context.Context, filter models.TutorApplicationFilter) ([]models.TutorApplicationView, int, error) {
	var out []models.TutorApplicationView
	for _, a := range f.apps {
		if filter.Status == nil || a.Status == *filter.Status {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (f *fakeApplications) FindByID(ctx context.Context, id string) (*models.TutorApplicationView, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (f *fakeApplications) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	a, ok := f.apps[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.Status = status
	return nil
}

func newFakeApplications() *fakeApplications {
	return &fakeApplications{apps: map[string]*models.TutorApplicationView{
		"app-1": {TutorApplication: models.TutorApplication{ID: "app-1", Status: models.ApplicationApproved}},
		"app-2": {TutorApplication: models.TutorApplication{ID: "app-2", Status: models.ApplicationPending}},
	}}
}

func TestTutorApplicationServiceList(t *testing.T) {
	svc := NewTutorApplicationService(newFakeApplications(), nil, nil, nil)

	pending := models.ApplicationPending
	apps, page, err := svc.List(context.Background(), models.TutorApplicationFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "app-2", apps[0].ID)
	assert.Equal(t, 20, page.PageSize)

	bogus := models.ApplicationStatus("Archived")
	_, _, err = svc.List(context.Background(), models.TutorApplicationFilter{Status: &bogus})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "status")
}

func TestTutorApplicationServiceUpdateStatus(t *testing.T) {
	repo := newFakeApplications()
	audit := &fakeAudit{}
	svc := NewTutorApplicationService(repo, audit, nil, nil)

	app, err := svc.UpdateStatus(context.Background(), "app-1", models.UpdateApplicationStatusRequest{Status: models.ApplicationRejected}, "admin", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, app.Status)
	assert.Equal(t, models.ApplicationRejected, repo.apps["app-1"].Status)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionApplicationStatus, audit.entries[0].Action)
	assert.JSONEq(t, `{"status":"Approved"}`, string(audit.entries[0].OldValues))

	_, err = svc.UpdateStatus(context.Background(), "missing", models.UpdateApplicationStatusRequest{Status: models.ApplicationApproved}, "admin", models.RequestMeta{})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateStatus(context.Background(), "app-1", models.UpdateApplicationStatusRequest{Status: "Maybe"}, "admin", models.RequestMeta{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
