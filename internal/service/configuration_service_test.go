package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
)

func TestConfigurationServiceListFillsDefaults(t *testing.T) {
	svc := NewConfigurationService(newFakeSettings(models.ConfigMinGPAForTutor, "3.5"), nil, nil, nil)

	configs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, models.ConfigMaxCourseSelections, configs[0].Key)
	assert.Equal(t, "3", configs[0].Value)
	assert.Equal(t, models.ConfigMinGPAForTutor, configs[1].Key)
	assert.Equal(t, "3.5", configs[1].Value)
}

func TestConfigurationServiceUpdate(t *testing.T) {
	repo := newFakeSettings(models.ConfigMaxCourseSelections, "3")
	audit := &fakeAudit{}
	svc := NewConfigurationService(repo, audit, nil, nil)

	cfg, err := svc.Update(context.Background(), models.ConfigMaxCourseSelections,
		models.UpdateConfigurationRequest{Value: " 5 "}, "admin", models.RequestMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "5", cfg.Value)
	assert.Equal(t, 5, svc.MaxCourseSelections(context.Background()))

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionSettingUpdate, audit.entries[0].Action)
	assert.JSONEq(t, `{"value":"3"}`, string(audit.entries[0].OldValues))
	assert.JSONEq(t, `{"value":"5"}`, string(audit.entries[0].NewValues))
}

func TestConfigurationServiceUpdateRejects(t *testing.T) {
	svc := NewConfigurationService(newFakeSettings(), nil, nil, nil)

	_, err := svc.Update(context.Background(), "unknownKey", models.UpdateConfigurationRequest{Value: "1"}, "admin", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(context.Background(), models.ConfigMaxCourseSelections, models.UpdateConfigurationRequest{Value: "0"}, "admin", models.RequestMeta{})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "value")

	_, err = svc.Update(context.Background(), models.ConfigMinGPAForTutor, models.UpdateConfigurationRequest{Value: "4.5"}, "admin", models.RequestMeta{})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "value")
}

func TestConfigurationServiceMalformedValueFallsBack(t *testing.T) {
	svc := NewConfigurationService(newFakeSettings(
		models.ConfigMaxCourseSelections, "many",
		models.ConfigMinGPAForTutor, "high",
	), nil, nil, nil)

	assert.Equal(t, defaultMaxCourseSelections, svc.MaxCourseSelections(context.Background()))
	assert.Equal(t, defaultMinGPAForTutor, svc.MinGPAForTutor(context.Background()))
}

func TestCatalogServiceYearsBelowOwnYear(t *testing.T) {
	profiles := fakeProfiles{"tutor-1": mdProfile("tutor-1", 3)}
	svc := NewCatalogService(newFakeAcademic(), profiles, nil)

	all, err := svc.Years(context.Background(), "prog-md", "tutor-1", false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	junior, err := svc.Years(context.Background(), "prog-md", "tutor-1", true)
	require.NoError(t, err)
	require.Len(t, junior, 2)
	assert.Equal(t, 2, junior[1].YearNumber)

	other, err := svc.Years(context.Background(), "prog-ns", "tutor-1", true)
	require.NoError(t, err)
	assert.Len(t, other, 2)

	_, err = svc.Years(context.Background(), "prog-law", "tutor-1", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCatalogServiceCourses(t *testing.T) {
	svc := NewCatalogService(newFakeAcademic(), fakeProfiles{}, nil)

	upToTwo, err := svc.Courses(context.Background(), "prog-md", 2)
	require.NoError(t, err)
	assert.Len(t, upToTwo, 3)

	all, err := svc.Courses(context.Background(), "prog-md", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
