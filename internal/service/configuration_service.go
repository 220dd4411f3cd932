package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
	"github.com/noah-isme/pal-tracker-api/pkg/validation"
)

const (
	defaultMaxCourseSelections = 3
	defaultMinGPAForTutor      = 3.0
)

type configurationRepository interface {
	List(ctx context.Context) ([]models.Configuration, error)
	Get(ctx context.Context, key string) (*models.Configuration, error)
	Upsert(ctx context.Context, cfg *models.Configuration) error
}

type configurationAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type allowedConfiguration struct {
	Description string
	Default     string
	Check       func(value string) error
}

var allowedConfigurations = map[string]allowedConfiguration{
	models.ConfigMaxCourseSelections: {
		Description: "Maximum number of courses a student may select during registration",
		Default:     strconv.Itoa(defaultMaxCourseSelections),
		Check: func(value string) error {
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	},
	models.ConfigMinGPAForTutor: {
		Description: "Minimum GPA required to register as a PAL tutor",
		Default:     strconv.FormatFloat(defaultMinGPAForTutor, 'f', 1, 64),
		Check: func(value string) error {
			gpa, err := strconv.ParseFloat(value, 64)
			if err != nil || gpa < 0 || gpa > 4 {
				return fmt.Errorf("must be a number between 0 and 4")
			}
			return nil
		},
	},
}

// ConfigurationService manages the key/value settings store.
type ConfigurationService struct {
	repo      configurationRepository
	audit     configurationAuditLogger
	validator *validation.Validator
	logger    *zap.Logger
}

// NewConfigurationService constructs a ConfigurationService.
func NewConfigurationService(repo configurationRepository, audit configurationAuditLogger, validate *validation.Validator, logger *zap.Logger) *ConfigurationService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigurationService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns every known setting, filling in defaults for keys never stored.
func (s *ConfigurationService) List(ctx context.Context) ([]models.Configuration, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list settings")
	}
	byKey := make(map[string]models.Configuration, len(stored))
	for _, cfg := range stored {
		byKey[cfg.Key] = cfg
	}
	for key, allowed := range allowedConfigurations {
		if _, ok := byKey[key]; !ok {
			byKey[key] = models.Configuration{Key: key, Value: allowed.Default, Description: allowed.Description}
		}
	}

	result := make([]models.Configuration, 0, len(byKey))
	for _, cfg := range byKey {
		result = append(result, cfg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

// Update validates and stores a single setting.
func (s *ConfigurationService) Update(ctx context.Context, key string, req models.UpdateConfigurationRequest, actorID string, meta models.RequestMeta) (*models.Configuration, error) {
	allowed, ok := allowedConfigurations[key]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown setting %q", key))
	}
	if err := s.validator.Check(req, "invalid setting payload"); err != nil {
		return nil, err
	}
	value := strings.TrimSpace(req.Value)
	if err := allowed.Check(value); err != nil {
		return nil, appErrors.Validation("value", fmt.Sprintf("%s %s", key, err.Error()))
	}

	var previous string
	if current, err := s.repo.Get(ctx, key); err == nil {
		previous = current.Value
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load setting")
	}

	cfg := &models.Configuration{Key: key, Value: value, Description: req.Description}
	if cfg.Description == "" && previous == "" {
		cfg.Description = allowed.Description
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update setting")
	}

	if s.audit != nil {
		oldPayload, _ := json.Marshal(map[string]string{"value": previous})
		newPayload, _ := json.Marshal(map[string]string{"value": value})
		entry := &models.AuditLog{
			Action:     models.AuditActionSettingUpdate,
			Resource:   "configs",
			ResourceID: &cfg.Key,
			OldValues:  oldPayload,
			NewValues:  newPayload,
			IPAddress:  meta.IP,
			UserAgent:  meta.UserAgent,
		}
		if actorID != "" {
			entry.UserID = &actorID
		}
		if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
			s.logger.Warn("failed to record setting audit log", zap.String("key", key), zap.Error(err))
		}
	}
	return cfg, nil
}

// MaxCourseSelections is the student wizard's course cap.
func (s *ConfigurationService) MaxCourseSelections(ctx context.Context) int {
	return intSetting(ctx, s.repo, s.logger, models.ConfigMaxCourseSelections, defaultMaxCourseSelections)
}

// MinGPAForTutor is the tutor wizard's GPA threshold.
func (s *ConfigurationService) MinGPAForTutor(ctx context.Context) float64 {
	return floatSetting(ctx, s.repo, s.logger, models.ConfigMinGPAForTutor, defaultMinGPAForTutor)
}

type settingReader interface {
	Get(ctx context.Context, key string) (*models.Configuration, error)
}

// intSetting reads key as an integer. Missing or malformed values fall back.
func intSetting(ctx context.Context, repo settingReader, logger *zap.Logger, key string, fallback int) int {
	raw, ok := rawSetting(ctx, repo, logger, key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		logger.Warn("malformed integer setting", zap.String("key", key), zap.String("value", raw))
		return fallback
	}
	return n
}

func floatSetting(ctx context.Context, repo settingReader, logger *zap.Logger, key string, fallback float64) float64 {
	raw, ok := rawSetting(ctx, repo, logger, key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("malformed decimal setting", zap.String("key", key), zap.String("value", raw))
		return fallback
	}
	return f
}

func rawSetting(ctx context.Context, repo settingReader, logger *zap.Logger, key string) (string, bool) {
	if repo == nil {
		return "", false
	}
	cfg, err := repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warn("failed to read setting", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return strings.TrimSpace(cfg.Value), true
}
