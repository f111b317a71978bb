package processing

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/agencyos/meeting-scribe/errors"
	"github.com/agencyos/meeting-scribe/internal/domain/entities"
	"github.com/agencyos/meeting-scribe/pkg/ai"
)

var pathPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_/.]+$`)

// Validator checks the AI collaborator's raw output against the
// ProcessingResult schema and its cross-field invariants.
type Validator struct {
	v      *validator.Validate
	logger *zap.Logger
}

// NewValidator creates an output validator
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{v: validator.New(), logger: logger}
}

// Validate parses raw model text into a ProcessingResult. When the result
// schema does not fit, the declared error-response schema is tried so a
// structured refusal is reported distinctly from malformed output.
// Cross-field violations are returned as warnings, never as errors.
func (pv *Validator) Validate(raw string) (*entities.ProcessingResult, []string, error) {
	cleaned := ai.ExtractJSON(raw)

	var result entities.ProcessingResult
	schemaErr := json.Unmarshal([]byte(cleaned), &result)
	if schemaErr == nil {
		schemaErr = pv.v.Struct(&result)
	}

	if schemaErr != nil {
		if declined, ok := pv.parseErrorResponse(cleaned); ok {
			return nil, nil, apperrors.ErrAIDeclined(declined.ErrorType, declined.ErrorMessage)
		}
		return nil, nil, apperrors.ErrMalformedAIOutput(schemaErr)
	}

	warnings := pv.crossChecks(&result)
	if len(warnings) > 0 && pv.logger != nil {
		pv.logger.Warn("AI output cross-field violations",
			zap.Strings("warnings", warnings),
		)
	}
	return &result, warnings, nil
}

// parseErrorResponse tries the declared refusal schema
func (pv *Validator) parseErrorResponse(cleaned string) (*entities.AIErrorResponse, bool) {
	var resp entities.AIErrorResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, false
	}
	if err := pv.v.Struct(&resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// crossChecks collects the invariant violations the schema cannot express
func (pv *Validator) crossChecks(result *entities.ProcessingResult) []string {
	var warnings []string

	for i, update := range result.FileUpdates {
		if !strings.HasPrefix(update.Path, entities.PathPrefix) {
			warnings = append(warnings, fmt.Sprintf("fileUpdates[%d]: path %q lacks the %q prefix", i, update.Path, entities.PathPrefix))
		}
		if !pathPattern.MatchString(update.Path) {
			warnings = append(warnings, fmt.Sprintf("fileUpdates[%d]: path %q contains invalid characters", i, update.Path))
		}
		if update.Action == entities.ActionUpdateSection && strings.TrimSpace(update.Section) == "" {
			warnings = append(warnings, fmt.Sprintf("fileUpdates[%d]: update_section without a section name", i))
		}
	}

	for i, item := range result.ActionItems {
		if entities.PriorityMarkers[item.Priority] != item.PriorityMarker {
			warnings = append(warnings, fmt.Sprintf("actionItems[%d]: marker %q does not match priority %q", i, item.PriorityMarker, item.Priority))
		}
	}

	return warnings
}
