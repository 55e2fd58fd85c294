package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/revista/internal/errors"
	"github.com/abrezinsky/revista/internal/lifecycle"
	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/internal/models"
	"github.com/abrezinsky/revista/internal/repository"
	"github.com/abrezinsky/revista/internal/schema"
	"github.com/abrezinsky/revista/pkg/registry"
	"github.com/abrezinsky/revista/pkg/scoring"
)

// InspectionServiceRepository defines the repository methods needed by InspectionService
type InspectionServiceRepository interface {
	repository.InspectionRepository
	repository.VehicleRepository
	repository.SettingsRepository
}

// InspectionService scores inspections and drives them through their lifecycle
type InspectionService struct {
	log         logger.Logger
	repo        InspectionServiceRepository
	schemas     *schema.Store
	catalog     CatalogServicer
	client      registry.Client
	broadcaster Broadcaster

	// serializes read-modify-write cycles on inspections
	mu sync.Mutex
}

// NewInspectionService creates a new InspectionService
func NewInspectionService(log logger.Logger, repo InspectionServiceRepository, schemas *schema.Store, catalog CatalogServicer, client registry.Client) *InspectionService {
	return &InspectionService{
		log:     log,
		repo:    repo,
		schemas: schemas,
		catalog: catalog,
		client:  client,
	}
}

// InspectionDetail is an inspection with its live scoring result and available actions
type InspectionDetail struct {
	models.Inspection
	Result     scoring.Result    `json:"result"`
	Label      string            `json:"classification_label"`
	Normalized float64           `json:"normalized"`
	Actions    []lifecycle.Event `json:"actions"`
}

// Verification is the public view of an inspection looked up by folio
type Verification struct {
	Folio               string                 `json:"folio"`
	Plate               string                 `json:"plate"`
	ConcessionNumber    string                 `json:"concession_number"`
	Classification      scoring.Classification `json:"classification"`
	ClassificationLabel string                 `json:"classification_label"`
	Status              string                 `json:"status"`
	Score               int                    `json:"score"`
	MaxScore            int                    `json:"max_score"`
	SubmittedAt         string                 `json:"submitted_at,omitempty"`
	CertifiedAt         string                 `json:"certified_at,omitempty"`
	Valid               bool                   `json:"valid"`
}

// SetBroadcaster sets the broadcaster for live score and status updates
func (s *InspectionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Schema combines the current essential schema file with the scored catalog.
// A catalog that clashes with the essential checks is a Conflict.
func (s *InspectionService) Schema(ctx context.Context) (scoring.Schema, error) {
	scored, err := s.catalog.Characteristics(ctx)
	if err != nil {
		return scoring.Schema{}, err
	}
	file := s.schemas.Current()
	sc := file.With(scored)
	if err := sc.Validate(); err != nil {
		return scoring.Schema{}, errors.Conflictf("catalog does not fit schema %q: %v", file.Name, err)
	}
	return sc, nil
}

// Preview scores an answer set without storing anything
func (s *InspectionService) Preview(ctx context.Context, answers scoring.AnswerSet) (*scoring.Result, error) {
	sc, err := s.Schema(ctx)
	if err != nil {
		return nil, err
	}
	result := sc.Score(answers)
	return &result, nil
}

// Create opens a draft inspection for a vehicle. A vehicle has at most one open draft.
func (s *InspectionService) Create(ctx context.Context, vehicleID int, inspector string) (*InspectionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.GetVehicle(ctx, vehicleID); err == repository.ErrNotFound {
		return nil, errors.NotFoundf("vehicle %d not found", vehicleID)
	} else if err != nil {
		return nil, err
	}

	drafts, err := s.repo.ListInspections(ctx, repository.InspectionFilter{VehicleID: vehicleID, Status: models.StatusDraft, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(drafts) > 0 {
		return nil, errors.Conflictf("vehicle %d already has an open inspection (%s)", vehicleID, drafts[0].Folio)
	}

	inspector = strings.TrimSpace(inspector)
	if inspector == "" {
		inspector, err = s.repo.GetSetting(ctx, settingDefaultInspector)
		if err != nil && err != repository.ErrNotFound {
			return nil, err
		}
	}
	if inspector == "" {
		return nil, errors.Validation("inspector is required")
	}

	sc, err := s.Schema(ctx)
	if err != nil {
		return nil, err
	}

	i := &models.Inspection{
		Folio:         newFolio(time.Now()),
		VehicleID:     vehicleID,
		Inspector:     inspector,
		Status:        models.StatusDraft,
		SchemaVersion: s.schemas.Current().Version,
	}
	result := sc.Score(i.Answers)
	i.ApplyResult(result)

	if _, err := s.repo.CreateInspection(ctx, i); err != nil {
		return nil, fmt.Errorf("failed to create inspection: %w", err)
	}
	s.log.Info("Inspection opened", "id", i.ID, "folio", i.Folio, "vehicle_id", vehicleID, "inspector", inspector)

	created, err := s.repo.GetInspection(ctx, i.ID)
	if err != nil {
		return nil, err
	}
	return newDetail(*created, result), nil
}

// newFolio builds a public folio such as RV-2026-1F3A9C0B
func newFolio(t time.Time) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("RV-%d-%s", t.Year(), strings.ToUpper(id[:8]))
}

// Get returns an inspection. Drafts are rescored against the current schema;
// other statuses report the result frozen at submission.
func (s *InspectionService) Get(ctx context.Context, id int) (*InspectionDetail, error) {
	i, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, *i), nil
}

// List returns inspections matching filter, newest first
func (s *InspectionService) List(ctx context.Context, filter repository.InspectionFilter) ([]models.Inspection, error) {
	return s.repo.ListInspections(ctx, filter)
}

func (s *InspectionService) load(ctx context.Context, id int) (*models.Inspection, error) {
	i, err := s.repo.GetInspection(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("inspection %d not found", id)
	}
	return i, err
}

func (s *InspectionService) detail(ctx context.Context, i models.Inspection) *InspectionDetail {
	if i.Status == models.StatusDraft {
		if sc, err := s.Schema(ctx); err == nil {
			return newDetail(i, sc.Score(i.Answers))
		}
	}
	return newDetail(i, storedResult(i))
}

func newDetail(i models.Inspection, result scoring.Result) *InspectionDetail {
	return &InspectionDetail{
		Inspection: i,
		Result:     result,
		Label:      result.Classification.Label(),
		Normalized: result.Normalized(),
		Actions:    lifecycle.Allowed(i.Status, result),
	}
}

// storedResult rebuilds the result persisted on the inspection
func storedResult(i models.Inspection) scoring.Result {
	return scoring.Result{
		Rejected:       i.Rejected,
		Score:          i.Score,
		MaxScore:       i.MaxScore,
		Classification: i.Classification,
		ClassID:        i.ClassificationID,
		Complete:       i.Complete,
	}
}

func requireDraft(i *models.Inspection) error {
	if i.Status != models.StatusDraft {
		return errors.Conflictf("inspection %s is %s and can no longer be edited", i.Folio, i.Status)
	}
	return nil
}

// validateUpdates checks every update against the schema before any is applied
func validateUpdates(sc scoring.Schema, updates []scoring.Update) error {
	essential := make(map[string]scoring.EssentialCheck, len(sc.Essential))
	for _, c := range sc.Essential {
		essential[c.Key] = c
	}
	scored := make(map[string]bool, len(sc.Scored))
	for _, c := range sc.Scored {
		scored[c.Key] = true
	}

	for _, u := range updates {
		switch u.Op {
		case scoring.OpReset:
			continue
		case scoring.OpSet, scoring.OpClear:
		default:
			return errors.Validationf("unknown update op %q", u.Op)
		}

		check, isEssential := essential[u.Key]
		if !isEssential && !scored[u.Key] {
			return errors.Validationf("unknown field %q", u.Key)
		}
		if u.Op == scoring.OpClear {
			continue
		}

		switch {
		case isEssential && check.Kind == scoring.KindBoolean:
			if !u.Value.IsBool() {
				return errors.Validationf("field %q expects true or false", u.Key)
			}
		case isEssential && check.Kind == scoring.KindGradedSelect:
			if u.Value.IsBool() || !scoring.Grade(u.Value.String()).Valid() {
				return errors.Validationf("field %q expects one of unset, good, bad, absent", u.Key)
			}
		default:
			if u.Value.IsBool() {
				return errors.Validationf("field %q expects an option id", u.Key)
			}
		}
	}
	return nil
}

// ApplyUpdates folds answer updates into a draft inspection and rescores it
func (s *InspectionService) ApplyUpdates(ctx context.Context, id int, updates []scoring.Update) (*InspectionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireDraft(i); err != nil {
		return nil, err
	}

	sc, err := s.Schema(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateUpdates(sc, updates); err != nil {
		return nil, err
	}

	i.Answers = i.Answers.ApplyAll(updates...)
	result := sc.Score(i.Answers)
	i.ApplyResult(result)
	i.SchemaVersion = s.schemas.Current().Version

	if err := s.repo.UpdateInspection(ctx, i); err != nil {
		return nil, fmt.Errorf("failed to save inspection: %w", err)
	}

	s.log.Debug("Inspection rescored", "id", i.ID, "score", result.Score, "classification", result.Classification)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastInspectionScored(i.ID, i.Folio, result)
	}
	return newDetail(*i, result), nil
}

// SetObservations replaces the free-text observations of a draft inspection
func (s *InspectionService) SetObservations(ctx context.Context, id int, observations string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := requireDraft(i); err != nil {
		return err
	}
	i.Observations = strings.TrimSpace(observations)
	return s.repo.UpdateInspection(ctx, i)
}

// Submit freezes a decided draft. The submitted state is saved before it is
// forwarded to the registry, so nothing is forwarded that is not stored locally.
// A registry failure reverts the inspection to draft.
func (s *InspectionService) Submit(ctx context.Context, id int) (*InspectionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireDraft(i); err != nil {
		return nil, err
	}

	sc, err := s.Schema(ctx)
	if err != nil {
		return nil, err
	}
	result := sc.Score(i.Answers)

	next, err := lifecycle.Transition(i.Status, result, lifecycle.EventSubmit)
	if err != nil {
		return nil, errors.Validationf("inspection %s is incomplete: %s unanswered", i.Folio, strings.Join(result.Unanswered, ", "))
	}

	i.ApplyResult(result)
	i.SchemaVersion = s.schemas.Current().Version
	i.Status = next
	i.SubmittedAt = time.Now().UTC().Format(time.RFC3339)

	if err := s.repo.UpdateInspection(ctx, i); err != nil {
		return nil, fmt.Errorf("failed to save inspection: %w", err)
	}

	if err := s.forward(ctx, i); err != nil {
		i.Status = models.StatusDraft
		i.SubmittedAt = ""
		if rerr := s.repo.UpdateInspection(ctx, i); rerr != nil {
			s.log.Error("Failed to revert inspection to draft", "folio", i.Folio, "error", rerr)
		}
		return nil, err
	}

	s.log.Info("Inspection submitted", "id", i.ID, "folio", i.Folio, "classification", result.Classification, "score", result.Score)
	s.broadcastStatus(i)
	return newDetail(*i, result), nil
}

// forward sends the submission to the registry if one is configured
func (s *InspectionService) forward(ctx context.Context, i *models.Inspection) error {
	err := configureRegistry(ctx, s.repo, s.client)
	if err == ErrRegistryNotSet {
		return nil
	}
	if err != nil {
		return err
	}

	sub := registry.Submission{
		Folio:            i.Folio,
		Plate:            i.Plate,
		ConcessionNumber: i.ConcessionNumber,
		Inspector:        i.Inspector,
		ClassificationID: i.ClassificationID,
		Classification:   string(i.Classification),
		Score:            i.Score,
		MaxScore:         i.MaxScore,
		Answers:          submissionAnswers(i.Answers),
		Observations:     i.Observations,
		SubmittedAt:      i.SubmittedAt,
		Extra:            map[string]string{"schema_version": fmt.Sprintf("%d", i.SchemaVersion)},
	}
	if v, err := s.repo.GetVehicle(ctx, i.VehicleID); err == nil {
		sub.Serial = v.Serial
	}

	receipt, err := s.client.SubmitInspection(ctx, sub)
	if err != nil {
		s.log.Error("Registry rejected submission", "folio", i.Folio, "error", err)
		return errors.Upstream(err)
	}
	s.log.Info("Registry accepted submission", "folio", i.Folio, "receipt", receipt.ID.String(), "status", receipt.Status)
	return nil
}

func submissionAnswers(answers scoring.AnswerSet) map[string]any {
	out := make(map[string]any, answers.Len())
	for k, a := range answers.Map() {
		if a.IsBool() {
			out[k] = a.True()
		} else {
			out[k] = a.String()
		}
	}
	return out
}

// transition fires event on a non-draft inspection using its stored result
func (s *InspectionService) transition(ctx context.Context, id int, event lifecycle.Event, mutate func(i *models.Inspection)) (*InspectionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	result := storedResult(*i)
	if i.Status == models.StatusDraft {
		if sc, err := s.Schema(ctx); err == nil {
			result = sc.Score(i.Answers)
		}
	}

	next, err := lifecycle.Transition(i.Status, result, event)
	if err != nil {
		return nil, errors.Conflict(err.Error())
	}
	i.Status = next
	if mutate != nil {
		mutate(i)
	}

	if err := s.repo.UpdateInspection(ctx, i); err != nil {
		return nil, fmt.Errorf("failed to save inspection: %w", err)
	}

	s.log.Info("Inspection status changed", "id", i.ID, "folio", i.Folio, "event", event, "status", next)
	s.broadcastStatus(i)
	return newDetail(*i, result), nil
}

// Certify marks a submitted, non-rejected inspection as certified
func (s *InspectionService) Certify(ctx context.Context, id int) (*InspectionDetail, error) {
	return s.transition(ctx, id, lifecycle.EventCertify, func(i *models.Inspection) {
		i.CertifiedAt = time.Now().UTC().Format(time.RFC3339)
	})
}

// Reopen returns a submitted inspection to draft
func (s *InspectionService) Reopen(ctx context.Context, id int) (*InspectionDetail, error) {
	return s.transition(ctx, id, lifecycle.EventReopen, func(i *models.Inspection) {
		i.SubmittedAt = ""
	})
}

// Cancel voids a draft or submitted inspection
func (s *InspectionService) Cancel(ctx context.Context, id int) (*InspectionDetail, error) {
	return s.transition(ctx, id, lifecycle.EventCancel, nil)
}

func (s *InspectionService) broadcastStatus(i *models.Inspection) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastInspectionStatus(i.ID, i.Folio, i.Status)
	}
}

// Verify returns the public record behind a sticker folio. Drafts are not public.
func (s *InspectionService) Verify(ctx context.Context, folio string) (*Verification, error) {
	folio = strings.ToUpper(strings.TrimSpace(folio))
	i, err := s.repo.GetInspectionByFolio(ctx, folio)
	if err == repository.ErrNotFound || (err == nil && i.Status == models.StatusDraft) {
		return nil, errors.NotFoundf("folio %s not found", folio)
	}
	if err != nil {
		return nil, err
	}

	return &Verification{
		Folio:               i.Folio,
		Plate:               i.Plate,
		ConcessionNumber:    i.ConcessionNumber,
		Classification:      i.Classification,
		ClassificationLabel: i.Classification.Label(),
		Status:              i.Status,
		Score:               i.Score,
		MaxScore:            i.MaxScore,
		SubmittedAt:         i.SubmittedAt,
		CertifiedAt:         i.CertifiedAt,
		Valid:               i.Status == models.StatusCertified,
	}, nil
}

// StickerQR renders a PNG QR code pointing at the public verification page
func (s *InspectionService) StickerQR(ctx context.Context, id int) ([]byte, error) {
	i, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if i.Status != models.StatusSubmitted && i.Status != models.StatusCertified {
		return nil, errors.Conflictf("inspection %s is %s and has no sticker", i.Folio, i.Status)
	}

	base, err := s.repo.GetSetting(ctx, settingBaseURL)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}
	if base == "" {
		return nil, ErrBaseURLNotSet
	}

	png, err := qrcode.Encode(VerifyURL(base, i.Folio), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

// VerifyURL is the public verification link printed on a sticker
func VerifyURL(base, folio string) string {
	return strings.TrimRight(base, "/") + "/verify/" + folio
}

// Stats returns dashboard counters plus the tally per classification
func (s *InspectionService) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := s.repo.GetDashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	byClass, err := s.repo.CountInspectionsByClassification(ctx)
	if err != nil {
		return nil, err
	}
	stats["by_classification"] = byClass
	return stats, nil
}
