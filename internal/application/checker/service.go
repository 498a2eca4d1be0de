// Package checker is the application service behind the HTTP API, the CLI
// and the asynchronous worker. It parses mhchem input, grades answers and
// balances equations, and fans results out to the verdict cache, the
// submission history, the event stream and the report archive when those
// are configured.
package checker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ChemCheck/internal/domain/chem"
	"github.com/turtacn/ChemCheck/internal/domain/mhchem"
	"github.com/turtacn/ChemCheck/internal/domain/submission"
	"github.com/turtacn/ChemCheck/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemCheck/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemCheck/internal/infrastructure/storage/minio"
	"github.com/turtacn/ChemCheck/pkg/errors"
	types "github.com/turtacn/ChemCheck/pkg/types/chem"
	"github.com/turtacn/ChemCheck/pkg/types/common"
)

// Service defines the checker application operations.
type Service interface {
	Parse(ctx context.Context, text string) (*types.StatementView, error)
	Check(ctx context.Context, req *types.CheckRequest) (*types.CheckResultView, error)
	Balance(ctx context.Context, text string) (*types.BalanceView, error)
	CheckBatch(ctx context.Context, req *types.BatchCheckRequest) (*types.BatchView, error)
	// Submit queues a check for the worker and returns its request ID.
	Submit(ctx context.Context, req *types.CheckRequest) (string, error)
	History(ctx context.Context, limit int) ([]*types.SubmissionView, error)
	Submission(ctx context.Context, id string) (*types.SubmissionView, error)
	Stats(ctx context.Context) (*types.SubmissionStats, error)
}

// VerdictCache is satisfied by redis.Cache.
type VerdictCache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader redis.Loader) (bool, error)
}

// EventPublisher is satisfied by kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, msg *common.ProducerMessage) error
}

// ReportArchive is satisfied by minio.ReportStore.
type ReportArchive interface {
	PutJSON(ctx context.Context, id string, report interface{}) (*minio.StoredReport, error)
}

// Config bounds the work accepted per call.
type Config struct {
	MaxInputLength   int
	MaxBatchSize     int
	BatchConcurrency int
	HistoryLimit     int
	VerdictTTL       time.Duration
	// Source names this process in published events.
	Source string
}

func (c *Config) applyDefaults() {
	if c.MaxInputLength <= 0 {
		c.MaxInputLength = mhchem.DefaultMaxLength
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = 100
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = 8
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = submission.DefaultListLimit
	}
	if c.Source == "" {
		c.Source = "chemcheck"
	}
}

type Option func(*serviceImpl)

func WithCache(c VerdictCache) Option {
	return func(s *serviceImpl) { s.cache = c }
}

func WithRepository(r submission.Repository) Option {
	return func(s *serviceImpl) { s.repo = r }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *serviceImpl) { s.events = p }
}

func WithReportArchive(a ReportArchive) Option {
	return func(s *serviceImpl) { s.reports = a }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *serviceImpl) {
		if m != nil {
			s.metrics = m
		}
	}
}

type serviceImpl struct {
	cfg     Config
	parser  *mhchem.Parser
	cache   VerdictCache
	repo    submission.Repository
	events  EventPublisher
	reports ReportArchive
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

// NewService builds the checker. Every collaborator is optional; without
// one the matching side effect is skipped.
func NewService(cfg Config, logger logging.Logger, opts ...Option) Service {
	cfg.applyDefaults()
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &serviceImpl{
		cfg:     cfg,
		parser:  mhchem.NewParser(mhchem.WithMaxLength(cfg.MaxInputLength)),
		metrics: prometheus.NewNoopAppMetrics(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) parse(text string) (*mhchem.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.ErrCodeChemParseFailed, "input is empty")
	}
	res, err := s.parser.Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeChemParseFailed, "failed to parse chemistry input").WithDetail(err.Error())
	}
	for _, side := range []string{"", "left", "right"} {
		n := 0
		for _, is := range res.Issues {
			if is.Side == side {
				n++
			}
		}
		s.metrics.RecordParseErrors(sideLabel(side), n)
	}
	return res, nil
}

func sideLabel(side string) string {
	if side == "" {
		return "expression"
	}
	return side
}

func (s *serviceImpl) Parse(ctx context.Context, text string) (*types.StatementView, error) {
	res, err := s.parse(text)
	if err != nil {
		return nil, err
	}
	return StatementView(text, res), nil
}

// verdictRecord is the cached part of a check result.
type verdictRecord struct {
	Accepted         bool     `json:"accepted"`
	Reason           string   `json:"reason"`
	Message          string   `json:"message"`
	WrongTerms       []string `json:"wrong_terms,omitempty"`
	WeaklyEquivalent bool     `json:"weakly_equivalent"`
	SameCoefficients bool     `json:"same_coefficients"`
	SameStates       bool     `json:"same_states"`
	SameArrow        bool     `json:"same_arrow"`
}

func recordOf(v chem.Verdict) verdictRecord {
	return verdictRecord{
		Accepted:         v.Accepted,
		Reason:           string(v.Reason),
		Message:          v.Message(),
		WrongTerms:       renderTerms(v.WrongTerms),
		WeaklyEquivalent: v.WeaklyEquivalent,
		SameCoefficients: v.SameCoefficients,
		SameStates:       v.SameStates,
		SameArrow:        v.SameArrow,
	}
}

// VerdictKeyPrefix starts every cached verdict key.
const VerdictKeyPrefix = "verdict:"

// VerdictKey identifies a target/answer pair by their canonical renderings.
func VerdictKey(target, test chem.Statement) string {
	h := sha256.New()
	for _, st := range []chem.Statement{target, test} {
		h.Write([]byte(st.Kind().String()))
		h.Write([]byte{0})
		h.Write([]byte(st.String()))
		h.Write([]byte{0})
	}
	return VerdictKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (s *serviceImpl) Check(ctx context.Context, req *types.CheckRequest) (*types.CheckResultView, error) {
	start := time.Now()
	if req == nil {
		return nil, errors.InvalidParam("check request is required")
	}

	target, err := s.parse(req.Target)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "target cannot be parsed").WithDetail(err.Error())
	}
	if target.Statement.ContainsError() {
		return nil, errors.InvalidParam("target contains unparseable terms").WithDetail(target.Statement.String())
	}

	var (
		rec    verdictRecord
		cached bool
		kind   = target.Statement.Kind()
	)
	test, err := s.parse(req.Test)
	if err != nil {
		// The answer is the student's, so an unreadable one is a verdict,
		// not a request error.
		rec = recordOf(chem.Verdict{Reason: chem.ReasonContainsError})
	} else {
		rec, cached, err = s.verdict(ctx, target.Statement, test.Statement)
		if err != nil {
			return nil, err
		}
	}

	sub := submission.NewSubmission(req.Target, req.Test, kind.String(), rec.Accepted, rec.Reason, rec.WrongTerms)
	sub.RequestID = req.RequestID
	s.persist(ctx, sub)

	view := &types.CheckResultView{
		SubmissionID:     sub.ID.String(),
		Accepted:         rec.Accepted,
		Reason:           rec.Reason,
		Message:          rec.Message,
		WrongTerms:       rec.WrongTerms,
		Target:           req.Target,
		Test:             req.Test,
		WeaklyEquivalent: rec.WeaklyEquivalent,
		SameCoefficients: rec.SameCoefficients,
		SameStates:       rec.SameStates,
		SameArrow:        rec.SameArrow,
		Cached:           cached,
	}
	s.publishCompleted(ctx, req.RequestID, view)

	s.metrics.RecordCheck(kind.String(), rec.Reason, rec.Accepted, time.Since(start))
	s.logger.WithContext(ctx).Debug("answer checked",
		logging.String("submission_id", view.SubmissionID),
		logging.String("reason", rec.Reason),
		logging.Bool("cached", cached))
	return view, nil
}

func (s *serviceImpl) verdict(ctx context.Context, target, test chem.Statement) (verdictRecord, bool, error) {
	load := func(context.Context) (interface{}, error) {
		return recordOf(chem.Check(target, test)), nil
	}
	if s.cache == nil {
		v, _ := load(ctx)
		return v.(verdictRecord), false, nil
	}

	var rec verdictRecord
	hit, err := s.cache.GetOrSet(ctx, VerdictKey(target, test), &rec, s.cfg.VerdictTTL, load)
	if err != nil {
		return verdictRecord{}, false, err
	}
	s.metrics.RecordCache("verdict", hit)
	return rec, hit, nil
}

func (s *serviceImpl) persist(ctx context.Context, sub *submission.Submission) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		s.metrics.RecordError(errors.GetCode(err).String())
		s.logger.WithContext(ctx).Warn("failed to store submission",
			logging.String("submission_id", sub.ID.String()),
			logging.Err(err))
	}
}

func (s *serviceImpl) publishCompleted(ctx context.Context, requestID string, v *types.CheckResultView) {
	if s.events == nil {
		return
	}
	err := s.publish(ctx, kafka.TopicCheckCompleted, kafka.EventCheckCompleted, requestID, v.SubmissionID,
		types.CheckCompletedEvent{
			RequestID:    requestID,
			SubmissionID: v.SubmissionID,
			Accepted:     v.Accepted,
			Reason:       v.Reason,
			WrongTerms:   v.WrongTerms,
		})
	if err != nil {
		s.logger.WithContext(ctx).Warn("failed to publish check result",
			logging.String("submission_id", v.SubmissionID),
			logging.Err(err))
	}
}

func (s *serviceImpl) publish(ctx context.Context, topic, eventType, requestID, key string, payload interface{}) error {
	env, err := kafka.NewEventEnvelope(eventType, s.cfg.Source, payload)
	if err != nil {
		return err
	}
	env.RequestID = requestID
	msg, err := env.ToMessage(topic, key)
	if err != nil {
		return err
	}
	err = s.events.Publish(ctx, msg)
	s.metrics.RecordEvent(topic, err)
	return err
}

func (s *serviceImpl) Submit(ctx context.Context, req *types.CheckRequest) (string, error) {
	if s.events == nil {
		return "", errors.New(errors.ErrCodeServiceUnavailable, "asynchronous checks are disabled")
	}
	if req == nil || strings.TrimSpace(req.Target) == "" || strings.TrimSpace(req.Test) == "" {
		return "", errors.InvalidParam("target and test are required")
	}
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	err := s.publish(ctx, kafka.TopicCheckRequested, kafka.EventCheckRequested, requestID, requestID,
		types.CheckRequestedEvent{RequestID: requestID, Target: req.Target, Test: req.Test})
	if err != nil {
		return "", err
	}
	return requestID, nil
}

func (s *serviceImpl) Balance(ctx context.Context, text string) (*types.BalanceView, error) {
	res, err := s.parse(text)
	if err != nil {
		return nil, err
	}
	st := res.Statement
	kind := st.Kind().String()
	if st.ContainsError() {
		s.metrics.RecordBalance(kind, "contains_error")
		return nil, errors.New(errors.ErrCodeChemContainsError, "statement contains unparseable terms").WithDetail(st.String())
	}

	var (
		balanced chem.Statement
		coefs    []int64
		was      bool
	)
	switch eq := st.(type) {
	case *chem.EquationStatement:
		was = eq.IsBalanced()
		if coefs, err = chem.Coefficients(eq); err == nil {
			balanced, err = chem.Balance(eq)
		}
	case *chem.NuclearEquationStatement:
		was = eq.IsBalanced()
		if coefs, err = chem.NuclearCoefficients(eq); err == nil {
			balanced, err = chem.BalanceNuclear(eq)
		}
	default:
		s.metrics.RecordBalance(kind, "not_equation")
		return nil, errors.New(errors.ErrCodeChemNotEquation, "an equation is required").WithDetail(st.String())
	}
	if err != nil {
		s.metrics.RecordBalance(kind, "unbalanceable")
		code := errors.ErrCodeChemUnbalanceable
		if !stderrors.Is(err, chem.ErrMismatchedElements) && !stderrors.Is(err, chem.ErrUnsolvableSystem) && !stderrors.Is(err, chem.ErrNotNuclear) {
			code = errors.ErrCodeInternal
		}
		return nil, errors.Wrap(err, code, "equation cannot be balanced").WithDetail(err.Error())
	}

	s.metrics.RecordBalance(kind, "balanced")
	return &types.BalanceView{
		Kind:         kindOf(st.Kind()),
		Input:        text,
		Balanced:     balanced.String(),
		Coefficients: coefs,
		WasBalanced:  was,
	}, nil
}

func (s *serviceImpl) CheckBatch(ctx context.Context, req *types.BatchCheckRequest) (*types.BatchView, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, errors.InvalidParam("batch has no items")
	}
	if len(req.Items) > s.cfg.MaxBatchSize {
		return nil, errors.New(errors.ErrCodeChemBatchTooLarge, "batch exceeds the configured size").
			WithDetail(fmt.Sprintf("%d items, limit %d", len(req.Items), s.cfg.MaxBatchSize))
	}

	view := &types.BatchView{
		BatchID: uuid.New().String(),
		Total:   len(req.Items),
		Items:   make([]types.BatchItemView, len(req.Items)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i := range req.Items {
		i := i
		g.Go(func() error {
			item := types.BatchItemView{Index: i}
			res, err := s.Check(gctx, &req.Items[i])
			if err != nil {
				item.Error = errorDetail(err)
			} else {
				item.Result = res
			}
			view.Items[i] = item
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "batch check interrupted")
	}

	for _, item := range view.Items {
		switch {
		case item.Error != nil:
			view.Failed++
		case item.Result.Accepted:
			view.Accepted++
		default:
			view.Rejected++
		}
	}
	s.metrics.BatchSize.WithLabelValues().Observe(float64(view.Total))

	if req.Archive && s.reports != nil {
		stored, err := s.reports.PutJSON(ctx, view.BatchID, view)
		if err != nil {
			s.logger.WithContext(ctx).Warn("failed to archive batch report",
				logging.String("batch_id", view.BatchID),
				logging.Err(err))
		} else {
			view.ReportKey = stored.Key
			view.ReportURL = stored.URL
		}
	}
	return view, nil
}

func (s *serviceImpl) History(ctx context.Context, limit int) ([]*types.SubmissionView, error) {
	if s.repo == nil {
		return nil, errHistoryDisabled
	}
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}
	subs, err := s.repo.List(ctx, submission.ListFilter{Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]*types.SubmissionView, len(subs))
	for i, sub := range subs {
		out[i] = submissionView(sub)
	}
	return out, nil
}

func (s *serviceImpl) Submission(ctx context.Context, id string) (*types.SubmissionView, error) {
	if s.repo == nil {
		return nil, errHistoryDisabled
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.InvalidParam("submission id must be a uuid").WithDetail(id)
	}
	sub, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return submissionView(sub), nil
}

func (s *serviceImpl) Stats(ctx context.Context) (*types.SubmissionStats, error) {
	if s.repo == nil {
		return nil, errHistoryDisabled
	}
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &types.SubmissionStats{Total: st.Total, ByReason: st.ByReason}, nil
}

var errHistoryDisabled = errors.New(errors.ErrCodeServiceUnavailable, "submission history is disabled")

func submissionView(s *submission.Submission) *types.SubmissionView {
	return &types.SubmissionView{
		ID:         s.ID.String(),
		Target:     s.Target,
		Test:       s.Test,
		Accepted:   s.Accepted,
		Reason:     s.Reason,
		WrongTerms: s.WrongTerms,
		CreatedAt:  s.CreatedAt,
	}
}
