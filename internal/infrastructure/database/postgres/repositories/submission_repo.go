package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/turtacn/ChemCheck/internal/domain/submission"
	"github.com/turtacn/ChemCheck/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/pkg/errors"
)

// QueryObserver receives the latency of each repository call.
type QueryObserver func(operation string, elapsed time.Duration)

type postgresSubmissionRepo struct {
	executor queryExecutor
	log      logging.Logger
	observe  QueryObserver
}

const submissionColumns = `id, request_id, target, test, kind, accepted, reason, wrong_terms, created_at`

// NewPostgresSubmissionRepo stores submissions in the check_submissions
// table. observe may be nil.
func NewPostgresSubmissionRepo(conn *postgres.Connection, log logging.Logger, observe QueryObserver) submission.Repository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if observe == nil {
		observe = func(string, time.Duration) {}
	}
	return &postgresSubmissionRepo{executor: conn.DB(), log: log, observe: observe}
}

func (r *postgresSubmissionRepo) track(op string) func() {
	start := time.Now()
	return func() { r.observe(op, time.Since(start)) }
}

func (r *postgresSubmissionRepo) Save(ctx context.Context, s *submission.Submission) error {
	defer r.track("save")()
	if err := s.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO check_submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.executor.ExecContext(ctx, query,
		s.ID, s.RequestID, s.Target, s.Test, s.Kind, s.Accepted, s.Reason, pq.Array(s.WrongTerms), s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(err, errors.ErrCodeConflict, "submission already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save submission")
	}
	return nil
}

func (r *postgresSubmissionRepo) FindByID(ctx context.Context, id uuid.UUID) (*submission.Submission, error) {
	defer r.track("find_by_id")()
	query := `SELECT ` + submissionColumns + ` FROM check_submissions WHERE id = $1`
	s, err := scanSubmission(r.executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeSubmissionNotFound, "submission not found").WithDetail(id.String())
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load submission")
	}
	return s, nil
}

func (r *postgresSubmissionRepo) List(ctx context.Context, filter submission.ListFilter) ([]*submission.Submission, error) {
	defer r.track("list")()
	filter = filter.Normalize()

	var (
		conds []string
		args  []interface{}
	)
	if filter.Reason != "" {
		args = append(args, filter.Reason)
		conds = append(conds, fmt.Sprintf("reason = $%d", len(args)))
	}
	if filter.Accepted != nil {
		args = append(args, *filter.Accepted)
		conds = append(conds, fmt.Sprintf("accepted = $%d", len(args)))
	}

	query := `SELECT ` + submissionColumns + ` FROM check_submissions`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list submissions")
	}
	defer rows.Close()

	out := make([]*submission.Submission, 0, filter.Limit)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan submission")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate submissions")
	}
	return out, nil
}

func (r *postgresSubmissionRepo) Stats(ctx context.Context) (*submission.Stats, error) {
	defer r.track("stats")()
	rows, err := r.executor.QueryContext(ctx,
		`SELECT reason, COUNT(*) FROM check_submissions GROUP BY reason`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to aggregate submissions")
	}
	defer rows.Close()

	stats := &submission.Stats{ByReason: make(map[string]int64)}
	for rows.Next() {
		var (
			reason string
			count  int64
		)
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan submission stats")
		}
		stats.ByReason[reason] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate submission stats")
	}
	return stats, nil
}

func scanSubmission(row scanner) (*submission.Submission, error) {
	var (
		s     submission.Submission
		wrong pq.StringArray
	)
	err := row.Scan(&s.ID, &s.RequestID, &s.Target, &s.Test, &s.Kind, &s.Accepted, &s.Reason, &wrong, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.WrongTerms = []string(wrong)
	if s.WrongTerms == nil {
		s.WrongTerms = []string{}
	}
	return &s, nil
}
