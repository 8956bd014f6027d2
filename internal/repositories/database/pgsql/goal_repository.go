package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chronicleteam/chronicle_backend/internal/apperrors"
	"github.com/chronicleteam/chronicle_backend/internal/core/domain"
	portsrepo "github.com/chronicleteam/chronicle_backend/internal/core/ports/repositories"
	"github.com/chronicleteam/chronicle_backend/internal/models"
	"github.com/chronicleteam/chronicle_backend/internal/utils/mapping"
	"github.com/chronicleteam/chronicle_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxGoalRepository persists goals, milestones, journal links and edit history.
type PgxGoalRepository struct {
	BaseRepository
}

func newPgxGoalRepository(db *pgxpool.Pool) portsrepo.GoalRepositoryWithTx {
	return &PgxGoalRepository{BaseRepository{Pool: db}}
}

// Ensure PgxGoalRepository implements portsrepo.GoalRepositoryWithTx
var _ portsrepo.GoalRepositoryWithTx = (*PgxGoalRepository)(nil)

// querier abstracts over the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- reads ---

const goalColumns = `goal_id, workspace_id, title, description, category, status, priority,
	       progress_percentage, target_date, assignee_id, reviewer_id, tags, completion_notes,
	       created_at, created_by, last_updated_at, last_updated_by`

func scanGoalRow(row pgx.Row) (models.Goal, error) {
	var m models.Goal
	err := row.Scan(
		&m.GoalID,
		&m.WorkspaceID,
		&m.Title,
		&m.Description,
		&m.Category,
		&m.Status,
		&m.Priority,
		&m.ProgressPercentage,
		&m.TargetDate,
		&m.AssigneeID,
		&m.ReviewerID,
		&m.Tags,
		&m.CompletionNotes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxGoalRepository) FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE goal_id = $1;`
	m, err := scanGoalRow(r.Pool.QueryRow(ctx, query, goalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find goal by ID %s: %w", goalID, err)
	}

	goal := mapping.ToDomainGoal(m)

	milestones, err := r.listMilestones(ctx, []string{goalID})
	if err != nil {
		return nil, err
	}
	goal.Milestones = milestones[goalID]

	links, err := r.listJournalLinks(ctx, []string{goalID})
	if err != nil {
		return nil, err
	}
	goal.JournalLinks = links[goalID]

	history, err := r.ListEditHistory(ctx, goalID)
	if err != nil {
		return nil, err
	}
	goal.EditHistory = history

	return &goal, nil
}

func (r *PgxGoalRepository) listMilestones(ctx context.Context, goalIDs []string) (map[string][]domain.Milestone, error) {
	query := `
		SELECT milestone_id, goal_id, title, target_date, status, completed, tasks,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM milestones
		WHERE goal_id = ANY($1)
		ORDER BY created_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query, goalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.Milestone)
	for rows.Next() {
		var m models.Milestone
		if err := rows.Scan(
			&m.MilestoneID,
			&m.GoalID,
			&m.Title,
			&m.TargetDate,
			&m.Status,
			&m.Completed,
			&m.Tasks,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan milestone row: %w", err)
		}
		d, err := mapping.ToDomainMilestone(m)
		if err != nil {
			return nil, err
		}
		result[d.GoalID] = append(result[d.GoalID], d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating milestone rows: %w", err)
	}
	return result, nil
}

func (r *PgxGoalRepository) listJournalLinks(ctx context.Context, goalIDs []string) (map[string][]domain.JournalLink, error) {
	query := `
		SELECT journal_entry_id, goal_id, linked_at, linked_by, contribution_type, progress_contribution
		FROM goal_journal_links
		WHERE goal_id = ANY($1)
		ORDER BY linked_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query, goalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal links: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.JournalLink)
	for rows.Next() {
		var m models.JournalLink
		if err := rows.Scan(
			&m.JournalEntryID,
			&m.GoalID,
			&m.LinkedAt,
			&m.LinkedBy,
			&m.ContributionType,
			&m.ProgressContribution,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal link row: %w", err)
		}
		result[m.GoalID] = append(result[m.GoalID], mapping.ToDomainJournalLink(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal link rows: %w", err)
	}
	return result, nil
}

func (r *PgxGoalRepository) ListGoalsByWorkspace(ctx context.Context, workspaceID string, limit int, nextToken *string) ([]domain.Goal, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to determine whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + goalColumns + ` FROM goals`
	filterClause := `WHERE workspace_id = $1`
	// Stable ordering; goal_id breaks last_updated_at ties.
	orderByClause := `ORDER BY last_updated_at DESC, goal_id DESC`

	args := []interface{}{workspaceID}
	if nextToken != nil && *nextToken != "" {
		lastUpdatedAt, lastGoalID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		filterClause += ` AND (last_updated_at, goal_id) < ($2, $3)`
		args = append(args, lastUpdatedAt, lastGoalID)
	}

	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query goals for workspace "+workspaceID, err)
	}
	defer rows.Close()

	modelGoals := make([]models.Goal, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanGoalRow(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan goal row for workspace "+workspaceID, scanErr)
		}
		modelGoals = append(modelGoals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating goal rows for workspace "+workspaceID, err)
	}

	var nextTokenVal *string
	results := modelGoals
	if len(modelGoals) > limit {
		lastGoal := modelGoals[limit-1]
		token := pagination.EncodeToken(lastGoal.LastUpdatedAt, lastGoal.GoalID)
		nextTokenVal = &token
		results = modelGoals[:limit]
	}

	goals := make([]domain.Goal, len(results))
	goalIDs := make([]string, len(results))
	for i, m := range results {
		goals[i] = mapping.ToDomainGoal(m)
		goalIDs[i] = m.GoalID
	}

	// List rows carry milestones and links for display; edit history stays
	// behind the dedicated endpoint.
	if len(goalIDs) > 0 {
		milestones, err := r.listMilestones(ctx, goalIDs)
		if err != nil {
			return nil, nil, err
		}
		links, err := r.listJournalLinks(ctx, goalIDs)
		if err != nil {
			return nil, nil, err
		}
		for i := range goals {
			goals[i].Milestones = milestones[goals[i].GoalID]
			goals[i].JournalLinks = links[goals[i].GoalID]
		}
	}

	return goals, nextTokenVal, nil
}

func (r *PgxGoalRepository) ListEditHistory(ctx context.Context, goalID string) ([]domain.EditRecord, error) {
	query := `
		SELECT edit_id, goal_id, edited_by, edited_at, field, old_value, new_value, reason
		FROM goal_edit_history
		WHERE goal_id = $1
		ORDER BY edited_at DESC, edit_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edit history for goal %s: %w", goalID, err)
	}
	defer rows.Close()

	records := make([]domain.EditRecord, 0)
	for rows.Next() {
		var m models.EditRecord
		if err := rows.Scan(
			&m.EditID,
			&m.GoalID,
			&m.EditedBy,
			&m.EditedAt,
			&m.Field,
			&m.OldValue,
			&m.NewValue,
			&m.Reason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan edit record row: %w", err)
		}
		records = append(records, mapping.ToDomainEditRecord(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edit record rows: %w", err)
	}
	return records, nil
}

// --- writes ---

func insertMilestone(ctx context.Context, q querier, m models.Milestone) error {
	query := `
		INSERT INTO milestones (milestone_id, goal_id, title, target_date, status, completed, tasks,
		                        created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := q.Exec(ctx, query,
		m.MilestoneID,
		m.GoalID,
		m.Title,
		m.TargetDate,
		m.Status,
		m.Completed,
		m.Tasks,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert milestone %s: %w", m.MilestoneID, err)
	}
	return nil
}

func insertEditRecords(ctx context.Context, q querier, records []domain.EditRecord) error {
	query := `
		INSERT INTO goal_edit_history (edit_id, goal_id, edited_by, edited_at, field, old_value, new_value, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, rec := range records {
		m := mapping.ToModelEditRecord(rec)
		if _, err := q.Exec(ctx, query,
			m.EditID,
			m.GoalID,
			m.EditedBy,
			m.EditedAt,
			m.Field,
			m.OldValue,
			m.NewValue,
			m.Reason,
		); err != nil {
			return fmt.Errorf("failed to insert edit record %s: %w", m.EditID, err)
		}
	}
	return nil
}

func (r *PgxGoalRepository) SaveGoal(ctx context.Context, goal domain.Goal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelGoal(goal)
	query := `
		INSERT INTO goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = tx.Exec(ctx, query,
		m.GoalID,
		m.WorkspaceID,
		m.Title,
		m.Description,
		m.Category,
		m.Status,
		m.Priority,
		m.ProgressPercentage,
		m.TargetDate,
		m.AssigneeID,
		m.ReviewerID,
		m.Tags,
		m.CompletionNotes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save goal %s: %w", goal.GoalID, err)
	}

	for _, milestone := range goal.Milestones {
		mm, mapErr := mapping.ToModelMilestone(milestone)
		if mapErr != nil {
			return mapErr
		}
		if err := insertMilestone(ctx, tx, mm); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxGoalRepository) UpdateGoalFields(ctx context.Context, goal domain.Goal, records []domain.EditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelGoal(goal)
	query := `
		UPDATE goals SET
			title = $2,
			description = $3,
			category = $4,
			priority = $5,
			target_date = $6,
			assignee_id = $7,
			reviewer_id = $8,
			tags = $9,
			last_updated_at = $10,
			last_updated_by = $11
		WHERE goal_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.GoalID,
		m.Title,
		m.Description,
		m.Category,
		m.Priority,
		m.TargetDate,
		m.AssigneeID,
		m.ReviewerID,
		m.Tags,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal %s: %w", goal.GoalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := insertEditRecords(ctx, tx, records); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func (r *PgxGoalRepository) CommitStatusChange(ctx context.Context, goalID string, status domain.GoalStatus, progress int, completionNotes *string, records []domain.EditRecord, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// COALESCE keeps existing notes when none were submitted with the change.
	query := `
		UPDATE goals SET
			status = $2,
			progress_percentage = $3,
			completion_notes = COALESCE($4, completion_notes),
			last_updated_at = $5,
			last_updated_by = $6
		WHERE goal_id = $1;
	`
	tag, err := tx.Exec(ctx, query, goalID, string(status), progress, completionNotes, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to commit status change for goal %s: %w", goalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := insertEditRecords(ctx, tx, records); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func (r *PgxGoalRepository) UpdateCachedProgress(ctx context.Context, goalID string, progress int, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE goals SET
			progress_percentage = $2,
			last_updated_at = $3,
			last_updated_by = $4
		WHERE goal_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, goalID, progress, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update cached progress for goal %s: %w", goalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxGoalRepository) SaveMilestone(ctx context.Context, milestone domain.Milestone) error {
	m, err := mapping.ToModelMilestone(milestone)
	if err != nil {
		return err
	}
	return insertMilestone(ctx, r.Pool, m)
}

func (r *PgxGoalRepository) UpdateMilestone(ctx context.Context, milestone domain.Milestone) error {
	m, err := mapping.ToModelMilestone(milestone)
	if err != nil {
		return err
	}
	query := `
		UPDATE milestones SET
			title = $2,
			target_date = $3,
			status = $4,
			completed = $5,
			tasks = $6,
			last_updated_at = $7,
			last_updated_by = $8
		WHERE milestone_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.MilestoneID,
		m.Title,
		m.TargetDate,
		m.Status,
		m.Completed,
		m.Tasks,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update milestone %s: %w", milestone.MilestoneID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxGoalRepository) SaveJournalLink(ctx context.Context, link domain.JournalLink) error {
	query := `
		INSERT INTO goal_journal_links (journal_entry_id, goal_id, linked_at, linked_by, contribution_type, progress_contribution)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	m := mapping.ToModelJournalLink(link)
	_, err := r.Pool.Exec(ctx, query,
		m.JournalEntryID,
		m.GoalID,
		m.LinkedAt,
		m.LinkedBy,
		m.ContributionType,
		m.ProgressContribution,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save journal link for goal %s: %w", link.GoalID, err)
	}
	return nil
}

func (r *PgxGoalRepository) DeleteJournalLink(ctx context.Context, goalID, journalEntryID string) error {
	query := `DELETE FROM goal_journal_links WHERE goal_id = $1 AND journal_entry_id = $2;`
	tag, err := r.Pool.Exec(ctx, query, goalID, journalEntryID)
	if err != nil {
		return fmt.Errorf("failed to delete journal link for goal %s: %w", goalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxGoalRepository) AppendEditRecords(ctx context.Context, records []domain.EditRecord) error {
	return insertEditRecords(ctx, r.Pool, records)
}
