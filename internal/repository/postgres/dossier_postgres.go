package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"daoapi/internal/database"
	"daoapi/internal/model"
	"daoapi/internal/repository"
)

// DossierPostgres is a PostgreSQL implementation of repository.DossierRepository.
type DossierPostgres struct {
	db *sql.DB
}

// NewDossierPostgres creates a new DossierPostgres repository.
func NewDossierPostgres(db *sql.DB) *DossierPostgres {
	return &DossierPostgres{db: db}
}

var _ repository.DossierRepository = (*DossierPostgres)(nil)

const dossierColumns = `
	d.id, d.number, d.deposit_date, d.subject, d.description, d.reference, d.authority,
	d.lead_user_id, d.team_id, d.completed,
	COALESCE(ROUND((SELECT AVG(t.progress) FROM tasks t WHERE t.dossier_id = d.id)), 0)::INT,
	d.created_at`

func scanDossier(row rowScanner) (*model.Dossier, error) {
	var (
		d       model.Dossier
		deposit sql.NullTime
	)
	if err := row.Scan(
		&d.ID,
		&d.Number,
		&deposit,
		&d.Subject,
		&d.Description,
		&d.Reference,
		&d.Authority,
		&d.LeadUserID,
		&d.TeamID,
		&d.Completed,
		&d.Progress,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	if deposit.Valid {
		t := deposit.Time
		d.DepositDate = &t
	}
	return &d, nil
}

// Create inserts the team named after the dossier number, the lead and member rows,
// then the dossier itself. Nothing is written if any statement fails.
func (r *DossierPostgres) Create(ctx context.Context, d *model.Dossier, memberIDs []int64) (*model.Dossier, error) {
	out := *d
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const qTeam = `INSERT INTO teams (name) VALUES ($1) RETURNING id`
		if err := tx.QueryRowContext(ctx, qTeam, d.Number).Scan(&out.TeamID); err != nil {
			return fmt.Errorf("insert team: %w", err)
		}

		const qMember = `
			INSERT INTO team_members (team_id, user_id, role)
			VALUES ($1, $2, $3)
			ON CONFLICT (team_id, user_id) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, qMember, out.TeamID, d.LeadUserID, model.TeamRoleLead); err != nil {
			return fmt.Errorf("insert team lead: %w", err)
		}
		for _, id := range memberIDs {
			if id == d.LeadUserID {
				continue
			}
			if _, err := tx.ExecContext(ctx, qMember, out.TeamID, id, model.TeamRoleMember); err != nil {
				return fmt.Errorf("insert team member: %w", err)
			}
		}

		const qDossier = `
			INSERT INTO dossiers (number, deposit_date, subject, description, reference, authority, lead_user_id, team_id, completed)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false)
			RETURNING id, created_at
		`
		if err := tx.QueryRowContext(ctx, qDossier,
			d.Number,
			nullableDate(d.DepositDate),
			d.Subject,
			d.Description,
			d.Reference,
			d.Authority,
			d.LeadUserID,
			out.TeamID,
		).Scan(&out.ID, &out.CreatedAt); err != nil {
			if database.IsUniqueViolation(err) {
				return repository.ErrDuplicate
			}
			return fmt.Errorf("insert dossier: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Completed = false
	out.Progress = 0
	return &out, nil
}

// FindByID fetches a single dossier with its computed progress.
func (r *DossierPostgres) FindByID(ctx context.Context, id int64) (*model.Dossier, error) {
	q := `SELECT ` + dossierColumns + ` FROM dossiers d WHERE d.id = $1`
	return scanDossier(r.db.QueryRowContext(ctx, q, id))
}

// List returns dossiers newest first using LIMIT/OFFSET pagination and a total count.
func (r *DossierPostgres) List(ctx context.Context, f repository.DossierFilter, pq repository.PageQuery) (*repository.PageResult[model.Dossier], error) {
	var (
		conds []string
		args  []any
	)
	if f.LeadUserID > 0 {
		args = append(args, f.LeadUserID)
		conds = append(conds, "d.lead_user_id = $"+strconv.Itoa(len(args)))
	}
	if f.MemberUserID > 0 {
		args = append(args, f.MemberUserID)
		conds = append(conds, "EXISTS (SELECT 1 FROM team_members tm WHERE tm.team_id = d.team_id AND tm.user_id = $"+strconv.Itoa(len(args))+")")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dossiers d`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	listArgs := append(args, pq.Limit, pq.Offset)
	qList := `SELECT ` + dossierColumns + ` FROM dossiers d` + where +
		` ORDER BY d.created_at DESC, d.id DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	rows, err := r.db.QueryContext(ctx, qList, listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Dossier, 0)
	for rows.Next() {
		d, err := scanDossier(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Dossier]{Items: items, Total: total}, nil
}

// SetCompleted flips the terminal flag of a dossier.
func (r *DossierPostgres) SetCompleted(ctx context.Context, id int64, completed bool) error {
	const q = `UPDATE dossiers SET completed = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, completed)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TeamMembers lists the lead and members of a dossier's team.
func (r *DossierPostgres) TeamMembers(ctx context.Context, dossierID int64) ([]model.TeamMember, error) {
	const q = `
		SELECT tm.team_id, tm.user_id, u.name, tm.role
		FROM dossiers d
		JOIN team_members tm ON tm.team_id = d.team_id
		JOIN users u ON u.id = tm.user_id
		WHERE d.id = $1
		ORDER BY tm.role, u.name
	`
	rows, err := r.db.QueryContext(ctx, q, dossierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.TeamMember, 0)
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Name, &m.Role); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func nullableDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
