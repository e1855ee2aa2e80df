package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/saasgenius/saasgenius/internal/biz"
)

type projectRepo struct {
	data *Data
	log  *log.Helper
}

func NewProjectRepo(data *Data, logger log.Logger) biz.ProjectRepo {
	return &projectRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

const projectColumns = `id, user_id, title, description, analysis_result, is_favorite, tags, created_at, updated_at`

func notFound() error {
	return kerrors.NotFound("PROJECT_NOT_FOUND", "Project not found")
}

func scanProject(scan func(dest ...any) error) (*biz.Project, error) {
	var p biz.Project
	var analysis []byte
	err := scan(&p.ID, &p.UserID, &p.Title, &p.Description, &analysis,
		&p.IsFavorite, &p.Tags, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound()
		}
		return nil, err
	}
	p.AnalysisResult = analysis
	return &p, nil
}

func (r *projectRepo) CreateProject(ctx context.Context, p *biz.Project) (int, error) {
	var id int
	err := r.data.db.QueryRowContext(ctx, `
		INSERT INTO projects (user_id, title, description, analysis_result, is_favorite, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		p.UserID, p.Title, p.Description, nullableJSON(p.AnalysisResult), p.IsFavorite, p.Tags,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func (r *projectRepo) GetProject(ctx context.Context, userID, id int) (*biz.Project, error) {
	row := r.data.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	return scanProject(row.Scan)
}

func (r *projectRepo) ListProjects(ctx context.Context, userID, page, pageSize int) ([]*biz.Project, int, error) {
	offset := (page - 1) * pageSize
	rows, err := r.data.db.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3`,
		userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var projects []*biz.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.data.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// UpdateProject applies a partial update. The caller has already filtered
// fields down to the allowed set.
func (r *projectRepo) UpdateProject(ctx context.Context, userID, id int, fields map[string]any) error {
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+3)
	i := 1
	for col, val := range fields {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id, userID)

	query := fmt.Sprintf("UPDATE projects SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), i, i+1)
	res, err := r.data.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound()
	}
	return nil
}

func (r *projectRepo) DeleteProject(ctx context.Context, userID, id int) error {
	res, err := r.data.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound()
	}
	return nil
}

func (r *projectRepo) ToggleFavorite(ctx context.Context, userID, id int) (bool, error) {
	var fav bool
	err := r.data.db.QueryRowContext(ctx, `
		UPDATE projects
		SET is_favorite = NOT is_favorite, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING is_favorite`,
		id, userID).Scan(&fav)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, notFound()
		}
		return false, err
	}
	return fav, nil
}
