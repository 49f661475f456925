package repository

import (
	"context"
	"strings"
)

// PlanSearchQuery defines filters & pagination for discovering public plans.
// Filtering and pagination happen in SQL; the service never materialises
// the full plan collection to filter in memory.
type PlanSearchQuery struct {
	Title    string
	Category string
	Page     int
	PageSize int
}

// PublicPlanRow is one discovery result with author display data joined in.
type PublicPlanRow struct {
	ID             uint64 `json:"id"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	Progress       int    `json:"progress"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	AuthorID       uint64 `json:"author_id"`
	AuthorNickname string `json:"author_nickname"`
	AuthorTrust    int    `json:"author_trust_score"`
	SubGoalCount   int    `json:"sub_goal_count"`
}

// SearchPublic returns public plans matching the query, most recent
// first, along with the total match count for pagination.
func (r *PlanRepo) SearchPublic(ctx context.Context, q PlanSearchQuery) ([]PublicPlanRow, int64, error) {
	where := []string{"p.visibility = 'PUBLIC'"}
	args := []any{}

	if q.Title != "" {
		where = append(where, "LOWER(p.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Title)+"%")
	}
	if q.Category != "" {
		where = append(where, "LOWER(p.category) = ?")
		args = append(args, strings.ToLower(q.Category))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*) FROM plans p WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			p.id,
			p.title,
			p.category,
			p.progress,
			DATE_FORMAT(p.start_date, '%Y-%m-%d') AS start_date,
			DATE_FORMAT(p.end_date,   '%Y-%m-%d') AS end_date,
			p.author_id,
			pr.nickname,
			pr.trust_score,
			(SELECT COUNT(*) FROM sub_goals s WHERE s.plan_id = p.id) AS sub_goal_count
		FROM plans p
		JOIN profiles pr ON pr.user_id = p.author_id
		WHERE ` + cond + `
		ORDER BY p.created_at DESC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicPlanRow, 0, limit)
	for rows.Next() {
		var d PublicPlanRow
		if err := rows.Scan(
			&d.ID,
			&d.Title,
			&d.Category,
			&d.Progress,
			&d.StartDate,
			&d.EndDate,
			&d.AuthorID,
			&d.AuthorNickname,
			&d.AuthorTrust,
			&d.SubGoalCount,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
