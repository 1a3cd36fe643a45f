package jobs

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type clientSource struct {
	db *pgxpool.Pool
}

// NewClientSource reads active clients and their current periods from
// the database.
func NewClientSource(db *pgxpool.Pool) ClientSource {
	return &clientSource{db: db}
}

func (s *clientSource) ActiveClients(ctx context.Context) ([]ClientPeriod, error) {
	rows, err := s.db.Query(ctx, `SELECT id, current_period_key FROM clients WHERE active ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ClientPeriod
	for rows.Next() {
		var pair ClientPeriod
		if err := rows.Scan(&pair.ClientID, &pair.Period); err != nil {
			return nil, err
		}
		out = append(out, pair)
	}
	return out, rows.Err()
}
