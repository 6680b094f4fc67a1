package store

import "github.com/jackc/pgx/v5/pgxpool"

// Stores provides access to all store implementations backed by one pool.
type Stores struct {
	pool *pgxpool.Pool
}

func NewStores(pool *pgxpool.Pool) *Stores {
	return &Stores{pool: pool}
}

func (s *Stores) Tasks() TaskStore {
	return newTaskStore(s.pool)
}

func (s *Stores) Users() UserStore {
	return newUserStore(s.pool)
}

func (s *Stores) AlarmRules() AlarmRuleStore {
	return newAlarmRuleStore(s.pool)
}

func (s *Stores) Configs() ConfigStore {
	return newConfigStore(s.pool)
}
