package service

import (
	"smartops.app/gateway/internal/cache"
	"smartops.app/gateway/internal/store"
)

type Services struct {
	stores    *store.Stores
	history   *cache.HistoryCache
	jwtSecret string
}

func NewServices(stores *store.Stores, history *cache.HistoryCache, jwtSecret string) *Services {
	return &Services{
		stores:    stores,
		history:   history,
		jwtSecret: jwtSecret,
	}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.stores.Users(), s.jwtSecret)
}

func (s *Services) Tasks() TaskService {
	return NewTaskService(s.stores.Tasks(), s.history)
}

func (s *Services) Settings() SettingsService {
	return NewSettingsService(s.stores.Configs())
}

func (s *Services) AlarmRules() AlarmRuleService {
	return NewAlarmRuleService(s.stores.AlarmRules())
}
