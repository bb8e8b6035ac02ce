package offerbook

import (
	"time"

	"github.com/patrickmn/go-cache"

	"p2p_market/internal/domain/entity"
)

const (
	settingFreshKey = "auto_update_enabled"
	settingLastKey  = "auto_update_enabled:last"
)

// CacheEntry последний успешный список стороны. Живёт до перезаписи.
type CacheEntry struct {
	Offers      []entity.Offer
	CapturedAt  time.Time
	PagesLoaded int
	Source      Source
}

func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.CapturedAt)
}

// State разделяемое состояние процесса: кэш объявлений по сторонам и кэш
// флага автообновления. Создаётся один раз и передаётся в Service явно.
type State struct {
	offers  *cache.Cache
	setting *cache.Cache
}

func NewState(settingTTL time.Duration) *State {
	return &State{
		offers:  cache.New(cache.NoExpiration, 0),
		setting: cache.New(settingTTL, 0),
	}
}

// Offers возвращает копию записи, вызывающий может её менять.
func (s *State) Offers(side entity.Side) (CacheEntry, bool) {
	v, ok := s.offers.Get(side.String())
	if !ok {
		return CacheEntry{}, false
	}

	entry := v.(CacheEntry) //nolint:forcetypeassert
	entry.Offers = entity.CloneOffers(entry.Offers)

	return entry, true
}

func (s *State) StoreOffers(side entity.Side, entry CacheEntry) {
	entry.Offers = entity.CloneOffers(entry.Offers)
	s.offers.Set(side.String(), entry, cache.NoExpiration)
}

// CachedSetting ok=false, если значение не читалось дольше TTL.
func (s *State) CachedSetting() (bool, bool) {
	v, ok := s.setting.Get(settingFreshKey)
	if !ok {
		return false, false
	}

	return v.(bool), true //nolint:forcetypeassert
}

func (s *State) RememberSetting(enabled bool) {
	s.setting.Set(settingFreshKey, enabled, cache.DefaultExpiration)
	s.setting.Set(settingLastKey, enabled, cache.NoExpiration)
}

// LastKnownSetting последнее прочитанное значение; до первого чтения включено.
func (s *State) LastKnownSetting() bool {
	v, ok := s.setting.Get(settingLastKey)
	if !ok {
		return true
	}

	return v.(bool) //nolint:forcetypeassert
}
