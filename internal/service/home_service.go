package service

import (
	"context"
	"strings"
	"time"

	"medlink/internal/cache"
	"medlink/internal/domain"
	"medlink/internal/models"
	"medlink/internal/repository"

	"go.uber.org/zap"
)

const (
	homeCacheKey      = "home:v1"
	homeCacheTTL      = 5 * time.Minute
	featuredPerRole   = 6
	searchPreviewSize = 5
)

// searchKinds maps the search type parameter to a directory role; "medicine" is the catalog.
var searchKinds = map[string]domain.Role{
	"doctor":         domain.RoleDoctor,
	"hospital":       domain.RoleHospital,
	"clinic":         domain.RoleClinic,
	"checkup_center": domain.RoleCheckupCenter,
	"med_store":      domain.RoleMedStore,
}

var featuredKeys = map[domain.Role]string{
	domain.RoleDoctor:        "doctors",
	domain.RoleHospital:      "hospitals",
	domain.RoleClinic:        "clinics",
	domain.RoleCheckupCenter: "checkup_centers",
	domain.RoleMedStore:      "med_stores",
}

type HomeData struct {
	Featured map[string][]models.User `json:"featured"`
	Counts   map[domain.Role]int64    `json:"counts"`
}

type HomeService struct {
	providers *repository.ProviderRepository
	medicines *repository.MedicineRepository
	cache     cache.Cache
	log       *zap.Logger
}

func NewHomeService(providers *repository.ProviderRepository, medicines *repository.MedicineRepository, c cache.Cache, log *zap.Logger) *HomeService {
	if c == nil {
		c = cache.NewMemory()
	}
	return &HomeService{providers: providers, medicines: medicines, cache: c, log: log}
}

// Home returns featured verified providers per role and platform counts.
func (s *HomeService) Home(ctx context.Context) (*HomeData, error) {
	var data HomeData
	if ok, err := s.cache.Get(ctx, homeCacheKey, &data); err == nil && ok {
		return &data, nil
	} else if err != nil {
		s.log.Warn("home cache read failed", zap.Error(err))
	}
	data.Featured = make(map[string][]models.User, len(featuredKeys))
	for role, key := range featuredKeys {
		list, err := s.providers.Featured(role, featuredPerRole)
		if err != nil {
			return nil, err
		}
		data.Featured[key] = list
	}
	counts, err := s.providers.CountByRole(true)
	if err != nil {
		return nil, err
	}
	data.Counts = counts
	if err := s.cache.Set(ctx, homeCacheKey, data, homeCacheTTL); err != nil {
		s.log.Warn("home cache write failed", zap.Error(err))
	}
	return &data, nil
}

func searchQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < 2 {
		return "", ErrQueryTooShort
	}
	return q, nil
}

// SearchType returns one page of a single kind: a provider role or "medicine".
func (s *HomeService) SearchType(q, kind string, page, limit int) (interface{}, int64, error) {
	q, err := searchQuery(q)
	if err != nil {
		return nil, 0, err
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "medicine" {
		return s.medicines.List(q, page, limit)
	}
	role, ok := searchKinds[kind]
	if !ok {
		return nil, 0, ErrInvalidInput
	}
	return s.providers.List(repository.ProviderFilter{Role: role, Search: q, VerifiedOnly: true, Page: page, Limit: limit})
}

// SearchAll returns up to five matches of every kind.
func (s *HomeService) SearchAll(q string) (map[string]interface{}, error) {
	q, err := searchQuery(q)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(searchKinds)+1)
	for kind, role := range searchKinds {
		list, _, err := s.providers.List(repository.ProviderFilter{Role: role, Search: q, VerifiedOnly: true, Page: 1, Limit: searchPreviewSize})
		if err != nil {
			return nil, err
		}
		out[kind] = list
	}
	meds, _, err := s.medicines.List(q, 1, searchPreviewSize)
	if err != nil {
		return nil, err
	}
	out["medicine"] = meds
	return out, nil
}
