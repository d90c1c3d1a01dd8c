package domain

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrSiteIDsRequired        = errors.New("site_ids_required")
	ErrInvalidYear            = errors.New("invalid_year")
	ErrInvalidEscalatorMonth  = errors.New("invalid_escalator_month")
	ErrMalformedTierStructure = errors.New("malformed_tier_structure")
	ErrInvalidPercentage      = errors.New("invalid_percentage")
	ErrSiteNotFound           = errors.New("site_not_found")
	ErrSiteIDMissing          = errors.New("site_id_missing")
)

const (
	MinYear = 2000
	MaxYear = 2100
)

type ComputeRequest struct {
	SiteIDs []string `json:"siteIds"`
	Year    int      `json:"year"`
}

// Validate normalises the request. Blank site ids are dropped and duplicates
// keep their first position.
func (r *ComputeRequest) Validate() error {
	seen := make(map[string]struct{}, len(r.SiteIDs))
	ids := make([]string, 0, len(r.SiteIDs))
	for _, id := range r.SiteIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return ErrSiteIDsRequired
	}
	if r.Year < MinYear || r.Year > MaxYear {
		return ErrInvalidYear
	}
	r.SiteIDs = ids
	return nil
}

type Service interface {
	Compute(ctx context.Context, req ComputeRequest) (*PnlResult, error)
}
