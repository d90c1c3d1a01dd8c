package server

import pnldomain "github.com/railzwaylabs/sitepnl/internal/pnl/domain"

// Generic Swagger response envelopes to match API shape.
type DataResponse struct {
	Data any `json:"data"`
}

type PnlResponse struct {
	Data *pnldomain.PnlResult `json:"data"`
}
