package server

import (
	"time"

	"github.com/gin-gonic/gin"
	pnldomain "github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"go.uber.org/zap"
)

type computePnlRequest struct {
	SiteIDs []string `json:"siteIds"`
	Year    int      `json:"year"`
}

// @Summary      Compute P&L
// @Description  Compute budget, forecast, actual and variance rows for the given sites and year
// @Tags         pnl
// @Accept       json
// @Produce      json
// @Param        request body computePnlRequest true "Compute P&L Request"
// @Success      200  {object}  PnlResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /pnl [post]
func (s *Server) ComputePnl(c *gin.Context) {
	var req computePnlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	computeReq := pnldomain.ComputeRequest{SiteIDs: req.SiteIDs, Year: req.Year}
	if err := computeReq.Validate(); err != nil {
		AbortWithError(c, err)
		return
	}

	start := time.Now()
	result, err := s.pnlSvc.Compute(c.Request.Context(), computeReq)
	if err != nil {
		s.log.Error("pnl computation failed",
			zap.String("request_id", requestIDFrom(c)),
			zap.Strings("site_ids", computeReq.SiteIDs),
			zap.Int("year", computeReq.Year),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	s.log.Debug("pnl computed",
		zap.Int("sites", len(computeReq.SiteIDs)),
		zap.Duration("took", time.Since(start)),
	)
	respondData(c, result)
}
