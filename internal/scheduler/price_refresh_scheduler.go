package scheduler

import (
	"github.com/hanifn/catalog-backend/internal/app/repository"
	"github.com/hanifn/catalog-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// PriceRefreshScheduler periodically reconciles every product's cached
// minimal variant price. The per-mutation refresh keeps prices current in
// the normal path; this job catches drift from out-of-band writes.
type PriceRefreshScheduler struct {
	cron        *cron.Cron
	productRepo repository.ProductRepository
}

func NewPriceRefreshScheduler(productRepo repository.ProductRepository) *PriceRefreshScheduler {
	return &PriceRefreshScheduler{
		cron:        cron.New(),
		productRepo: productRepo,
	}
}

// Start schedules the nightly refresh at 03:00.
func (s *PriceRefreshScheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		logger.Info("Starting scheduled minimal price refresh", nil)

		updated, err := s.productRepo.RefreshAllMinimalVariantPrices()
		if err != nil {
			logger.Error("Failed to refresh minimal prices from scheduler", err)
			return
		}

		logger.Info("Minimal price refresh completed", map[string]interface{}{
			"updated_products": updated,
		})
	})
	if err != nil {
		logger.Error("Failed to add cron job for minimal price refresh", err)
		return err
	}

	s.cron.Start()
	logger.Info("Price refresh scheduler started (daily at 3:00 AM)", nil)
	return nil
}

func (s *PriceRefreshScheduler) Stop() {
	logger.Info("Stopping price refresh scheduler...", nil)
	s.cron.Stop()
	logger.Info("Price refresh scheduler stopped", nil)
}
