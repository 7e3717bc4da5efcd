package ingestion

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/horizongaming/reconciler/internal/config"
	"github.com/horizongaming/reconciler/internal/domain"
)

// Service loads and validates the two input batches for a reconciliation
// run. Both collections are fully materialized before the engine starts;
// loading is the pipeline's only I/O suspension point.
type Service struct {
	cfg *config.Config
}

// NewService creates an ingestion service bound to a configuration.
func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// LoadBatches reads, parses and validates both input files. A missing or
// malformed file rejects the run outright; data-quality warnings are logged
// and the run proceeds.
func (s *Service) LoadBatches() ([]domain.Transaction, []domain.Settlement, error) {
	txns, err := s.loadTransactions(s.cfg.Data.TransactionsPath)
	if err != nil {
		return nil, nil, err
	}

	setts, err := s.loadSettlements(s.cfg.Data.SettlementsPath)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("[ingestion] Loaded %d transactions and %d settlements", len(txns), len(setts))
	return txns, setts, nil
}

func (s *Service) loadTransactions(path string) ([]domain.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}

	txns, err := ParseTransactionsCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse transactions: %w", err)
	}

	report := ValidateTransactions(txns, s.cfg.Currency.RatesToUSD)
	logWarnings("transactions", report)
	if !report.OK() {
		return nil, fmt.Errorf("invalid transaction batch: %s", strings.Join(report.Errors, "; "))
	}

	return txns, nil
}

func (s *Service) loadSettlements(path string) ([]domain.Settlement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settlements: %w", err)
	}

	setts, err := ParseSettlementsCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse settlements: %w", err)
	}

	report := ValidateSettlements(setts)
	logWarnings("settlements", report)
	if !report.OK() {
		return nil, fmt.Errorf("invalid settlement batch: %s", strings.Join(report.Errors, "; "))
	}

	return setts, nil
}
