// Package ingestion loads the two input batches for a reconciliation run.
// Parsing is strict: a malformed row rejects the whole batch, since silently
// skipping rows would corrupt financial totals downstream.
package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/horizongaming/reconciler/internal/domain"
)

// transactionColumns is the required header of the gateway export.
var transactionColumns = []string{
	"transaction_id", "timestamp", "amount", "currency", "status",
	"provider", "payment_method", "country", "customer_id",
}

// ParseTransactionsCSV parses the gateway transaction export.
//
// Expected header:
//
//	transaction_id,timestamp,amount,currency,status,provider,payment_method,country,customer_id
func ParseTransactionsCSV(data []byte) ([]domain.Transaction, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header, transactionColumns); err != nil {
		return nil, err
	}

	var txns []domain.Transaction
	lineNum := 1

	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		id := strings.TrimSpace(row[0])
		if id == "" {
			return nil, fmt.Errorf("line %d: empty transaction_id", lineNum)
		}

		ts, err := parseTimestamp(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d timestamp: %w", lineNum, err)
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d amount: %w", lineNum, err)
		}

		txns = append(txns, domain.Transaction{
			ID:            id,
			Timestamp:     ts,
			Amount:        amount,
			Currency:      strings.TrimSpace(row[3]),
			Status:        domain.TransactionStatus(strings.TrimSpace(row[4])),
			Provider:      strings.TrimSpace(row[5]),
			PaymentMethod: domain.PaymentMethod(strings.TrimSpace(row[6])),
			Country:       strings.TrimSpace(row[7]),
			CustomerID:    strings.TrimSpace(row[8]),
		})
	}

	return txns, nil
}

func checkHeader(got, want []string) error {
	if len(got) < len(want) {
		return fmt.Errorf("expected %d columns, got %d", len(want), len(got))
	}
	for i, col := range want {
		if strings.TrimSpace(got[i]) != col {
			return fmt.Errorf("column %d: expected %q, got %q", i+1, col, got[i])
		}
	}
	return nil
}

// parseTimestamp accepts the pipeline's native format first, then RFC 3339
// and plain dates.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
