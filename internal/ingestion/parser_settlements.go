package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/horizongaming/reconciler/internal/domain"
)

// settlementColumns is the required header of a provider settlement report.
var settlementColumns = []string{
	"settlement_id", "transaction_id", "settlement_date", "settled_amount",
	"currency", "provider",
}

// ParseSettlementsCSV parses a provider settlement report.
//
// Expected header:
//
//	settlement_id,transaction_id,settlement_date,settled_amount,currency,provider
func ParseSettlementsCSV(data []byte) ([]domain.Settlement, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header, settlementColumns); err != nil {
		return nil, err
	}

	var setts []domain.Settlement
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
			return nil, fmt.Errorf("line %d: empty settlement_id", lineNum)
		}
		txnID := strings.TrimSpace(row[1])
		if txnID == "" {
			return nil, fmt.Errorf("line %d: empty transaction_id", lineNum)
		}

		date, err := parseTimestamp(strings.TrimSpace(row[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d settlement_date: %w", lineNum, err)
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d settled_amount: %w", lineNum, err)
		}

		setts = append(setts, domain.Settlement{
			ID:             id,
			TransactionID:  txnID,
			SettlementDate: date,
			SettledAmount:  amount,
			Currency:       strings.TrimSpace(row[4]),
			Provider:       strings.TrimSpace(row[5]),
		})
	}

	return setts, nil
}
