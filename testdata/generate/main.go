package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/horizongaming/reconciler/internal/config"
	"github.com/horizongaming/reconciler/internal/currency"
	"github.com/horizongaming/reconciler/internal/domain"
	"github.com/horizongaming/reconciler/internal/fees"
)

const transactionCount = 1000

type weightedChoice struct {
	value  string
	weight float64
}

func pick(rng *rand.Rand, choices []weightedChoice) string {
	total := 0.0
	for _, c := range choices {
		total += c.weight
	}
	roll := rng.Float64() * total
	for _, c := range choices {
		roll -= c.weight
		if roll <= 0 {
			return c.value
		}
	}
	return choices[len(choices)-1].value
}

var (
	providers = []weightedChoice{
		{"PayBridge", 0.25},
		{"LatamPay", 0.25},
		{"GlobalSettle", 0.20},
		{"FastPay", 0.20},
		{"VoucherPro", 0.10},
	}

	countries = []weightedChoice{
		{"Brazil", 0.40},
		{"Mexico", 0.30},
		{"Colombia", 0.20},
		{"Chile", 0.10},
	}

	countryCurrency = map[string]string{
		"Brazil":   "BRL",
		"Mexico":   "MXN",
		"Colombia": "COP",
		"Chile":    "CLP",
	}

	statuses = []weightedChoice{
		{"captured", 0.70},
		{"authorized", 0.15},
		{"declined", 0.10},
		{"refunded", 0.03},
		{"chargedback", 0.02},
	}

	paymentMethods = []weightedChoice{
		{"credit_card", 0.50},
		{"debit_card", 0.30},
		{"bank_transfer", 0.15},
		{"cash_voucher", 0.05},
	}
)

func main() {
	rng := rand.New(rand.NewSource(42))
	cfg := config.Default()
	conv := currency.NewConverter(cfg.Currency)
	feeCalc := fees.NewCalculator(cfg.Fees)
	baseDir := findTestdataDir()

	// Fixed 30-day window so repeated runs write identical files.
	startDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	txns := generateTransactions(rng, conv, startDate)
	writeTransactionsCSV(filepath.Join(baseDir, "transactions.csv"), txns)
	fmt.Printf("Generated %d transactions -> transactions.csv\n", len(txns))

	setts := generateSettlements(rng, conv, feeCalc, cfg.Settlement, txns, startDate)
	writeSettlementsCSV(filepath.Join(baseDir, "settlements.csv"), setts)
	fmt.Printf("Generated %d settlements -> settlements.csv\n", len(setts))

	fmt.Println("Test data generation complete.")
}

func generateTransactions(rng *rand.Rand, conv *currency.Converter, startDate time.Time) []domain.Transaction {
	txns := make([]domain.Transaction, 0, transactionCount)

	for i := 0; i < transactionCount; i++ {
		country := pick(rng, countries)
		curr := countryCurrency[country]

		// Base amount $10-500 USD, expressed in local currency.
		usdAmount := 10 + rng.Float64()*490
		amount := math.Round(conv.FromUSD(usdAmount, curr)*100) / 100

		timestamp := startDate.Add(time.Duration(rng.Float64() * 30 * 24 * float64(time.Hour)))
		provider := pick(rng, providers)
		status := pick(rng, statuses)

		// Anomaly cluster: a run of captured GlobalSettle transactions in
		// week 2-3 that will receive no settlements at all.
		if i >= 200 && i < 260 && provider == "GlobalSettle" {
			status = "captured"
			timestamp = startDate.Add(time.Duration((7 + rng.Float64()*14) * 24 * float64(time.Hour)))
		}

		txns = append(txns, domain.Transaction{
			ID:            fmt.Sprintf("TXN_%06d", i+1),
			Timestamp:     timestamp.Truncate(time.Second),
			Amount:        amount,
			Currency:      curr,
			Status:        domain.TransactionStatus(status),
			Provider:      provider,
			PaymentMethod: domain.PaymentMethod(pick(rng, paymentMethods)),
			Country:       country,
			CustomerID:    fmt.Sprintf("CUST_%04d", 1000+rng.Intn(9000)),
		})
	}

	return txns
}

func generateSettlements(
	rng *rand.Rand,
	conv *currency.Converter,
	feeCalc *fees.Calculator,
	settCfg config.SettlementConfig,
	txns []domain.Transaction,
	startDate time.Time,
) []domain.Settlement {
	anomalyFrom := startDate.AddDate(0, 0, 7)
	anomalyTo := startDate.AddDate(0, 0, 21)

	var candidates []domain.Transaction
	anomalyCount := 0
	for _, t := range txns {
		if t.Status != domain.StatusCaptured {
			continue
		}
		// The GlobalSettle week 2-3 cluster stays unsettled.
		if t.Provider == "GlobalSettle" && !t.Timestamp.Before(anomalyFrom) && !t.Timestamp.After(anomalyTo) {
			anomalyCount++
			continue
		}
		candidates = append(candidates, t)
	}
	fmt.Printf("Captured without settlement (anomaly cluster): %d\n", anomalyCount)

	// Settle 75% of the remaining captured transactions.
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	toSettle := candidates[:int(float64(len(candidates))*0.75)]
	sort.Slice(toSettle, func(i, j int) bool { return toSettle[i].ID < toSettle[j].ID })

	setts := make([]domain.Settlement, 0, len(toSettle)+3)
	settlementID := 1

	for _, txn := range toSettle {
		window := settCfg.WindowFor(string(txn.PaymentMethod))

		// 10% of settlements arrive 50-100% past the normal maximum.
		var settleDays float64
		if rng.Float64() < 0.10 {
			settleDays = float64(window.MaxDays) * (1.5 + rng.Float64()*0.5)
		} else {
			settleDays = float64(window.MinDays) + rng.Float64()*float64(window.MaxDays-window.MinDays)
		}
		settleDate := txn.Timestamp.Add(time.Duration(settleDays * 24 * float64(time.Hour)))

		expected := feeCalc.ExpectedSettlement(txn.Amount, txn.PaymentMethod)

		// 5% of settlements short the payout by 10-20%, the rest only
		// drift by rounding noise.
		var settled float64
		if rng.Float64() < 0.05 {
			settled = expected * (1 - (0.10 + rng.Float64()*0.10))
		} else {
			settled = expected + (rng.Float64()*0.04 - 0.02)
		}

		setts = append(setts, domain.Settlement{
			ID:             fmt.Sprintf("SET_%06d", settlementID),
			TransactionID:  txn.ID,
			SettlementDate: settleDate.Truncate(time.Second),
			SettledAmount:  math.Round(settled*100) / 100,
			Currency:       txn.Currency,
			Provider:       txn.Provider,
		})
		settlementID++
	}

	// Three ghost settlements referencing transactions that do not exist.
	for i := 0; i < 3; i++ {
		country := pick(rng, countries)
		curr := countryCurrency[country]
		usdAmount := 10 + rng.Float64()*490

		setts = append(setts, domain.Settlement{
			ID:             fmt.Sprintf("SET_%06d", settlementID),
			TransactionID:  fmt.Sprintf("TXN_999%03d", i+1),
			SettlementDate: startDate.Add(time.Duration(rng.Float64() * 30 * 24 * float64(time.Hour))).Truncate(time.Second),
			SettledAmount:  math.Round(conv.FromUSD(usdAmount, curr)*100) / 100,
			Currency:       curr,
			Provider:       pick(rng, providers),
		})
		settlementID++
	}

	return setts
}

func writeTransactionsCSV(path string, txns []domain.Transaction) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	w.Write([]string{
		"transaction_id", "timestamp", "amount", "currency",
		"status", "provider", "payment_method", "country", "customer_id",
	})
	for _, t := range txns {
		w.Write([]string{
			t.ID,
			t.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.2f", t.Amount),
			t.Currency,
			string(t.Status),
			t.Provider,
			string(t.PaymentMethod),
			t.Country,
			t.CustomerID,
		})
	}
}

func writeSettlementsCSV(path string, setts []domain.Settlement) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	w.Write([]string{
		"settlement_id", "transaction_id", "settlement_date",
		"settled_amount", "currency", "provider",
	})
	for _, s := range setts {
		w.Write([]string{
			s.ID,
			s.TransactionID,
			s.SettlementDate.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.2f", s.SettledAmount),
			s.Currency,
			s.Provider,
		})
	}
}

func findTestdataDir() string {
	candidates := []string{
		"testdata",
		".",
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return "testdata"
}
