package inventory

import (
	"context"
	"sort"
	"time"

	"restochain-backend/models"
)

type StockLine struct {
	ProductID   string            `json:"productId"`
	Title       string            `json:"title"`
	Category    string            `json:"category"`
	Price       float64           `json:"price"`
	IsAvailable bool              `json:"isAvailable"`
	Quantity    int               `json:"quantity"`
	Level       models.StockLevel `json:"level"`
	LastUpdated *time.Time        `json:"lastUpdated,omitempty"`
}

type Summary struct {
	Products   int `json:"products"`
	TotalUnits int `json:"totalUnits"`
	InStock    int `json:"inStock"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

type StockReport struct {
	BranchID string      `json:"branchId"`
	Lines    []StockLine `json:"lines"`
	Summary  Summary     `json:"summary"`
}

// BranchStock joins the catalog with a branch's records. Products without a
// record appear with quantity 0.
func (l *Ledger) BranchStock(ctx context.Context, branchID string, products []models.Product) (StockReport, error) {
	records, err := l.Records(ctx, branchID)
	if err != nil {
		return StockReport{}, err
	}
	report := StockReport{BranchID: branchID, Lines: make([]StockLine, 0, len(products))}
	for _, p := range products {
		line := StockLine{
			ProductID:   p.ID,
			Title:       p.Title,
			Category:    p.Category,
			Price:       p.Price,
			IsAvailable: p.IsAvailable,
		}
		if rec, ok := records[p.ID]; ok {
			line.Quantity = rec.Quantity
			if !rec.LastUpdated.IsZero() {
				ts := rec.LastUpdated
				line.LastUpdated = &ts
			}
		}
		line.Level = models.LevelFor(line.Quantity)
		report.Lines = append(report.Lines, line)
	}
	report.Summary = summarize(report.Lines)
	return report, nil
}

func summarize(lines []StockLine) Summary {
	s := Summary{Products: len(lines)}
	for _, line := range lines {
		s.TotalUnits += line.Quantity
		switch line.Level {
		case models.LevelInStock:
			s.InStock++
		case models.LevelLowStock:
			s.LowStock++
		case models.LevelOutOfStock:
			s.OutOfStock++
		}
	}
	return s
}

// Filter keeps only lines at the given level. The summary is left describing
// the whole branch.
func (r StockReport) Filter(level models.StockLevel) StockReport {
	out := r
	out.Lines = nil
	for _, line := range r.Lines {
		if line.Level == level {
			out.Lines = append(out.Lines, line)
		}
	}
	if out.Lines == nil {
		out.Lines = []StockLine{}
	}
	return out
}

// Discrepancy is a product whose history does not add up to its stock.
type Discrepancy struct {
	BranchID   string `json:"branchId"`
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
	HistorySum int    `json:"historySum"`
	Entries    int    `json:"entries"`
	Difference int    `json:"difference"`
}

// Reconcile compares the sum of recorded changes with the stored quantity
// for every product the branch has a record or history for.
func (l *Ledger) Reconcile(ctx context.Context, branchID string) ([]Discrepancy, error) {
	records, err := l.Records(ctx, branchID)
	if err != nil {
		return nil, err
	}
	entries, err := l.History(ctx, branchID, "")
	if err != nil {
		return nil, err
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, e := range entries {
		sums[e.ProductID] += e.Change
		counts[e.ProductID]++
	}
	keys := make(map[string]struct{})
	for id := range records {
		keys[id] = struct{}{}
	}
	for id := range sums {
		keys[id] = struct{}{}
	}

	out := []Discrepancy{}
	for id := range keys {
		qty := records[id].Quantity
		if sums[id] == qty {
			continue
		}
		out = append(out, Discrepancy{
			BranchID:   branchID,
			ProductID:  id,
			Quantity:   qty,
			HistorySum: sums[id],
			Entries:    counts[id],
			Difference: qty - sums[id],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}
