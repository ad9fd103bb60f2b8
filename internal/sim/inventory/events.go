package inventory

// Event is the inventory domain's outbound event union.
type Event interface {
	Kind() string
}

type StockUpdated struct {
	ProductID string `json:"productId"`
	OldStock  int    `json:"oldStock"`
	NewStock  int    `json:"newStock"`
	Change    int    `json:"change"`
	Cause     string `json:"cause"`
}

func (StockUpdated) Kind() string { return "stock_updated" }

type ReorderNeeded struct {
	ProductID      string `json:"productId"`
	CurrentStock   int    `json:"currentStock"`
	ReorderPoint   int    `json:"reorderPoint"`
	SuggestedOrder int    `json:"suggestedOrder"`
}

func (ReorderNeeded) Kind() string { return "reorder_needed" }

type StockPrediction struct {
	ProductID        string  `json:"productId"`
	CurrentStock     int     `json:"currentStock"`
	AvgDailyUsage    float64 `json:"avgDailyUsage"`
	DaysUntilReorder int     `json:"daysUntilReorder"`
}

func (StockPrediction) Kind() string { return "stock_prediction" }
