package model

// PotentialUpdate is a detected conflict between a CSV row and an existing
// ledger transaction that plausibly refer to the same real-world event with
// a different amount. Items are consumed exactly once, in the order the
// Matcher emitted them.
type PotentialUpdate struct {
	TransactionID    int64   `json:"transaction_id"`
	RecurringID      *int64  `json:"recurring_id"`
	OldAmount        float64 `json:"old_amount"`
	NewAmount        float64 `json:"new_amount"`
	CSVDescription   string  `json:"csv_description"`
	DBDescription    string  `json:"db_description"`
	CSVDate          Date    `json:"csv_date"`
	DBDate           Date    `json:"db_date"`
	SimilarityScore  float64 `json:"similarity_score,omitempty"`
	AmountDifference float64 `json:"amount_difference,omitempty"`
}

// ImportResult is the response of the auto-confirm import endpoint.
type ImportResult struct {
	ConfirmedTransactions []Transaction     `json:"confirmed_transactions"`
	PotentialUpdates      []PotentialUpdate `json:"potential_updates"`
}

// UpdateDecision is the resolution payload for a PotentialUpdate. With a
// nil RecurringID, update_future degenerates to a single-transaction update
// server-side; the client passes the nil through untouched.
type UpdateDecision struct {
	TransactionID int64   `json:"transaction_id"`
	RecurringID   *int64  `json:"recurring_id"`
	NewAmount     float64 `json:"new_amount"`
	UpdateFuture  bool    `json:"update_future"`
}
