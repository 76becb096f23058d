package core

// AggregationResult is the reduction of a transaction set over a report
// period. It is computed fresh for every report and never persisted.
//
// Accounts only tracks balances for the known payment modes supplied to
// Aggregate. Transactions recorded against an unknown mode still count
// toward the totals and the transaction count but contribute to no
// per-mode balance, so TotalBalance can differ from Net.
type AggregationResult struct {
	TotalCredit      Money            `json:"totalCredit"`
	TotalDebit       Money            `json:"totalDebit"`
	Net              Money            `json:"net"`
	Accounts         map[string]Money `json:"accounts"`
	TransactionCount int              `json:"transactionCount"`
}

// Aggregate reduces transactions into per-mode balances and overall
// totals. The result is independent of input order and all sums are zero
// for an empty input. It is a pure function over its arguments.
func Aggregate(txs []Transaction, modes []PaymentMode) AggregationResult {
	res := AggregationResult{
		Accounts:         make(map[string]Money, len(modes)),
		TransactionCount: len(txs),
	}
	for _, m := range modes {
		res.Accounts[m.ID] = Money{}
	}
	for _, tx := range txs {
		switch tx.Type {
		case Credit:
			res.TotalCredit = res.TotalCredit.Add(tx.Amount)
		case Debit:
			res.TotalDebit = res.TotalDebit.Add(tx.Amount)
		}
		if bal, known := res.Accounts[tx.Mode]; known {
			res.Accounts[tx.Mode] = Money{Cents: bal.Cents + tx.Type.Sign()*tx.Amount.Cents}
		}
	}
	res.Net = res.TotalCredit.Sub(res.TotalDebit)
	return res
}

// TotalBalance sums all per-mode balances.
func (r AggregationResult) TotalBalance() Money {
	var total Money
	for _, bal := range r.Accounts {
		total = total.Add(bal)
	}
	return total
}
