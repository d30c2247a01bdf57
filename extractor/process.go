package extractor

import (
	"github.com/bmritz/grocerymail/extractor/common"
)

// Record is a parsed transaction together with its dedup key.
type Record struct {
	ID string `json:"id"`
	common.Transaction
}

// Result is everything extracted from one message.
type Result struct {
	Message      Message  `json:"message"`
	Layout       string   `json:"layout"`
	Transactions []Record `json:"transactions"`
	Errors       []string `json:"errors,omitempty"`
}

// Process extracts every transaction of msg, collecting unit errors instead
// of stopping at them.
func Process(msg Message) Result {
	result := Result{
		Message:      msg,
		Layout:       Detect(msg.Body).String(),
		Transactions: []Record{},
	}
	for txn, err := range MessageTransactions(msg) {
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Transactions = append(result.Transactions, Record{ID: txn.Fingerprint(), Transaction: txn})
	}
	return result
}

// CreateFinalOutput trims a result for printing. transactionOnly returns just
// the records; messageOnly drops them and the body.
func CreateFinalOutput(result Result, transactionOnly, messageOnly bool) interface{} {
	if transactionOnly {
		return result.Transactions
	}

	output := map[string]interface{}{
		"id":     result.Message.ID,
		"sender": result.Message.Sender,
		"layout": result.Layout,
	}
	if result.Message.AsOf != nil {
		output["as_of"] = result.Message.AsOf.Format("2006-01-02")
	}
	if len(result.Errors) > 0 {
		output["errors"] = result.Errors
	}
	if !messageOnly {
		output["transactions"] = result.Transactions
	}
	return output
}
