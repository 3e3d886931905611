package web

import (
	"net/http"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
	"github.com/robinvdvleuten/moneybook/oven"
)

// LedgerResponse is the JSON response structure for the ledger endpoint.
type LedgerResponse struct {
	Account  AccountInfo `json:"account"`
	From     string      `json:"from"`
	To       string      `json:"to"`
	Previous string      `json:"previous"`
	Entries  []EntryInfo `json:"entries"`
	Increase string      `json:"increase"`
	Decrease string      `json:"decrease"`
	Ending   string      `json:"ending"`
	Mixed    bool        `json:"mixedCurrencies,omitempty"`
}

// EntryInfo is one line of an account ledger.
type EntryInfo struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Description  string `json:"description"`
	Payee        string `json:"payee,omitempty"`
	Kind         string `json:"kind"`
	Amount       string `json:"amount"`
	Balance      string `json:"balance"`
	Reconciled   string `json:"reconciled,omitempty"`
	CanReconcile bool   `json:"canReconcile"`
}

// handleGetLedger handles GET requests to /api/ledger.
//
// Query parameters:
//   - account: account id, name or number (required).
//   - from, to: range bounds in YYYY-MM-DD format. Missing bounds keep the
//     current range of the document.
func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	ctx := s.requestContext(r)
	q := r.URL.Query()

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.findAccount(q.Get("account"))
	if a == nil {
		writeError(w, &ledger.NotFoundError{Kind: ledger.KindAccount, ID: q.Get("account")})
		return
	}

	rng := s.doc.Range()
	for _, bound := range []struct {
		name string
		dst  *date.Date
	}{{"from", &rng.From}, {"to", &rng.To}} {
		text := q.Get(bound.name)
		if text == "" {
			continue
		}
		d, err := date.Parse(text)
		if err != nil {
			writeError(w, &ledger.InvalidInputError{Field: bound.name, Value: text, Err: err})
			return
		}
		*bound.dst = d
	}
	if rng.To.Before(rng.From) {
		writeError(w, &ledger.InvalidInputError{Field: "to", Value: rng.To.String()})
		return
	}
	s.doc.SetRange(ctx, rng)

	l := s.doc.View().Ledger(a.ID)
	resp := &LedgerResponse{
		Account:  AccountInfo{ID: a.ID, Name: a.Name, DisplayName: a.DisplayName(), Type: a.Type.String(), Currency: a.Currency, Balance: l.Ending.Format(false)},
		From:     rng.From.String(),
		To:       rng.To.String(),
		Previous: l.Previous.Format(false),
		Entries:  make([]EntryInfo, 0, len(l.Entries)),
		Increase: l.Increase.Format(false),
		Decrease: l.Decrease.Format(false),
		Ending:   l.Ending.Format(false),
		Mixed:    l.MixedCurrencies,
	}
	for _, e := range l.Entries {
		resp.Entries = append(resp.Entries, entryInfo(l, e))
	}

	writeJSONResponse(w, resp)
}

func entryInfo(l *oven.AccountLedger, e *oven.Entry) EntryInfo {
	return EntryInfo{
		ID:           e.Txn.ID,
		Date:         e.Txn.Date.String(),
		Description:  e.Txn.Description,
		Payee:        e.Txn.Payee,
		Kind:         e.Txn.Kind.String(),
		Amount:       e.Split.Amount.String(),
		Balance:      e.Balance.Format(false),
		Reconciled:   e.Split.ReconciliationDate.String(),
		CanReconcile: l.CanReconcile(e),
	}
}

// findAccount resolves an account by id, name or number. Caller must hold the mutex.
func (s *Server) findAccount(text string) *ledger.Account {
	if text == "" {
		return nil
	}
	if a := s.doc.Account(text); a != nil {
		return a
	}
	if a := s.doc.AccountByName(text); a != nil {
		return a
	}
	for _, a := range s.doc.Accounts() {
		if a.Number == text {
			return a
		}
	}
	return nil
}
