package web

import (
	"net/http"

	"github.com/robinvdvleuten/moneybook/ledger"
)

// AccountInfo represents an account with its balance at the end of the view range.
type AccountInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
	Currency    string `json:"currency"`
	Group       string `json:"group,omitempty"`
	Balance     string `json:"balance"`
	AutoCreated bool   `json:"autoCreated,omitempty"`
}

// AccountsResponse is the JSON response structure for the accounts endpoint.
type AccountsResponse struct {
	Accounts []AccountInfo `json:"accounts"`
}

// handleGetAccounts handles GET requests to /api/accounts.
// Returns all accounts grouped by type, in document order within a type.
func (s *Server) handleGetAccounts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := make(map[string]string)
	for _, g := range s.doc.Groups() {
		groups[g.ID] = g.Name
	}

	all := s.doc.Accounts()
	accounts := make([]AccountInfo, 0, len(all))
	for _, typ := range []ledger.AccountType{ledger.Asset, ledger.Liability, ledger.Income, ledger.Expense} {
		for _, a := range all {
			if a.Type != typ {
				continue
			}
			info := AccountInfo{
				ID:          a.ID,
				Name:        a.Name,
				DisplayName: a.DisplayName(),
				Type:        a.Type.String(),
				Currency:    a.Currency,
				Group:       groups[a.GroupID],
				AutoCreated: a.AutoCreated,
			}
			if l := s.doc.View().Ledger(a.ID); l != nil {
				info.Balance = l.Ending.Format(false)
			}
			accounts = append(accounts, info)
		}
	}

	writeJSONResponse(w, &AccountsResponse{Accounts: accounts})
}
