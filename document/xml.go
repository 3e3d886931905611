package document

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/robinvdvleuten/moneybook/date"
	"github.com/robinvdvleuten/moneybook/ledger"
	"github.com/robinvdvleuten/moneybook/telemetry"
	"go.uber.org/zap"
)

const formatVersion = 1

type xmlDocument struct {
	XMLName      xml.Name         `xml:"moneybook"`
	Version      int              `xml:"version,attr"`
	Groups       []xmlGroup       `xml:"group"`
	Accounts     []xmlAccount     `xml:"account"`
	Transactions []xmlTransaction `xml:"transaction"`
	Schedules    []xmlSchedule    `xml:"schedule"`
	Budgets      []xmlBudget      `xml:"budget"`
}

type xmlGroup struct {
	ID   string             `xml:"id,attr"`
	Name string             `xml:"name,attr"`
	Type ledger.AccountType `xml:"type,attr"`
}

type xmlAccount struct {
	ID          string             `xml:"id,attr"`
	Name        string             `xml:"name,attr"`
	Type        ledger.AccountType `xml:"type,attr"`
	Currency    string             `xml:"currency,attr"`
	Number      string             `xml:"number,attr,omitempty"`
	Group       string             `xml:"group,attr,omitempty"`
	AutoCreated bool               `xml:"autocreated,attr,omitempty"`
	Notes       string             `xml:"notes,omitempty"`
}

type xmlSplit struct {
	Account    string `xml:"account,attr,omitempty"`
	Amount     string `xml:"amount,attr"`
	Memo       string `xml:"memo,attr,omitempty"`
	Reconciled string `xml:"reconciliation_date,attr,omitempty"`
}

type xmlTransaction struct {
	ID          string     `xml:"id,attr"`
	Date        string     `xml:"date,attr"`
	Description string     `xml:"description,attr,omitempty"`
	Payee       string     `xml:"payee,attr,omitempty"`
	CheckNumber string     `xml:"checkno,attr,omitempty"`
	Position    int        `xml:"position,attr,omitempty"`
	Notes       string     `xml:"notes,omitempty"`
	Splits      []xmlSplit `xml:"split"`
}

type xmlRule struct {
	Type  ledger.RepeatType `xml:"repeat_type,attr"`
	Every int               `xml:"repeat_every,attr"`
	Start string            `xml:"start,attr"`
	Stop  string            `xml:"stop,attr,omitempty"`
	Count int               `xml:"count,attr,omitempty"`
}

type xmlException struct {
	Date     string          `xml:"date,attr"`
	Deleted  bool            `xml:"deleted,attr,omitempty"`
	Override *xmlTransaction `xml:"override,omitempty"`
}

type xmlSchedule struct {
	ID string `xml:"id,attr"`
	xmlRule
	Template   xmlTransaction `xml:"template"`
	Exceptions []xmlException `xml:"exception"`
}

type xmlBudget struct {
	ID      string `xml:"id,attr"`
	Account string `xml:"account,attr"`
	Target  string `xml:"target,attr,omitempty"`
	Amount  string `xml:"amount,attr"`
	xmlRule
	Notes string `xml:"notes,omitempty"`
}

func formatDate(d date.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func parseDate(s string) (date.Date, error) {
	if s == "" {
		return date.Date{}, nil
	}
	return date.Parse(s)
}

func formatAmount(a ledger.Amount) string {
	return strings.TrimSpace(a.Value.String() + " " + a.Currency)
}

func encodeRule(r ledger.Recurrence) xmlRule {
	return xmlRule{Type: r.Type, Every: r.Every, Start: formatDate(r.Start), Stop: formatDate(r.Stop), Count: r.Count}
}

func encodeTransaction(t *ledger.Transaction) xmlTransaction {
	x := xmlTransaction{
		ID:          t.ID,
		Date:        formatDate(t.Date),
		Description: t.Description,
		Payee:       t.Payee,
		CheckNumber: t.CheckNumber,
		Position:    t.Position,
		Notes:       t.Notes,
	}
	for _, s := range t.Splits {
		x.Splits = append(x.Splits, xmlSplit{
			Account:    s.AccountID,
			Amount:     formatAmount(s.Amount),
			Memo:       s.Memo,
			Reconciled: formatDate(s.ReconciliationDate),
		})
	}
	return x
}

func encode(b *ledger.Book) xmlDocument {
	doc := xmlDocument{Version: formatVersion}
	for _, g := range b.Groups() {
		doc.Groups = append(doc.Groups, xmlGroup{ID: g.ID, Name: g.Name, Type: g.Type})
	}
	for _, a := range b.Accounts() {
		doc.Accounts = append(doc.Accounts, xmlAccount{
			ID: a.ID, Name: a.Name, Type: a.Type, Currency: a.Currency,
			Number: a.Number, Group: a.GroupID, AutoCreated: a.AutoCreated, Notes: a.Notes,
		})
	}
	for _, t := range b.Transactions() {
		doc.Transactions = append(doc.Transactions, encodeTransaction(t))
	}
	for _, s := range b.Schedules() {
		xs := xmlSchedule{ID: s.ID, xmlRule: encodeRule(s.Rule), Template: encodeTransaction(s.Template)}
		for _, d := range slices.SortedFunc(maps.Keys(s.Exceptions), date.Date.Compare) {
			e := s.Exceptions[d]
			xe := xmlException{Date: formatDate(d), Deleted: e.Deleted}
			if e.Override != nil {
				o := encodeTransaction(e.Override)
				xe.Override = &o
			}
			xs.Exceptions = append(xs.Exceptions, xe)
		}
		doc.Schedules = append(doc.Schedules, xs)
	}
	for _, bg := range b.Budgets() {
		doc.Budgets = append(doc.Budgets, xmlBudget{
			ID: bg.ID, Account: bg.AccountID, Target: bg.TargetID,
			Amount: formatAmount(bg.Amount), xmlRule: encodeRule(bg.Rule), Notes: bg.Notes,
		})
	}
	return doc
}

func decodeRule(x xmlRule) (ledger.Recurrence, error) {
	start, err := parseDate(x.Start)
	if err != nil {
		return ledger.Recurrence{}, err
	}
	stop, err := parseDate(x.Stop)
	if err != nil {
		return ledger.Recurrence{}, err
	}
	return ledger.Recurrence{Start: start, Type: x.Type, Every: x.Every, Stop: stop, Count: x.Count}, nil
}

func decodeTransaction(x xmlTransaction) (*ledger.Transaction, error) {
	on, err := parseDate(x.Date)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", x.ID, err)
	}
	t := &ledger.Transaction{
		ID:          x.ID,
		Date:        on,
		Description: x.Description,
		Payee:       x.Payee,
		CheckNumber: x.CheckNumber,
		Position:    x.Position,
		Notes:       x.Notes,
	}
	for _, xs := range x.Splits {
		amount, err := ledger.ParseAmount(xs.Amount, "", false)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", x.ID, err)
		}
		rec, err := parseDate(xs.Reconciled)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", x.ID, err)
		}
		t.Splits = append(t.Splits, ledger.Split{AccountID: xs.Account, Amount: amount, Memo: xs.Memo, ReconciliationDate: rec})
	}
	return t, nil
}

func decode(doc xmlDocument) (*ledger.Book, error) {
	if doc.Version > formatVersion {
		return nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}
	b := ledger.NewBook()
	for _, x := range doc.Groups {
		if err := b.AddGroup(&ledger.Group{ID: x.ID, Name: x.Name, Type: x.Type}); err != nil {
			return nil, err
		}
	}
	for _, x := range doc.Accounts {
		a := &ledger.Account{
			ID: x.ID, Name: x.Name, Type: x.Type, Currency: x.Currency,
			Number: x.Number, GroupID: x.Group, AutoCreated: x.AutoCreated, Notes: x.Notes,
		}
		if err := b.AddAccount(a); err != nil {
			return nil, err
		}
	}
	for _, x := range doc.Transactions {
		t, err := decodeTransaction(x)
		if err != nil {
			return nil, err
		}
		if err := b.AddTransaction(t, -1); err != nil {
			return nil, err
		}
	}
	for _, x := range doc.Schedules {
		rule, err := decodeRule(x.xmlRule)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", x.ID, err)
		}
		tmpl, err := decodeTransaction(x.Template)
		if err != nil {
			return nil, err
		}
		s := &ledger.Schedule{ID: x.ID, Rule: rule, Exceptions: make(map[date.Date]ledger.Exception)}
		s.SetTemplate(tmpl)
		for _, xe := range x.Exceptions {
			on, err := parseDate(xe.Date)
			if err != nil {
				return nil, fmt.Errorf("schedule %s: %w", x.ID, err)
			}
			if xe.Override == nil {
				s.Delete(on)
				continue
			}
			o, err := decodeTransaction(*xe.Override)
			if err != nil {
				return nil, err
			}
			s.Override(on, o)
		}
		if err := b.AddSchedule(s); err != nil {
			return nil, err
		}
	}
	for _, x := range doc.Budgets {
		rule, err := decodeRule(x.xmlRule)
		if err != nil {
			return nil, fmt.Errorf("budget %s: %w", x.ID, err)
		}
		amount, err := ledger.ParseAmount(x.Amount, "", false)
		if err != nil {
			return nil, fmt.Errorf("budget %s: %w", x.ID, err)
		}
		bg := &ledger.Budget{ID: x.ID, AccountID: x.Account, TargetID: x.Target, Amount: amount, Rule: rule, Notes: x.Notes}
		if err := b.AddBudget(bg); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Save writes the document as XML.
func (d *Document) Save(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(encode(d.book)); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return nil
}

// Load replaces the content of the document with the XML read from r. The undo
// history is cleared and the loaded state is the save point.
func (d *Document) Load(ctx context.Context, r io.Reader) error {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	b, err := decode(doc)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	d.book = b
	d.log = d.newLog()
	d.savePoint = nil
	d.cook(ctx)
	d.notify(Event{Kind: EventLoaded})
	return nil
}

// LoadFromXML loads the document from the file at path.
func (d *Document) LoadFromXML(ctx context.Context, path string) error {
	timer := telemetry.FromContext(ctx).Start("load " + path)
	defer timer.End()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := d.Load(ctx, f); err != nil {
		return err
	}
	d.path = path
	timer.Count(len(d.book.Accounts()), "accounts")
	timer.Count(len(d.book.Transactions()), "transactions")
	timer.Count(len(d.book.Schedules()), "schedules")
	d.logger.Info("document loaded",
		zap.String("path", path),
		zap.Int("accounts", len(d.book.Accounts())),
		zap.Int("transactions", len(d.book.Transactions())),
		zap.Int("schedules", len(d.book.Schedules())))
	return nil
}

// SaveToXML writes the document to the file at path and makes the current
// state the save point.
func (d *Document) SaveToXML(ctx context.Context, path string) error {
	timer := telemetry.FromContext(ctx).Start("save " + path)
	defer timer.End()

	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		return err
	}
	timer.Count(buf.Len(), "bytes")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	d.path = path
	d.MarkSaved()
	d.notify(Event{Kind: EventSaved})
	d.logger.Info("document saved", zap.String("path", path))
	return nil
}
