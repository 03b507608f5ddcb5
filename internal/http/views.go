package http

import (
	"context"

	"nabungemas/internal/core"
	"nabungemas/internal/form"
	"nabungemas/internal/presenter"
)

// page carries what the shared layout needs.
type page struct {
	Title string
	Nav   string
}

type savingsPage struct {
	page
	List presenter.List[core.Saving]
	Form savingForm
}

type savingForm struct {
	Draft      form.SavingDraft
	Categories []string
	Invalid    bool
}

type transactionsPage struct {
	page
	List presenter.List[core.Transaction]
}

type transactionForm struct {
	State      form.State
	Categories []string
	Products   []string
}

type newTransactionPage struct {
	page
	Form transactionForm
}

type aboutPage struct {
	page
	AppName   string
	Statement string
	Version   string
	Copyright string
}

func (s *Server) savingList(ctx context.Context) (presenter.List[core.Saving], []core.Saving, error) {
	savings, err := s.vm.Savings(ctx)
	if err != nil {
		return presenter.List[core.Saving]{}, nil, err
	}
	return presenter.Present(savings, presenter.SavingKey, s.savingConfirm.Pending), savings, nil
}

func (s *Server) transactionList(ctx context.Context) (presenter.List[core.Transaction], []core.Transaction, error) {
	txs, err := s.vm.Transactions(ctx)
	if err != nil {
		return presenter.List[core.Transaction]{}, nil, err
	}
	return presenter.Present(txs, presenter.TransactionKey, s.transactionConfirm.Pending), txs, nil
}

func (s *Server) newSavingForm(d form.SavingDraft, savings []core.Saving, invalid bool) savingForm {
	return savingForm{
		Draft:      d,
		Categories: categoryOptions(s.options.SavingCategories(), savings),
		Invalid:    invalid,
	}
}

func (s *Server) newTransactionForm(ctx context.Context, state form.State) transactionForm {
	// A failed read only costs the existing goals their place in the list.
	savings, _ := s.vm.Savings(ctx)
	return transactionForm{
		State:      state,
		Categories: categoryOptions(s.options.SavingCategories(), savings),
		Products:   s.options.Products(),
	}
}

func findSaving(savings []core.Saving, category string) (core.Saving, bool) {
	for _, sv := range savings {
		if sv.Category == category {
			return sv, true
		}
	}
	return core.Saving{}, false
}

func findTransaction(txs []core.Transaction, id int64) (core.Transaction, bool) {
	for _, t := range txs {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}
