package http

import (
	"net/http"
	"strconv"

	"nabungemas/internal/form"
	"nabungemas/internal/log"
	"nabungemas/internal/presenter"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	list, _, err := s.transactionList(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "transactions.html", transactionsPage{
		page: page{Title: "Transaction", Nav: "transactions"},
		List: list,
	})
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	list, _, err := s.transactionList(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "transaction-list", list)
}

// handleNewTransaction starts an empty draft. ?saving_category= preselects a
// goal.
func (s *Server) handleNewTransaction(w http.ResponseWriter, r *http.Request) {
	var d form.Draft
	if c := sanitizeInput(r.URL.Query().Get(string(form.FieldSavingCategory))); c != "" {
		d = form.Apply(d, form.Edit{Field: form.FieldSavingCategory, Value: c})
	}
	s.render(w, r, http.StatusOK, "transaction_new.html", newTransactionPage{
		page: page{Title: "Add Transaction", Nav: "transactions"},
		Form: s.newTransactionForm(r.Context(), form.NewState(d)),
	})
}

// handleTransactionFormEdit re-renders the form after one field changed so
// the save button follows the draft's validity.
func (s *Server) handleTransactionFormEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid form submission").Write(w)
		return
	}
	draft := parseTransactionDraft(r.PostForm)
	state := form.NewState(draft)
	if f := editedField(r); f != "" {
		state = form.Reduce(state, form.Edit{Field: f, Value: draft.Get(f)})
	}
	s.render(w, r, http.StatusOK, "transaction-form", s.newTransactionForm(r.Context(), state))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid form submission").Write(w)
		return
	}
	ctx := r.Context()
	state := form.NewState(parseTransactionDraft(r.PostForm))

	if !state.EntryValid {
		f := s.newTransactionForm(ctx, state)
		if isHTMX(r) {
			s.render(w, r, http.StatusUnprocessableEntity, "transaction-form", f)
			return
		}
		s.render(w, r, http.StatusUnprocessableEntity, "transaction_new.html", newTransactionPage{
			page: page{Title: "Add Transaction", Nav: "transactions"},
			Form: f,
		})
		return
	}

	if _, err := s.vm.AddTransaction(ctx, state.Draft); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	if !isHTMX(r) {
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}
	NewHTMXResponse().
		Redirect("/transactions").
		TriggerTransactionsChanged().
		TriggerSavingsChanged().
		Write(w)
}

func (s *Server) handleRequestTransactionDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseTransactionID(r.PathValue("id"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	txs, err := s.vm.Transactions(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	t, ok := findTransaction(txs, id)
	if !ok {
		NotFoundError("Transaction not found").Write(w)
		return
	}
	s.transactionConfirm.Request(presenter.TransactionKey(t), t)
	s.transactionsChanged(w, r, false)
}

func (s *Server) handleConfirmTransactionDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseTransactionID(r.PathValue("id"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid form submission").Write(w)
		return
	}
	accept, err := parseAccept(r.PostForm.Get("accept"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	deleted, err := s.transactionConfirm.Resolve(r.Context(), strconv.FormatInt(id, 10), accept)
	if err != nil {
		s.writeError(w, r, log.OpConfirm, err)
		return
	}
	s.transactionsChanged(w, r, deleted)
}

func (s *Server) transactionsChanged(w http.ResponseWriter, r *http.Request, changed bool) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}
	list, _, err := s.transactionList(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	b := NewHTMXResponse()
	if changed {
		// Deleting a purchase also lowers its goal's total.
		b.TriggerTransactionsChanged().TriggerSavingsChanged()
	}
	s.respond(w, r, b, "transaction-list", list)
}
