package http

import (
	"net/http"

	"nabungemas/internal/form"
	"nabungemas/internal/log"
)

func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	list, savings, err := s.savingList(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "savings.html", savingsPage{
		page: page{Title: "Saving", Nav: "savings"},
		List: list,
		Form: s.newSavingForm(form.SavingDraft{}, savings, false),
	})
}

// handleSavingList renders just the list, for live updates.
func (s *Server) handleSavingList(w http.ResponseWriter, r *http.Request) {
	list, _, err := s.savingList(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "saving-list", list)
}

func (s *Server) handleCreateSaving(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid form submission").Write(w)
		return
	}
	ctx := r.Context()
	draft := parseSavingDraft(r.PostForm)

	if !form.ValidSaving(draft) {
		list, savings, err := s.savingList(ctx)
		if err != nil {
			s.writeError(w, r, log.OpList, err)
			return
		}
		f := s.newSavingForm(draft, savings, true)
		if isHTMX(r) {
			s.render(w, r, http.StatusUnprocessableEntity, "saving-form", f)
			return
		}
		s.render(w, r, http.StatusUnprocessableEntity, "savings.html", savingsPage{
			page: page{Title: "Saving", Nav: "savings"},
			List: list,
			Form: f,
		})
		return
	}

	if err := s.vm.AddSaving(ctx, draft); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	if !isHTMX(r) {
		http.Redirect(w, r, "/savings", http.StatusSeeOther)
		return
	}
	savings, _ := s.vm.Savings(ctx)
	s.respond(w, r, NewHTMXResponse().TriggerSavingsChanged(),
		"saving-form", s.newSavingForm(form.SavingDraft{}, savings, false))
}

func (s *Server) handleRequestSavingDelete(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	savings, err := s.vm.Savings(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	saving, ok := findSaving(savings, category)
	if !ok {
		NotFoundError("Saving not found").Write(w)
		return
	}
	s.savingConfirm.Request(category, saving)
	s.savingsChanged(w, r, false)
}

func (s *Server) handleConfirmSavingDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid form submission").Write(w)
		return
	}
	accept, err := parseAccept(r.PostForm.Get("accept"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	deleted, err := s.savingConfirm.Resolve(r.Context(), r.PathValue("category"), accept)
	if err != nil {
		s.writeError(w, r, log.OpConfirm, err)
		return
	}
	s.savingsChanged(w, r, deleted)
}

// savingsChanged answers a row action: the fresh list for the page script,
// a redirect back to the list otherwise.
func (s *Server) savingsChanged(w http.ResponseWriter, r *http.Request, changed bool) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/savings", http.StatusSeeOther)
		return
	}
	list, _, err := s.savingList(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	b := NewHTMXResponse()
	if changed {
		b.TriggerSavingsChanged()
	}
	s.respond(w, r, b, "saving-list", list)
}
