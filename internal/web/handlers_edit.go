package web

// handlers_edit.go holds the handlers that change a session: sheet
// selection, cell edits, row insertion, and filters. Each accepts either a
// JSON body or a form post; JSON clients get the result back, browsers are
// redirected to the editor.

import (
	"net/http"
	"net/url"

	"github.com/JonMunkholm/SheetEdit/internal/core"
)

type selectSheetRequest struct {
	Index int `json:"index"`
}

type editCellRequest struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Value  string `json:"value"`
}

type filterRequest struct {
	Filters []string `json:"filters"`
	Search  string   `json:"search"`
	Mode    string   `json:"mode"`
}

type expressionRequest struct {
	Expression string `json:"expression"`
}

// done finishes a mutation: JSON clients get the session state, browsers a
// redirect back to the editor.
func (s *Server) done(w http.ResponseWriter, r *http.Request, sess *core.Session) {
	if wantsJSON(r) {
		s.writeState(w, r, sess, http.StatusOK)
		return
	}
	http.Redirect(w, r, workbookPath(sess.ID), http.StatusSeeOther)
}

func (s *Server) handleSelectSheet(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var req selectSheetRequest
	err := bind(r, &req, func(f url.Values) (err error) {
		req.Index, err = formInt(f, "index")
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.SelectSheet(r.Context(), sess.ID, req.Index); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.done(w, r, sess)
}

// handleEditCell validates and applies one cell edit. The row indexes the
// current (possibly filtered) view. A value that does not fit the column
// type is answered with 422 and changes nothing.
func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var req editCellRequest
	err := bind(r, &req, func(f url.Values) (err error) {
		if req.Row, err = formInt(f, "row"); err != nil {
			return err
		}
		if req.Column, err = formInt(f, "column"); err != nil {
			return err
		}
		req.Value = f.Get("value")
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.EditCell(r.Context(), sess.ID, req.Row, req.Column, req.Value)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, workbookPath(sess.ID), http.StatusSeeOther)
}

func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	row, err := s.service.AddRow(r.Context(), sess.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, map[string]int{"row": row})
		return
	}
	http.Redirect(w, r, workbookPath(sess.ID), http.StatusSeeOther)
}

// handleApplyFilters sets the per-column filters (repeated "filter" form
// fields, in column order), the global search, and the filter mode.
func (s *Server) handleApplyFilters(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var req filterRequest
	err := bind(r, &req, func(f url.Values) error {
		req.Filters = f["filter"]
		req.Search = f.Get("search")
		req.Mode = f.Get("mode")
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	mode := core.ParseFilterMode(req.Mode)
	if err := s.service.ApplyFilters(r.Context(), sess.ID, req.Filters, req.Search, mode); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.done(w, r, sess)
}

func (s *Server) handleApplyExpression(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var req expressionRequest
	err := bind(r, &req, func(f url.Values) error {
		req.Expression = f.Get("expression")
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.ApplyExpression(r.Context(), sess.ID, req.Expression); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.done(w, r, sess)
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := s.service.ClearFilters(r.Context(), sess.ID); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.done(w, r, sess)
}
