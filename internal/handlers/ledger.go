package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/ukydev/fleet-ledger/internal/models"
	"github.com/ukydev/fleet-ledger/internal/store"
	"github.com/ukydev/fleet-ledger/internal/validation"
)

var errEntryNotFound = errors.New("entry not found")

// LedgerHandler handles the free-floating misc expenses and the station and
// company pick lists
type LedgerHandler struct {
	local *store.Local
	now   func() time.Time
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(local *store.Local) *LedgerHandler {
	return &LedgerHandler{local: local, now: time.Now}
}

// ListExpenses returns the pending misc expenses, newest first
func (h *LedgerHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	h.read(w, r, func(st *store.State) interface{} { return st.MiscExpenses })
}

// AddExpense records a misc expense until a trip completion absorbs it
func (h *LedgerHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var expense models.MiscExpense
	h.write(w, r, &expense, http.StatusCreated, func(st *store.State) (interface{}, error) {
		if _, err := models.ParseExpenseCategory(string(expense.Category)); err != nil {
			return nil, validation.Fail("category", "must be a known category")
		}
		if expense.Date == "" {
			expense.Date = h.now().Format(models.DateLayout)
		}
		expense.ID = uuid.NewString()
		st.MiscExpenses = append([]models.MiscExpense{expense}, st.MiscExpenses...)
		return expense, nil
	})
}

// DeleteExpense removes a pending misc expense
func (h *LedgerHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.write(w, r, nil, http.StatusOK, func(st *store.State) (interface{}, error) {
		if !lo.ContainsBy(st.MiscExpenses, func(e models.MiscExpense) bool { return e.ID == id }) {
			return nil, errEntryNotFound
		}
		st.MiscExpenses = lo.Reject(st.MiscExpenses, func(e models.MiscExpense, _ int) bool { return e.ID == id })
		return st.MiscExpenses, nil
	})
}

// ListStations returns the fuel station pick list
func (h *LedgerHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	h.read(w, r, func(st *store.State) interface{} { return st.Stations })
}

// AddStation appends a fuel station to the pick list
func (h *LedgerHandler) AddStation(w http.ResponseWriter, r *http.Request) {
	h.addPlace(w, r, func(st *store.State) *[]models.Station { return &st.Stations })
}

// DeleteStation removes a fuel station from the pick list
func (h *LedgerHandler) DeleteStation(w http.ResponseWriter, r *http.Request) {
	h.deletePlace(w, r, func(st *store.State) *[]models.Station { return &st.Stations })
}

// ListCompanies returns the freight company pick list
func (h *LedgerHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	h.read(w, r, func(st *store.State) interface{} { return st.Companies })
}

// AddCompany appends a freight company to the pick list
func (h *LedgerHandler) AddCompany(w http.ResponseWriter, r *http.Request) {
	h.addPlace(w, r, func(st *store.State) *[]models.Station { return &st.Companies })
}

// DeleteCompany removes a freight company from the pick list
func (h *LedgerHandler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	h.deletePlace(w, r, func(st *store.State) *[]models.Station { return &st.Companies })
}

// addPlace adds a named entry to a pick list. Adding a name that is already
// listed returns the existing entry.
func (h *LedgerHandler) addPlace(w http.ResponseWriter, r *http.Request, list func(*store.State) *[]models.Station) {
	var place models.Station
	h.write(w, r, &place, http.StatusCreated, func(st *store.State) (interface{}, error) {
		place.Name = strings.TrimSpace(place.Name)
		if place.Name == "" {
			return nil, validation.Fail("name", "is required")
		}
		entries := list(st)
		if existing, ok := lo.Find(*entries, func(s models.Station) bool {
			return strings.EqualFold(s.Name, place.Name)
		}); ok {
			return existing, nil
		}
		place.ID = uuid.NewString()
		*entries = append(*entries, place)
		return place, nil
	})
}

func (h *LedgerHandler) deletePlace(w http.ResponseWriter, r *http.Request, list func(*store.State) *[]models.Station) {
	id := r.PathValue("id")
	h.write(w, r, nil, http.StatusOK, func(st *store.State) (interface{}, error) {
		entries := list(st)
		if !lo.ContainsBy(*entries, func(s models.Station) bool { return s.ID == id }) {
			return nil, errEntryNotFound
		}
		*entries = lo.Reject(*entries, func(s models.Station, _ int) bool { return s.ID == id })
		return *entries, nil
	})
}

func (h *LedgerHandler) read(w http.ResponseWriter, r *http.Request, pick func(*store.State) interface{}) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.local.Load(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pick(st))
}

// write decodes the body into req when given and runs fn inside a local
// store transaction. Nothing is stored when fn fails.
func (h *LedgerHandler) write(w http.ResponseWriter, r *http.Request, req interface{}, status int, fn func(*store.State) (interface{}, error)) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req != nil {
		if err := decode(r, req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	var out interface{}
	err = h.local.Update(r.Context(), claims.UserID, func(st *store.State) error {
		var err error
		out, err = fn(st)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, out)
}
