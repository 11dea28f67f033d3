package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/witalo/prestoras/internal/application"
	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/domain/fault"
)

// LedgerHandler exposes the loan ledger over HTTP.
type LedgerHandler struct {
	ledger *application.Ledger
	logger *slog.Logger
}

// NewLedgerHandler creates the ledger HTTP handler.
func NewLedgerHandler(ledger *application.Ledger, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, logger: logger}
}

// RegisterRoutes attaches the ledger routes to the given router.
func (h *LedgerHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1/companies/{companyID}").Subrouter()

	api.HandleFunc("/loans", h.createLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanID}", h.getLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanID}/payments", h.recordPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{paymentID}", h.annotatePayment).Methods(http.MethodPatch)
	api.HandleFunc("/loans/{loanID}/penalty-adjustments", h.adjustPenalty).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanID}/penalty-adjustments", h.listPenaltyAdjustments).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanID}/refinance", h.refinance).Methods(http.MethodPost)
	api.HandleFunc("/clients/{clientID}/reclassify", h.reclassifyClient).Methods(http.MethodPost)
}

func (h *LedgerHandler) createLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.CompanyID = mux.Vars(r)["companyID"]

	resp, err := h.ledger.CreateLoan(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *LedgerHandler) getLoan(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resp, err := h.ledger.GetLoan(r.Context(), dto.GetLoanRequest{
		CompanyID: vars["companyID"],
		LoanID:    vars["loanID"],
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	req.CompanyID = vars["companyID"]
	req.LoanID = vars["loanID"]

	resp, err := h.ledger.RecordPayment(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if resp.AlreadyApplied {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (h *LedgerHandler) annotatePayment(w http.ResponseWriter, r *http.Request) {
	var req dto.AnnotatePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	req.CompanyID = vars["companyID"]
	req.PaymentID = vars["paymentID"]

	resp, err := h.ledger.AnnotatePayment(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) adjustPenalty(w http.ResponseWriter, r *http.Request) {
	var req dto.AdjustPenaltyRequest
	if !h.decode(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	req.CompanyID = vars["companyID"]
	req.LoanID = vars["loanID"]

	resp, err := h.ledger.AdjustPenalty(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *LedgerHandler) listPenaltyAdjustments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resp, err := h.ledger.ListPenaltyAdjustments(r.Context(), dto.ListPenaltyAdjustmentsRequest{
		CompanyID: vars["companyID"],
		LoanID:    vars["loanID"],
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) refinance(w http.ResponseWriter, r *http.Request) {
	var req dto.RefinanceLoanRequest
	if !h.decode(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	req.CompanyID = vars["companyID"]
	req.LoanID = vars["loanID"]

	resp, err := h.ledger.Refinance(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *LedgerHandler) reclassifyClient(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resp, err := h.ledger.Reclassify(r.Context(), dto.ReclassifyClientRequest{
		CompanyID: vars["companyID"],
		ClientID:  vars["clientID"],
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return false
	}
	return true
}

func (h *LedgerHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, status, errorBody("internal error"))
		return
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func statusForError(err error) int {
	switch {
	case fault.IsKind(err, fault.KindValidation):
		return http.StatusBadRequest
	case fault.IsKind(err, fault.KindState):
		return http.StatusUnprocessableEntity
	case fault.IsKind(err, fault.KindConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
