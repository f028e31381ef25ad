package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bankcore/loan-engine/internal/domain"
	"github.com/bankcore/loan-engine/internal/service"
	"github.com/bankcore/loan-engine/pkg/response"
)

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
	}
}

// authorize extracts the actor and enforces the allowed roles.
func (h *LoanHandler) authorize(w http.ResponseWriter, r *http.Request, roles ...string) (domain.Actor, bool) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return domain.Actor{}, false
	}
	if !hasRole(actor, roles...) {
		response.Forbidden(w, "Role is not allowed to perform this action")
		return domain.Actor{}, false
	}
	return actor, true
}

func (h *LoanHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid ID in path", err)
		return uuid.Nil, false
	}
	return id, true
}

// Funds

// GetAvailableFunds returns a snapshot of the bank's lendable capital.
func (h *LoanHandler) GetAvailableFunds(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, domain.RolePersonnel, domain.RoleProvider); !ok {
		return
	}

	funds, err := h.service.AvailableFunds(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, domain.AvailableFundsResponse{AvailableFunds: funds})
}

// AddFund records a provider contribution and credits the ledger.
func (h *LoanHandler) AddFund(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authorize(w, r, domain.RoleProvider)
	if !ok {
		return
	}

	var input domain.AddFundRequest
	if !h.decode(w, r, &input) {
		return
	}

	fund, err := h.service.AddFund(r.Context(), actor, input.Amount)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, fund)
}

// ListFunds returns the acting provider's contributions.
func (h *LoanHandler) ListFunds(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authorize(w, r, domain.RoleProvider)
	if !ok {
		return
	}

	funds, err := h.service.ListFunds(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, funds)
}

// Loan requests

// SubmitRequest creates a loan request for the acting customer.
func (h *LoanHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authorize(w, r, domain.RoleCustomer)
	if !ok {
		return
	}

	var input domain.SubmitRequestInput
	if !h.decode(w, r, &input) {
		return
	}

	request, err := h.service.SubmitRequest(r.Context(), actor, &input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, request)
}

// ListRequests lists loan requests visible to the actor; ?status= filters.
func (h *LoanHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authorize(w, r, domain.RoleCustomer, domain.RolePersonnel)
	if !ok {
		return
	}

	requests, err := h.service.ListRequests(r.Context(), actor, r.URL.Query().Get("status"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, requests)
}

// GetRequest returns one loan request with its documents.
func (h *LoanHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authorize(w, r, domain.RoleCustomer, domain.RolePersonnel)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	request, err := h.service.GetRequest(r.Context(), id, actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, request)
}

// SetConstraints applies personnel bounds to a pending request.
func (h *LoanHandler) SetConstraints(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, domain.RolePersonnel); !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var input domain.SetConstraintsInput
	if !h.decode(w, r, &input) {
		return
	}

	request, err := h.service.SetConstraints(r.Context(), id, &input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, request)
}

// SelectTerms records the customer's final amount and duration.
func (h *LoanHandler) SelectTerms(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authorize(w, r, domain.RoleCustomer)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var input domain.SelectTermsInput
	if !h.decode(w, r, &input) {
		return
	}

	request, err := h.service.SelectTerms(r.Context(), id, actor, &input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, request)
}

// Approve funds a pending-approval request and creates the loan.
func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, domain.RolePersonnel); !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.Approve(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, loan)
}

// Reject moves a non-terminal request to rejected.
func (h *LoanHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, domain.RolePersonnel); !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	request, err := h.service.Reject(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, request)
}

// Loans

// ListLoans lists loans visible to the actor; ?status= filters.
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authorize(w, r, domain.RoleCustomer, domain.RolePersonnel)
	if !ok {
		return
	}

	loans, err := h.service.ListLoans(r.Context(), actor, r.URL.Query().Get("status"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loans)
}

// GetLoan returns one loan, refreshing its status on read.
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authorize(w, r, domain.RoleCustomer, domain.RolePersonnel)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.GetLoan(r.Context(), id, actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// RecordPayment applies a repayment to a loan.
func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authorize(w, r, domain.RoleCustomer)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var input domain.RecordPaymentInput
	if !h.decode(w, r, &input) {
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), id, actor, input.AmountPaid)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, payment)
}

// ListPayments returns a loan's payment history.
func (h *LoanHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authorize(w, r, domain.RoleCustomer, domain.RolePersonnel)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(r.Context(), id, actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payments)
}
