package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/logging"
	"github.com/carson-networks/account-lifecycle-server/internal/service"
)

// ChangeStatusInput is the Huma input for changing an account status.
type ChangeStatusInput struct {
	PrincipalHeaders
	ID   string `path:"id" doc:"Account UUID"`
	Body ChangeStatusBody
}

// ChangeStatusBody is the request body for changing an account status.
type ChangeStatusBody struct {
	Status       string `json:"status" enum:"ACTIVE,BLOCKED,CLOSED" doc:"Target status"`
	Reason       string `json:"reason,omitempty" maxLength:"500" doc:"Block reason, required when blocking"`
	DurationDays int    `json:"durationDays,omitempty" minimum:"0" maximum:"365" doc:"Block duration in days, required when blocking"`
}

// ChangeStatusOutput is the Huma output for changing an account status.
type ChangeStatusOutput struct {
	Body Account
}

type statusChanger interface {
	ChangeStatus(ctx context.Context, p domain.Principal, id uuid.UUID, change service.StatusChange) (*service.AccountView, error)
}

// ChangeStatusHandler handles PATCH /v1/accounts/{id}/status.
type ChangeStatusHandler struct {
	AccountService statusChanger
}

// NewChangeStatusHandler creates a new ChangeStatusHandler.
func NewChangeStatusHandler(svc statusChanger) *ChangeStatusHandler {
	return &ChangeStatusHandler{AccountService: svc}
}

// Register registers the change status endpoint with the Huma API.
func (h *ChangeStatusHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "change-account-status",
		Method:      http.MethodPatch,
		Path:        "/v1/accounts/{id}/status",
		Summary:     "Change an account status",
		Description: "Blocks, unblocks, closes or reactivates an account. Admin only.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func parseChangeStatusInput(input *ChangeStatusInput) (service.StatusChange, error) {
	change := service.StatusChange{
		Status:       domain.AccountStatus(input.Body.Status),
		Reason:       input.Body.Reason,
		DurationDays: input.Body.DurationDays,
	}
	if !change.Status.Valid() {
		return service.StatusChange{}, huma.Error400BadRequest("status must be ACTIVE, BLOCKED or CLOSED")
	}
	if change.Status == domain.AccountStatusBlocked && change.DurationDays < 1 {
		return service.StatusChange{}, huma.Error400BadRequest("durationDays must be between 1 and 365 when blocking")
	}
	return change, nil
}

func (h *ChangeStatusHandler) handle(ctx context.Context, input *ChangeStatusInput) (*ChangeStatusOutput, error) {
	logData := logging.GetLogData(ctx)

	principal, err := input.Principal()
	if err != nil {
		return nil, toHTTPError(logData, err)
	}
	id, err := parseAccountID(input.ID)
	if err != nil {
		return nil, toHTTPError(logData, err)
	}
	change, err := parseChangeStatusInput(input)
	if err != nil {
		return nil, toHTTPError(logData, err)
	}
	if logData != nil {
		logData.AddData("accountID", id.String())
		logData.AddData("targetStatus", string(change.Status))
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("changeStatusMs")
	}
	view, err := h.AccountService.ChangeStatus(ctx, principal, id, change)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, toHTTPError(logData, err)
	}

	return &ChangeStatusOutput{Body: toAccount(view)}, nil
}
