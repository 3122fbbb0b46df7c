package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/logging"
	"github.com/carson-networks/account-lifecycle-server/internal/service"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// ListArchivedInput is the Huma input for listing the cold store.
type ListArchivedInput struct {
	PrincipalHeaders
	ListQuery
}

// RestoreArchivedInput is the Huma input for restoring one archived account.
type RestoreArchivedInput struct {
	PrincipalHeaders
	ID string `path:"id" doc:"Archived account UUID"`
}

// RestoreArchivedOutput is the Huma output for restoring one archived account.
type RestoreArchivedOutput struct {
	Body Account
}

type archiveService interface {
	ListArchived(ctx context.Context, p domain.Principal, query sqlconfig.AccountQuery) (*service.AccountPage, error)
	RestoreFromColdStore(ctx context.Context, p domain.Principal, id uuid.UUID) (*service.AccountView, error)
}

// ArchivedAccountsHandler handles the /v1/archived-accounts endpoints.
type ArchivedAccountsHandler struct {
	AccountService archiveService
}

// NewArchivedAccountsHandler creates a new ArchivedAccountsHandler.
func NewArchivedAccountsHandler(svc archiveService) *ArchivedAccountsHandler {
	return &ArchivedAccountsHandler{AccountService: svc}
}

// Register registers the archived account endpoints with the Huma API.
func (h *ArchivedAccountsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-archived-accounts",
		Method:      http.MethodGet,
		Path:        "/v1/archived-accounts",
		Summary:     "List archived accounts",
		Description: "Returns a page of accounts held by the cold store. Admin only.",
		Tags:        []string{"Archived accounts"},
	}, h.list)

	huma.Register(api, huma.Operation{
		OperationID: "restore-archived-account",
		Method:      http.MethodPost,
		Path:        "/v1/archived-accounts/{id}/restore",
		Summary:     "Restore an archived account",
		Description: "Moves the account out of the cold store back into the primary store as ACTIVE. Admin only.",
		Tags:        []string{"Archived accounts"},
	}, h.restore)
}

func (h *ArchivedAccountsHandler) list(ctx context.Context, input *ListArchivedInput) (*ListAccountsOutput, error) {
	logData := logging.GetLogData(ctx)

	principal, err := input.Principal()
	if err != nil {
		return nil, toHTTPError(logData, err)
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listArchivedMs")
	}
	page, err := h.AccountService.ListArchived(ctx, principal, input.toAccountQuery())
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, toHTTPError(logData, err)
	}

	if logData != nil {
		logData.AddData("accountCount", len(page.Items))
	}
	return &ListAccountsOutput{Body: toListBody(page)}, nil
}

func (h *ArchivedAccountsHandler) restore(ctx context.Context, input *RestoreArchivedInput) (*RestoreArchivedOutput, error) {
	logData := logging.GetLogData(ctx)

	principal, err := input.Principal()
	if err != nil {
		return nil, toHTTPError(logData, err)
	}
	id, err := parseAccountID(input.ID)
	if err != nil {
		return nil, toHTTPError(logData, err)
	}
	if logData != nil {
		logData.AddData("accountID", id.String())
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("restoreMs")
	}
	view, err := h.AccountService.RestoreFromColdStore(ctx, principal, id)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, toHTTPError(logData, err)
	}

	return &RestoreArchivedOutput{Body: toAccount(view)}, nil
}
