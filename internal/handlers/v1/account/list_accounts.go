package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/logging"
	"github.com/carson-networks/account-lifecycle-server/internal/service"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// ListAccountsInput is the Huma input for listing live accounts.
type ListAccountsInput struct {
	PrincipalHeaders
	ListQuery
}

// ListAccountsOutput is the Huma output for listing accounts.
type ListAccountsOutput struct {
	Body AccountListBody
}

type accountLister interface {
	ListAccounts(ctx context.Context, p domain.Principal, query sqlconfig.AccountQuery) (*service.AccountPage, error)
}

// ListAccountsHandler handles GET /v1/accounts.
type ListAccountsHandler struct {
	AccountService accountLister
}

// NewListAccountsHandler creates a new ListAccountsHandler.
func NewListAccountsHandler(svc accountLister) *ListAccountsHandler {
	return &ListAccountsHandler{AccountService: svc}
}

// Register registers the list accounts endpoint with the Huma API.
func (h *ListAccountsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-accounts",
		Method:      http.MethodGet,
		Path:        "/v1/accounts",
		Summary:     "List accounts",
		Description: "Returns a page of live accounts. Clients only see their own accounts.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *ListAccountsHandler) handle(ctx context.Context, input *ListAccountsInput) (*ListAccountsOutput, error) {
	logData := logging.GetLogData(ctx)

	principal, err := input.Principal()
	if err != nil {
		return nil, toHTTPError(logData, err)
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listAccountsMs")
	}
	page, err := h.AccountService.ListAccounts(ctx, principal, input.toAccountQuery())
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
