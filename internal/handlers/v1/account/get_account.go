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

// GetAccountInput is the Huma input for looking up one account.
type GetAccountInput struct {
	PrincipalHeaders
	ID string `path:"id" doc:"Account UUID"`
}

// GetAccountOutput is the Huma output for looking up one account.
type GetAccountOutput struct {
	Body Account
}

type accountGetter interface {
	GetAccount(ctx context.Context, p domain.Principal, id uuid.UUID) (*service.AccountView, error)
}

// GetAccountHandler handles GET /v1/accounts/{id}.
type GetAccountHandler struct {
	AccountService accountGetter
}

// NewGetAccountHandler creates a new GetAccountHandler.
func NewGetAccountHandler(svc accountGetter) *GetAccountHandler {
	return &GetAccountHandler{AccountService: svc}
}

// Register registers the get account endpoint with the Huma API.
func (h *GetAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/v1/accounts/{id}",
		Summary:     "Get an account",
		Description: "Looks the account up in the primary store, then in the cold store. The source field tells which one answered.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *GetAccountHandler) handle(ctx context.Context, input *GetAccountInput) (*GetAccountOutput, error) {
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
		stopTimer = logData.AddTiming("getAccountMs")
	}
	view, err := h.AccountService.GetAccount(ctx, principal, id)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, toHTTPError(logData, err)
	}

	if logData != nil {
		logData.AddData("source", string(view.Source))
	}
	return &GetAccountOutput{Body: toAccount(view)}, nil
}
