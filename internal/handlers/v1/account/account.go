package account

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/logging"
	"github.com/carson-networks/account-lifecycle-server/internal/service"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// Account is the API response model for an account.
type Account struct {
	ID             string     `json:"id" doc:"Account UUID"`
	Number         string     `json:"number" doc:"Account number"`
	ClientID       string     `json:"clientId" doc:"Owner client UUID"`
	Type           string     `json:"type" enum:"CHECKING,SAVINGS" doc:"Account type"`
	Currency       string     `json:"currency" doc:"Currency code"`
	InitialBalance string     `json:"initialBalance" doc:"Decimal initial balance"`
	Balance        string     `json:"balance,omitempty" doc:"Decimal balance derived from validated transactions"`
	Status         string     `json:"status" enum:"ACTIVE,BLOCKED,CLOSED" doc:"Account status"`
	BlockReason    string     `json:"blockReason,omitempty" doc:"Reason of the current block"`
	BlockStart     *time.Time `json:"blockStart,omitempty" doc:"Start of the current block"`
	BlockEnd       *time.Time `json:"blockEnd,omitempty" doc:"End of the current block"`
	Version        int        `json:"version" doc:"Metadata version, bumped on every change"`
	LastModified   time.Time  `json:"lastModified" doc:"Time of the last change"`
	Owner          Owner      `json:"owner" doc:"Account owner"`
	CreatedAt      time.Time  `json:"createdAt" doc:"Creation time"`
	ArchivedAt     *time.Time `json:"archivedAt,omitempty" doc:"Time the account was archived, cold accounts only"`
	Source         string     `json:"source" enum:"local,cold" doc:"Store that answered"`
}

// Owner is the API response model for an account owner.
type Owner struct {
	ClientID  string `json:"clientId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Page is the pagination block of a listing.
type Page struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNext      bool `json:"hasNext"`
	HasPrevious  bool `json:"hasPrevious"`
}

// AccountListBody is the response body of the listing endpoints.
type AccountListBody struct {
	Accounts []Account `json:"accounts" doc:"Page of accounts"`
	Page     Page      `json:"page" doc:"Pagination info"`
}

// PrincipalHeaders identify the caller. Token issuance happens upstream.
type PrincipalHeaders struct {
	Role        string `header:"X-Principal-Role" doc:"Caller role: admin or client"`
	PrincipalID string `header:"X-Principal-Id" doc:"Admin id or client id of the caller"`
}

// Principal converts the headers into a domain principal.
func (h PrincipalHeaders) Principal() (domain.Principal, error) {
	id, err := uuid.FromString(h.PrincipalID)
	if err != nil {
		return nil, huma.Error401Unauthorized("missing or invalid X-Principal-Id")
	}
	switch strings.ToLower(h.Role) {
	case "admin":
		return domain.AdminPrincipal{ID: id}, nil
	case "client":
		return domain.ClientPrincipal{ClientID: id}, nil
	}
	return nil, huma.Error401Unauthorized("missing or invalid X-Principal-Role")
}

// ListQuery holds the filter, sort and pagination query parameters.
type ListQuery struct {
	Type   string `query:"type" enum:"CHECKING,SAVINGS" doc:"Filter by account type"`
	Status string `query:"status" enum:"ACTIVE,BLOCKED,CLOSED" doc:"Filter by status"`
	Search string `query:"search" maxLength:"100" doc:"Search over number, owner name and owner email"`
	Sort   string `query:"sort" enum:"createdAt,balance,owner,number,status" doc:"Sort key, default createdAt"`
	Order  string `query:"order" enum:"asc,desc" doc:"Sort direction, default desc"`
	Page   int    `query:"page" minimum:"0" doc:"Page number, starting at 1"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size, default 10"`
}

func (q ListQuery) toAccountQuery() sqlconfig.AccountQuery {
	return sqlconfig.AccountQuery{
		Type:   domain.AccountType(q.Type),
		Status: domain.AccountStatus(q.Status),
		Search: q.Search,
		Sort:   sqlconfig.SortKey(q.Sort),
		Order:  sqlconfig.SortOrder(q.Order),
		Page:   q.Page,
		Limit:  q.Limit,
	}
}

// parseAccountID parses a path id. Anything that is not a UUID cannot exist.
func parseAccountID(raw string) (uuid.UUID, error) {
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, huma.Error404NotFound("account not found")
	}
	return id, nil
}

func toAccount(v *service.AccountView) Account {
	a := Account{
		ID:             v.ID.String(),
		Number:         v.Number,
		ClientID:       v.ClientID.String(),
		Type:           string(v.Type),
		Currency:       v.Currency,
		InitialBalance: v.InitialBalance.StringFixed(2),
		Status:         string(v.Status),
		BlockStart:     v.BlockStart,
		BlockEnd:       v.BlockEnd,
		Version:        v.Metadata.Version,
		LastModified:   v.Metadata.LastModified,
		Owner: Owner{
			ClientID:  v.Owner.ClientID.String(),
			FirstName: v.Owner.FirstName,
			LastName:  v.Owner.LastName,
			Email:     v.Owner.Email,
			Phone:     v.Owner.Phone,
		},
		CreatedAt:  v.CreatedAt,
		ArchivedAt: v.ArchivedAt,
		Source:     string(v.Source),
	}
	if v.Balance != nil {
		a.Balance = v.Balance.StringFixed(2)
	}
	if v.BlockReason != nil {
		a.BlockReason = *v.BlockReason
	}
	return a
}

func toListBody(page *service.AccountPage) AccountListBody {
	body := AccountListBody{
		Accounts: make([]Account, len(page.Items)),
		Page:     Page(page.Page),
	}
	for i := range page.Items {
		body.Accounts[i] = toAccount(&page.Items[i])
	}
	return body
}

// toHTTPError maps service errors onto status codes and records the error on the request log.
func toHTTPError(logData *logging.LogData, err error) error {
	if logData != nil {
		logData.SetError(err)
	}
	var statusErr huma.StatusError
	switch {
	case errors.As(err, &statusErr):
		return err
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrUnblockWindowExpired):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound("account not found")
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden("forbidden")
	case errors.Is(err, domain.ErrColdStoreUnreachable):
		return huma.Error503ServiceUnavailable("cold store unreachable")
	}
	return huma.NewError(http.StatusInternalServerError, "internal error")
}
