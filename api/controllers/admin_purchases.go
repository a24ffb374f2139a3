package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/studio-backend/api/responses"
	"github.com/angelmondragon/studio-backend/api/validators"
	"github.com/angelmondragon/studio-backend/internal/consumption"
	"github.com/angelmondragon/studio-backend/internal/purchases"
	"github.com/angelmondragon/studio-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/studio-backend/pkg/errors"
	"github.com/angelmondragon/studio-backend/pkg/logger"
	"github.com/angelmondragon/studio-backend/pkg/pagination"
	"github.com/angelmondragon/studio-backend/pkg/types"
)

// PurchaseLister pages through recorded purchases.
type PurchaseLister interface {
	List(ctx context.Context, q types.PurchaseQuery) ([]models.Purchase, string, error)
}

// ConsumptionLister pages through service consumption records.
type ConsumptionLister interface {
	List(ctx context.Context, q types.ConsumptionQuery) ([]models.ServiceConsumption, string, error)
}

type purchaseListQuery struct {
	Email           string `json:"email" validate:"omitempty,email,max=254"`
	PaymentIntentID string `json:"paymentIntentId" validate:"omitempty,startswith=pi_,max=255"`
}

type consumptionListQuery struct {
	UserID string `json:"userId" validate:"required,max=128"`
}

// AdminPurchases lists recorded purchases, newest first.
func AdminPurchases(repo PurchaseLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases repository unavailable"))
			return
		}

		query := purchaseListQuery{
			Email:           validators.SanitizeString(r.URL.Query().Get("email"), 254),
			PaymentIntentID: validators.SanitizeString(r.URL.Query().Get("paymentIntentId"), 255),
		}
		if err := validators.ValidateStruct(&query); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := repo.List(r.Context(), types.PurchaseQuery{
			Email:           query.Email,
			PaymentIntentID: query.PaymentIntentID,
			Params:          params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, listError(err, "list purchases"))
			return
		}
		responses.WriteSuccess(w, types.NewListResult(purchases.FromModels(rows), next))
	}
}

// AdminServiceConsumption lists a user's service entitlements, newest first.
func AdminServiceConsumption(repo ConsumptionLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "service consumption repository unavailable"))
			return
		}

		query := consumptionListQuery{UserID: validators.SanitizeString(r.URL.Query().Get("userId"), 128)}
		if err := validators.ValidateStruct(&query); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := repo.List(r.Context(), types.ConsumptionQuery{UserID: query.UserID, Params: params})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, listError(err, "list service consumption"))
			return
		}
		responses.WriteSuccess(w, types.NewListResult(consumption.FromModels(rows), next))
	}
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func listError(err error, msg string) error {
	if errors.Is(err, pagination.ErrInvalidCursor) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
