package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/materialdesk/materialdesk-backend/api/responses"
	"github.com/materialdesk/materialdesk-backend/api/validators"
	"github.com/materialdesk/materialdesk-backend/internal/orders"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
	"github.com/materialdesk/materialdesk-backend/pkg/logger"
	"github.com/materialdesk/materialdesk-backend/pkg/pagination"
)

type lineItemRequest struct {
	MaterialID string `json:"material_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	Name  *string           `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Kind  string            `json:"kind" validate:"required,oneof=AUXILIARY FINISHED"`
	Items []lineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type renameOrderRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderItemResponse struct {
	ID         string  `json:"id"`
	MaterialID string  `json:"material_id"`
	Quantity   int     `json:"quantity"`
	UnitPrice  string  `json:"unit_price"`
	Supplier   *string `json:"supplier,omitempty"`
}

type orderResponse struct {
	ID          string              `json:"id"`
	OwnerID     string              `json:"owner_id"`
	Name        *string             `json:"name,omitempty"`
	Kind        string              `json:"kind"`
	Status      string              `json:"status"`
	TotalAmount string              `json:"total_amount"`
	Items       []orderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type orderWithProjectResponse struct {
	Order   orderResponse    `json:"order"`
	Project *projectResponse `json:"project,omitempty"`
}

func toOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:          order.ID.String(),
		OwnerID:     order.OwnerID.String(),
		Name:        order.Name,
		Kind:        order.Kind.String(),
		Status:      order.Status.String(),
		TotalAmount: order.TotalAmount.String(),
		Items:       make([]orderItemResponse, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:         item.ID.String(),
			MaterialID: item.MaterialID.String(),
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.String(),
			Supplier:   item.Supplier,
		})
	}
	return resp
}

func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseMaterialType(req.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid material kind"))
			return
		}

		input := orders.CreateOrderInput{Actor: actor, Name: req.Name, Kind: kind}
		for _, line := range req.Items {
			materialID, err := uuid.Parse(line.MaterialID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid material id"))
				return
			}
			input.Items = append(input.Items, orders.LineItemInput{MaterialID: materialID, Quantity: line.Quantity})
		}

		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project := toProjectResponse(result.Project)
		responses.WriteSuccessStatus(w, http.StatusCreated, orderWithProjectResponse{
			Order:   toOrderResponse(result.Order),
			Project: &project,
		})
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter orders.OrderFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status"))
				return
			}
			filter.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			kind, err := enums.ParseMaterialType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid material kind"))
				return
			}
			filter.Kind = &kind
		}

		params := pagination.Params{Page: page, Limit: limit}.Normalize()
		rows, total, err := svc.List(r.Context(), params, filter, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := orderListResponse{
			Orders: make([]orderResponse, 0, len(rows)),
			Total:  total,
			Page:   params.Page,
			Limit:  params.Limit,
		}
		for i := range rows {
			payload.Orders = append(payload.Orders, toOrderResponse(&rows[i]))
		}
		responses.WriteSuccess(w, payload)
	}
}

func ConfirmOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Confirm(r.Context(), id, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		project := toProjectResponse(result.Project)
		responses.WriteSuccess(w, orderWithProjectResponse{
			Order:   toOrderResponse(result.Order),
			Project: &project,
		})
	}
}

func CancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Cancel(r.Context(), id, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

func DeleteOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id, actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func RenameOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req renameOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Rename(r.Context(), id, req.Name, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateStatus(r.Context(), id, req.Status, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}
