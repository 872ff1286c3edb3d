package controllers

import (
	"net/http"
	"time"

	"github.com/materialdesk/materialdesk-backend/api/responses"
	"github.com/materialdesk/materialdesk-backend/api/validators"
	"github.com/materialdesk/materialdesk-backend/internal/projects"
	"github.com/materialdesk/materialdesk-backend/internal/statusflow"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
	"github.com/materialdesk/materialdesk-backend/pkg/logger"
	"github.com/materialdesk/materialdesk-backend/pkg/types"
)

type projectResponse struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	Name          string    `json:"name"`
	OverallStatus string    `json:"overall_status"`
	CreatedAt     time.Time `json:"created_at"`
}

type deliveryDetailsRequest struct {
	Time        string `json:"time"`
	Address     string `json:"address"`
	PO          string `json:"po"`
	DeliveredBy string `json:"delivered_by"`
}

// appendStatusRequest takes either a pre-joined status_value or a primary
// value plus status_secondary, which the handler composes per column.
type appendStatusRequest struct {
	StatusType      string                  `json:"status_type" validate:"required,oneof=ORDER PICKUP DELIVERY CHECK"`
	StatusValue     string                  `json:"status_value"`
	StatusSecondary string                  `json:"status_secondary,omitempty"`
	Delivery        *deliveryDetailsRequest `json:"delivery,omitempty"`
	Extra           map[string]any          `json:"extra,omitempty"`
}

type statusUpdateResponse struct {
	ID          string                 `json:"id"`
	ProjectID   string                 `json:"project_id"`
	AuthorID    string                 `json:"author_id"`
	StatusType  string                 `json:"status_type"`
	StatusValue string                 `json:"status_value"`
	Delivery    *types.DeliveryDetails `json:"delivery,omitempty"`
	Extra       types.JSONMap          `json:"extra,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type historyEntryResponse struct {
	statusUpdateResponse
	AuthorName string `json:"author_name,omitempty"`
	AuthorRole string `json:"author_role,omitempty"`
}

func toProjectResponse(p *models.Project) projectResponse {
	return projectResponse{
		ID:            p.ID.String(),
		OrderID:       p.OrderID.String(),
		Name:          p.Name,
		OverallStatus: p.OverallStatus.String(),
		CreatedAt:     p.CreatedAt,
	}
}

func toStatusUpdateResponse(u *models.StatusUpdate) statusUpdateResponse {
	return statusUpdateResponse{
		ID:          u.ID.String(),
		ProjectID:   u.ProjectID.String(),
		AuthorID:    u.AuthorID.String(),
		StatusType:  u.Column.String(),
		StatusValue: u.Value,
		Delivery:    u.Delivery,
		Extra:       u.Extra,
		CreatedAt:   u.CreatedAt,
	}
}

func GetProject(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		project, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProjectResponse(project))
	}
}

// GetOrderProject resolves the 1:1 project for an order.
func GetOrderProject(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		project, err := svc.GetByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProjectResponse(project))
	}
}

// AppendProjectStatus writes one workflow log entry. The route is gated to
// warehouse-class roles by the router.
func AppendProjectStatus(svc statusflow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req appendStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		column, err := enums.ParseStatusColumn(req.StatusType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status type"))
			return
		}

		value := req.StatusValue
		if req.StatusSecondary != "" {
			switch column {
			case enums.StatusColumnOrder:
				value = statusflow.ComposeOrderValue(req.StatusValue, req.StatusSecondary)
			case enums.StatusColumnPickup:
				value = statusflow.ComposePickupValue(req.StatusValue, req.StatusSecondary)
			default:
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "status_secondary only applies to ORDER and PICKUP"))
				return
			}
		}

		input := statusflow.AppendInput{
			ProjectID: projectID,
			Actor:     actor,
			Column:    column,
			Value:     value,
			Extra:     req.Extra,
		}
		if req.Delivery != nil {
			input.Delivery = &types.DeliveryDetails{
				Time:        req.Delivery.Time,
				Address:     req.Delivery.Address,
				PO:          req.Delivery.PO,
				DeliveredBy: req.Delivery.DeliveredBy,
			}
		}

		update, err := svc.Append(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toStatusUpdateResponse(update))
	}
}

// ProjectStatusLatest returns the current value per column, null for columns
// that were never written.
func ProjectStatusLatest(svc statusflow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		latest, err := svc.Latest(r.Context(), projectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := make(map[string]*statusUpdateResponse, len(enums.AllStatusColumns()))
		for _, column := range enums.AllStatusColumns() {
			if update := latest[column]; update != nil {
				resp := toStatusUpdateResponse(update)
				payload[column.String()] = &resp
			} else {
				payload[column.String()] = nil
			}
		}
		responses.WriteSuccess(w, payload)
	}
}

// ProjectStatusHistory returns the full log oldest first with author info.
func ProjectStatusHistory(svc statusflow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := svc.History(r.Context(), projectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := make([]historyEntryResponse, 0, len(entries))
		for i := range entries {
			payload = append(payload, historyEntryResponse{
				statusUpdateResponse: toStatusUpdateResponse(&entries[i].Update),
				AuthorName:           entries[i].AuthorName,
				AuthorRole:           string(entries[i].AuthorRole),
			})
		}
		responses.WriteSuccess(w, payload)
	}
}
