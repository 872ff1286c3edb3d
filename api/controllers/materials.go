package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/materialdesk/materialdesk-backend/api/responses"
	"github.com/materialdesk/materialdesk-backend/api/validators"
	"github.com/materialdesk/materialdesk-backend/internal/inventory"
	"github.com/materialdesk/materialdesk-backend/internal/materials"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
	"github.com/materialdesk/materialdesk-backend/pkg/logger"
	"github.com/materialdesk/materialdesk-backend/pkg/pagination"
)

type createMaterialRequest struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Price    string  `json:"price" validate:"required"`
	Quantity int     `json:"quantity" validate:"min=0"`
	Supplier *string `json:"supplier,omitempty"`
	Type     string  `json:"type" validate:"required,oneof=AUXILIARY FINISHED"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type materialResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     string    `json:"price"`
	Quantity  int       `json:"quantity"`
	Supplier  *string   `json:"supplier,omitempty"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type materialListResponse struct {
	Materials []materialResponse `json:"materials"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
}

func toMaterialResponse(m *models.Material) materialResponse {
	return materialResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Category:  m.Category,
		Price:     m.Price.String(),
		Quantity:  m.Quantity,
		Supplier:  m.Supplier,
		Type:      m.Type.String(),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func CreateMaterial(svc materials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createMaterialRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal number"))
			return
		}
		materialType, err := enums.ParseMaterialType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid material type"))
			return
		}

		created, err := svc.Create(r.Context(), materials.CreateMaterialInput{
			Name:     req.Name,
			Category: req.Category,
			Price:    price,
			Quantity: req.Quantity,
			Supplier: req.Supplier,
			Type:     materialType,
			Actor:    actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toMaterialResponse(created))
	}
}

func GetMaterial(svc materials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		material, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toMaterialResponse(material))
	}
}

func ListMaterials(svc materials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		filter := inventory.MaterialFilter{Category: strings.TrimSpace(r.URL.Query().Get("category"))}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			materialType, err := enums.ParseMaterialType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid material type"))
				return
			}
			filter.Type = &materialType
		}

		params := pagination.Params{Page: page, Limit: limit}.Normalize()
		rows, total, err := svc.List(r.Context(), params, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := materialListResponse{
			Materials: make([]materialResponse, 0, len(rows)),
			Total:     total,
			Page:      params.Page,
			Limit:     params.Limit,
		}
		for i := range rows {
			payload.Materials = append(payload.Materials, toMaterialResponse(&rows[i]))
		}
		responses.WriteSuccess(w, payload)
	}
}

// SetMaterialQuantity is the direct stock overwrite used by warehouse admins.
func SetMaterialQuantity(svc materials.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req setQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.SetQuantity(r.Context(), materials.SetQuantityInput{
			MaterialID: id,
			Quantity:   req.Quantity,
			Actor:      actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toMaterialResponse(updated))
	}
}
