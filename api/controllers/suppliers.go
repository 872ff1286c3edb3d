package controllers

import (
	"net/http"
	"strings"

	"github.com/materialdesk/materialdesk-backend/api/responses"
	"github.com/materialdesk/materialdesk-backend/internal/suppliers"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
	"github.com/materialdesk/materialdesk-backend/pkg/logger"
)

// SupplierSummary rolls up non-cancelled order items per supplier. Optional
// ?kind= narrows to one order flavor.
func SupplierSummary(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter suppliers.ItemFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			kind, err := enums.ParseMaterialType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid material kind"))
				return
			}
			filter.Kind = &kind
		}

		summaries, err := svc.Summarize(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"suppliers": summaries})
	}
}
