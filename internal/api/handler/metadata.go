package handler

import (
	"net/http"

	"github.com/eldview/eldview/internal/api/models"
	"github.com/eldview/eldview/internal/api/response"
	"github.com/eldview/eldview/internal/timeline"
)

// MetadataHandler serves static reference data.
type MetadataHandler struct{}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{}
}

// ListDutyStatuses handles GET /v1/metadata/duty-statuses. Items are in grid
// row order.
func (h *MetadataHandler) ListDutyStatuses(w http.ResponseWriter, r *http.Request) {
	list := models.DutyStatusInfoList{Items: make([]models.DutyStatusInfo, 0, len(timeline.Statuses))}
	for _, s := range timeline.Statuses {
		info := s.Info()
		list.Items = append(list.Items, models.DutyStatusInfo{Value: s, Label: info.Label, Color: info.Color})
	}
	response.JSON(w, r, http.StatusOK, list)
}
