package api

import (
	"net/http"
)

// RaceDependencies exposes the race catalog.
type RaceDependencies interface {
	Catalog() *Catalog
}

// RacesHandler lists supported race editions.
type RacesHandler struct {
	deps RaceDependencies
}

// NewRacesHandler creates a new races handler.
func NewRacesHandler(deps RaceDependencies) *RacesHandler {
	return &RacesHandler{deps: deps}
}

type raceResponse struct {
	ID            string `json:"id"`
	City          string `json:"city"`
	Year          int    `json:"year"`
	OfficialFile  string `json:"official_file"`
	CommunityFile string `json:"community_file"`
}

// HandleGetRaces handles GET /races requests.
func (h *RacesHandler) HandleGetRaces(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	catalog := h.deps.Catalog()
	ids := catalog.IDs()
	out := make([]raceResponse, 0, len(ids))
	for _, id := range ids {
		rc, err := catalog.Lookup(id)
		if err != nil {
			continue
		}
		out = append(out, raceResponse{
			ID:            rc.ID,
			City:          rc.City,
			Year:          rc.Year,
			OfficialFile:  rc.OfficialFile,
			CommunityFile: rc.CommunityFile,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"races": out})
}
