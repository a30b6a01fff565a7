package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/Domenick1991/harborhop/internal/voyage"
	"github.com/gin-gonic/gin"
)

type VoyageHandler struct {
	service voyage.SearchUseCase
}

func NewVoyageHandler(service voyage.SearchUseCase) *VoyageHandler {
	return &VoyageHandler{service: service}
}

func (h *VoyageHandler) Register(router *gin.RouterGroup) {
	router.GET("/routes", h.routes)
	router.GET("/voyages", h.search)
}

func (h *VoyageHandler) routes(c *gin.Context) {
	routes, err := h.service.Routes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

func (h *VoyageHandler) search(c *gin.Context) {
	q, ok := searchQuery(c)
	if !ok {
		return
	}
	result, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func searchQuery(c *gin.Context) (domain.SearchQuery, bool) {
	q := domain.SearchQuery{
		TripType:      domain.TripType(c.DefaultQuery("trip_type", string(domain.TripTypeOneWay))),
		DepartureDate: c.Query("departure_date"),
		ReturnDate:    c.Query("return_date"),
	}
	if !q.TripType.Valid() {
		badRequest(c, "invalid trip_type")
		return q, false
	}

	ints := []struct {
		name string
		dst  *int
		def  string
	}{
		{"origin", &q.OriginID, ""},
		{"destination", &q.DestinationID, ""},
		{"adults", &q.Adults, "1"},
		{"children", &q.Children, "0"},
	}
	for _, f := range ints {
		raw := c.DefaultQuery(f.name, f.def)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid "+f.name)
			return q, false
		}
		*f.dst = n
	}
	return q, true
}
