package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/restolive/backend/delivery"
	"github.com/restolive/backend/store"
	"github.com/restolive/backend/utils"
)

type QuoteController struct {
	Store  store.Store
	Quoter delivery.Quoter
}

func NewQuoteController(s store.Store, q delivery.Quoter) *QuoteController {
	return &QuoteController{Store: s, Quoter: q}
}

// QuoteDelivery -> GET /api/delivery/quote?branch_id=&lat=&lng=
// A failed quote degrades to available=false; it never blocks placement.
func (qc *QuoteController) QuoteDelivery(c *gin.Context) {
	branchID, err := strconv.Atoi(c.Query("branch_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid branch id"))
		return
	}
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid coordinates"))
		return
	}

	branch, err := qc.Store.GetBranch(uint(branchID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, fmt.Errorf("branch not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	quote, err := qc.Quoter.Quote(c.Request.Context(),
		delivery.Coord{Lat: branch.Lat, Lng: branch.Lng},
		delivery.Coord{Lat: lat, Lng: lng})
	if err != nil {
		utils.RespondJSON(c, http.StatusOK, "Delivery quote unavailable", gin.H{
			"available": false,
		})
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Delivery quote", gin.H{
		"available":      true,
		"distance_km":    quote.DistanceKm,
		"delivery_price": delivery.PriceForDistance(branch, quote.DistanceKm),
	})
}
