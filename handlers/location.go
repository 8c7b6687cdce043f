package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-safeher/geocode"
	"go-safeher/session"
	"go-safeher/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// GeocodeTimeout bounds the address lookup of a single request.
var GeocodeTimeout = 10 * time.Second

type locationRequest struct {
	Lat     *float64 `json:"lat" binding:"omitempty,gte=-90,lte=90"`
	Lon     *float64 `json:"lon" binding:"omitempty,gte=-180,lte=180"`
	Address string   `json:"address" binding:"omitempty,max=300"`
}

// SetLocationHandler records the session's location, either as coordinates
// or as an address geocoded with Google Maps. A location can be set once.
func SetLocationHandler(c *gin.Context, store *session.Store, geocoder *maps.Client) {
	sess, ok := lookupSession(c, store)
	if !ok {
		return
	}

	var request locationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var coord types.Coordinate
	address := ""
	switch {
	case request.Lat != nil && request.Lon != nil:
		coord = types.Coordinate{Lat: *request.Lat, Lon: *request.Lon}
	case request.Address != "":
		if geocoder == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "address lookup is not configured"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), GeocodeTimeout)
		defer cancel()

		var err error
		coord, address, err = geocode.GeocodeAddress(ctx, geocoder, request.Address)
		if errors.Is(err, geocode.ErrNoResults) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			zap.L().Warn("geocoding failed", zap.String("session_id", sess.ID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to look up address"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide lat and lon, or an address"})
		return
	}

	if err := sess.Conversation.SetOrigin(coord); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lat":     coord.Lat,
		"lon":     coord.Lon,
		"address": address,
	})
}
