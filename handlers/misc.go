package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sarveshwaran777333/Water-buddy/services"
)

// Tip returns a random hydration tip.
func (h *Handlers) Tip(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tip": services.RandomTip()})
}

// Convert handles the cups/ml unit converter: ?cups=2 or ?ml=500.
func (h *Handlers) Convert(c *gin.Context) {
	if v := c.Query("cups"); v != "" {
		cups, err := strconv.ParseFloat(v, 64)
		if err != nil || cups < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cups must be a non-negative number"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cups": cups, "ml": services.CupsToML(cups)})
		return
	}
	if v := c.Query("ml"); v != "" {
		ml, err := strconv.ParseFloat(v, 64)
		if err != nil || ml < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ml must be a non-negative number"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ml": ml, "cups": services.MLToCups(ml)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "provide cups or ml"})
}

// Weather looks up the current temperature for a city (?city=) or a
// coordinate pair (?lat=&lon=). Lookup failures come back as a non-fatal
// "unavailable" payload, mirroring the tracker's fallback behavior.
func (h *Handlers) Weather(c *gin.Context) {
	ctx := c.Request.Context()

	var lat, lon float64
	if city := c.Query("city"); city != "" {
		var err error
		lat, lon, err = h.weather.ResolveCoordinates(ctx, city)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"available": false, "city": city})
			return
		}
	} else {
		var err1, err2 error
		lat, err1 = strconv.ParseFloat(c.Query("lat"), 64)
		lon, err2 = strconv.ParseFloat(c.Query("lon"), 64)
		if err1 != nil || err2 != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provide city or lat/lon"})
			return
		}
	}

	temp, err := h.weather.CurrentTemperature(ctx, lat, lon)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"available": false, "lat": lat, "lon": lon})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available":      true,
		"lat":            lat,
		"lon":            lon,
		"temperature_c":  temp,
		"suggested_goal": services.WeatherGoal(temp),
	})
}
