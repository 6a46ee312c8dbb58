package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"calendarapi/models"
	"calendarapi/services"
)

// GET /events?user=<name>
func (d *deps) getEvents(c *gin.Context) {
	events, err := d.events.ListVisible(identity(c), c.Query("user"))
	if err != nil {
		failWith(c, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/public
func (d *deps) getPublicEvents(c *gin.Context) {
	events, err := d.events.ListPublic()
	if err != nil {
		failWith(c, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// POST /events
func (d *deps) createEvent(c *gin.Context) {
	var in services.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}
	in.ID = 0

	res, err := d.events.Submit(identity(c), in)
	if err != nil {
		failWith(c, err)
		return
	}
	if res.Pending() {
		c.JSON(http.StatusConflict, gin.H{
			"message":   "The event overlaps existing events. Re-submit with confirm_conflicts to save anyway.",
			"conflicts": res.Conflicts,
		})
		return
	}

	if d.inv != nil {
		d.inv.PurgePublicEvents(c)
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Event created!", "event": res.Event})
}

// PUT /events/:id
func (d *deps) updateEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id."})
		return
	}

	var in services.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}
	in.ID = id

	res, err := d.events.Submit(identity(c), in)
	if err != nil {
		failWith(c, err)
		return
	}
	if res.Pending() {
		c.JSON(http.StatusConflict, gin.H{
			"message":   "The event overlaps existing events. Re-submit with confirm_conflicts to save anyway.",
			"conflicts": res.Conflicts,
		})
		return
	}

	if d.inv != nil {
		d.inv.PurgePublicEvents(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully!", "event": res.Event})
}

// DELETE /events/:id
func (d *deps) deleteEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id."})
		return
	}

	if err := d.events.Delete(id, identity(c)); err != nil {
		failWith(c, err)
		return
	}

	if d.inv != nil {
		d.inv.PurgePublicEvents(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully!"})
}

// POST /events/:id/join
func (d *deps) joinEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id."})
		return
	}

	if err := d.events.Join(id, identity(c).Username); err != nil {
		failWith(c, err)
		return
	}

	if d.inv != nil {
		d.inv.PurgePublicEvents(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined!"})
}

// DELETE /events/:id/join
func (d *deps) leaveEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id."})
		return
	}

	if err := d.events.Leave(id, identity(c).Username); err != nil {
		failWith(c, err)
		return
	}

	if d.inv != nil {
		d.inv.PurgePublicEvents(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Left the event."})
}
