package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"calendarapi/models"
	"calendarapi/utils"
)

// POST /login
func (d *deps) login(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	u, err := d.users.ValidateCredentials(body.Username, body.Password)
	if err != nil {
		failWith(c, err)
		return
	}

	token, err := utils.GenerateToken(u.Username, string(u.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not authenticate."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful!", "token": token, "user": u})
}

// GET /users
func (d *deps) listUsers(c *gin.Context) {
	names, err := d.users.ListUsernames()
	if err != nil {
		failWith(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, names)
}

// POST /users (admin only)
func (d *deps) createUser(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	if err := d.admin.CreateUser(identity(c), body.Username, body.Password, models.Role(body.Role)); err != nil {
		failWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created!"})
}

// PUT /users/:username/password
func (d *deps) changePassword(c *gin.Context) {
	var body struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	if err := d.admin.ChangePassword(identity(c), c.Param("username"), body.Password); err != nil {
		failWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed."})
}

// POST /admin/reset
func (d *deps) resetAll(c *gin.Context) {
	if err := d.admin.ResetAll(identity(c)); err != nil {
		failWith(c, err)
		return
	}

	if d.inv != nil {
		d.inv.PurgePublicEvents(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "All data has been reset."})
}
