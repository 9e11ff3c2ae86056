package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cactuscup/admin_backend/models"
	"github.com/cactuscup/admin_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// crudFuncs bundles one resource's model operations so every resource
// shares the same handler shapes.
type crudFuncs[T any, I any] struct {
	create func(c *gin.Context, input *I) (*T, error)
	update func(c *gin.Context, id int, input *I) (*T, error)
	remove func(c *gin.Context, id int) (*T, error)
	get    func(c *gin.Context, id int) (*T, error)
	list   func(c *gin.Context) (any, error)
}

func registerCrud[T any, I any](g *gin.RouterGroup, admin gin.HandlerFunc, f crudFuncs[T, I]) {
	g.GET("", func(c *gin.Context) {
		results, err := f.list(c)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results})
	})
	g.GET("/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		result, err := f.get(c, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	})
	g.POST("", admin, func(c *gin.Context) {
		var input I
		if err := c.ShouldBindJSON(&input); err != nil {
			writeError(c, err)
			return
		}
		result, err := f.create(c, &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": result})
	})
	g.PUT("/:id", admin, func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input I
		if err := c.ShouldBindJSON(&input); err != nil {
			writeError(c, err)
			return
		}
		result, err := f.update(c, id, &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	})
	g.DELETE("/:id", admin, func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		result, err := f.remove(c, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	})
}

func nameFilter(c *gin.Context) *string {
	return utils.NilIfEmpty(c.Query("name"))
}

func registerResourceRoutes(api *gin.RouterGroup, admin gin.HandlerFunc) {
	registerCrud(api.Group("/tournaments"), admin, crudFuncs[models.Tournament, models.NewTournament]{
		create: func(c *gin.Context, input *models.NewTournament) (*models.Tournament, error) {
			return models.CreateTournament(c.Request.Context(), input)
		},
		update: func(c *gin.Context, id int, input *models.NewTournament) (*models.Tournament, error) {
			return models.UpdateTournament(c.Request.Context(), id, input)
		},
		remove: func(c *gin.Context, id int) (*models.Tournament, error) {
			return models.DeleteTournament(c.Request.Context(), id)
		},
		get: func(c *gin.Context, id int) (*models.Tournament, error) {
			return models.GetTournament(c.Request.Context(), id)
		},
		list: func(c *gin.Context) (any, error) {
			return models.GetTournaments(c.Request.Context(), nameFilter(c))
		},
	})

	registerCrud(api.Group("/activities"), admin, crudFuncs[models.Activity, models.NewActivity]{
		create: func(c *gin.Context, input *models.NewActivity) (*models.Activity, error) {
			return models.CreateActivity(c.Request.Context(), input)
		},
		update: func(c *gin.Context, id int, input *models.NewActivity) (*models.Activity, error) {
			return models.UpdateActivity(c.Request.Context(), id, input)
		},
		remove: func(c *gin.Context, id int) (*models.Activity, error) {
			return models.DeleteActivity(c.Request.Context(), id)
		},
		get: func(c *gin.Context, id int) (*models.Activity, error) {
			return models.GetActivity(c.Request.Context(), id)
		},
		list: func(c *gin.Context) (any, error) {
			return models.GetActivities(c.Request.Context(), nameFilter(c))
		},
	})

	registerCrud(api.Group("/special-events"), admin, crudFuncs[models.SpecialEvent, models.NewSpecialEvent]{
		create: func(c *gin.Context, input *models.NewSpecialEvent) (*models.SpecialEvent, error) {
			return models.CreateSpecialEvent(c.Request.Context(), input)
		},
		update: func(c *gin.Context, id int, input *models.NewSpecialEvent) (*models.SpecialEvent, error) {
			return models.UpdateSpecialEvent(c.Request.Context(), id, input)
		},
		remove: func(c *gin.Context, id int) (*models.SpecialEvent, error) {
			return models.DeleteSpecialEvent(c.Request.Context(), id)
		},
		get: func(c *gin.Context, id int) (*models.SpecialEvent, error) {
			return models.GetSpecialEvent(c.Request.Context(), id)
		},
		list: func(c *gin.Context) (any, error) {
			return models.GetSpecialEvents(c.Request.Context(), nameFilter(c))
		},
	})

	registerCrud(api.Group("/event-tiers"), admin, crudFuncs[models.EventTier, models.NewEventTier]{
		create: func(c *gin.Context, input *models.NewEventTier) (*models.EventTier, error) {
			return models.CreateEventTier(c.Request.Context(), input)
		},
		update: func(c *gin.Context, id int, input *models.NewEventTier) (*models.EventTier, error) {
			return models.UpdateEventTier(c.Request.Context(), id, input)
		},
		remove: func(c *gin.Context, id int) (*models.EventTier, error) {
			return models.DeleteEventTier(c.Request.Context(), id)
		},
		get: func(c *gin.Context, id int) (*models.EventTier, error) {
			return models.GetEventTier(c.Request.Context(), id)
		},
		list: func(c *gin.Context) (any, error) {
			return models.GetEventTiers(c.Request.Context())
		},
	})

	registerCrud(api.Group("/addons"), admin, crudFuncs[models.Addon, models.NewAddon]{
		create: func(c *gin.Context, input *models.NewAddon) (*models.Addon, error) {
			return models.CreateAddon(c.Request.Context(), input)
		},
		update: func(c *gin.Context, id int, input *models.NewAddon) (*models.Addon, error) {
			return models.UpdateAddon(c.Request.Context(), id, input)
		},
		remove: func(c *gin.Context, id int) (*models.Addon, error) {
			return models.DeleteAddon(c.Request.Context(), id)
		},
		get: func(c *gin.Context, id int) (*models.Addon, error) {
			return models.GetAddon(c.Request.Context(), id)
		},
		list: func(c *gin.Context) (any, error) {
			return models.GetAddons(c.Request.Context(), nameFilter(c))
		},
	})

	registerCrud(api.Group("/sponsors"), admin, crudFuncs[models.Sponsor, models.NewSponsor]{
		create: func(c *gin.Context, input *models.NewSponsor) (*models.Sponsor, error) {
			return models.CreateSponsor(c.Request.Context(), input)
		},
		update: func(c *gin.Context, id int, input *models.NewSponsor) (*models.Sponsor, error) {
			return models.UpdateSponsor(c.Request.Context(), id, input)
		},
		remove: func(c *gin.Context, id int) (*models.Sponsor, error) {
			return models.DeleteSponsor(c.Request.Context(), id)
		},
		get: func(c *gin.Context, id int) (*models.Sponsor, error) {
			return models.GetSponsor(c.Request.Context(), id)
		},
		list: func(c *gin.Context) (any, error) {
			return models.GetSponsors(c.Request.Context())
		},
	})

	registerCrud(api.Group("/hotel-partners"), admin, crudFuncs[models.HotelPartner, models.NewHotelPartner]{
		create: func(c *gin.Context, input *models.NewHotelPartner) (*models.HotelPartner, error) {
			return models.CreateHotelPartner(c.Request.Context(), input)
		},
		update: func(c *gin.Context, id int, input *models.NewHotelPartner) (*models.HotelPartner, error) {
			return models.UpdateHotelPartner(c.Request.Context(), id, input)
		},
		remove: func(c *gin.Context, id int) (*models.HotelPartner, error) {
			return models.DeleteHotelPartner(c.Request.Context(), id)
		},
		get: func(c *gin.Context, id int) (*models.HotelPartner, error) {
			return models.GetHotelPartner(c.Request.Context(), id)
		},
		list: func(c *gin.Context) (any, error) {
			return models.GetHotelPartners(c.Request.Context())
		},
	})

	registerCrud(api.Group("/guest-instructors"), admin, crudFuncs[models.GuestInstructor, models.NewGuestInstructor]{
		create: func(c *gin.Context, input *models.NewGuestInstructor) (*models.GuestInstructor, error) {
			return models.CreateGuestInstructor(c.Request.Context(), input)
		},
		update: func(c *gin.Context, id int, input *models.NewGuestInstructor) (*models.GuestInstructor, error) {
			return models.UpdateGuestInstructor(c.Request.Context(), id, input)
		},
		remove: func(c *gin.Context, id int) (*models.GuestInstructor, error) {
			return models.DeleteGuestInstructor(c.Request.Context(), id)
		},
		get: func(c *gin.Context, id int) (*models.GuestInstructor, error) {
			return models.GetGuestInstructor(c.Request.Context(), id)
		},
		list: func(c *gin.Context) (any, error) {
			return models.GetGuestInstructors(c.Request.Context())
		},
	})

	registerCrud(api.Group("/organizers"), admin, crudFuncs[models.Organizer, models.NewOrganizer]{
		create: func(c *gin.Context, input *models.NewOrganizer) (*models.Organizer, error) {
			return models.CreateOrganizer(c.Request.Context(), input)
		},
		update: func(c *gin.Context, id int, input *models.NewOrganizer) (*models.Organizer, error) {
			return models.UpdateOrganizer(c.Request.Context(), id, input)
		},
		remove: func(c *gin.Context, id int) (*models.Organizer, error) {
			return models.DeleteOrganizer(c.Request.Context(), id)
		},
		get: func(c *gin.Context, id int) (*models.Organizer, error) {
			return models.GetOrganizer(c.Request.Context(), id)
		},
		list: func(c *gin.Context) (any, error) {
			return models.GetOrganizers(c.Request.Context())
		},
	})

	// site settings is a singleton: read + update only
	api.GET("/site-settings", func(c *gin.Context) {
		settings, err := models.GetSiteSettings(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": settings})
	})
	api.PUT("/site-settings", admin, func(c *gin.Context) {
		var input models.NewSiteSettings
		if err := c.ShouldBindJSON(&input); err != nil {
			writeError(c, err)
			return
		}
		settings, err := models.UpdateSiteSettings(c.Request.Context(), &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": settings})
	})
}

func registerUserRoutes(api *gin.RouterGroup, admin gin.HandlerFunc) {
	api.GET("/users", admin, func(c *gin.Context) {
		users, err := models.GetAllUsers(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": users})
	})
	api.GET("/users/:id", admin, func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		user, err := models.GetUser(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": user})
	})
	api.POST("/users", admin, func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			writeError(c, err)
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": user})
	})
	// everything the user holds, grouped by kind, for the admin detail page
	api.GET("/users/:id/registrations", admin, func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if _, err := models.GetUser(ctx, id); err != nil {
			writeError(c, err)
			return
		}
		tournaments, err := models.GetTournamentRegistrationsForUser(ctx, id)
		if err != nil {
			writeError(c, err)
			return
		}
		activities, err := models.GetActivityRegistrationsForUser(ctx, id)
		if err != nil {
			writeError(c, err)
			return
		}
		events, err := models.GetEventRegistrationsForUser(ctx, id)
		if err != nil {
			writeError(c, err)
			return
		}
		specialEvents, err := models.GetSpecialEventRegistrationsForUser(ctx, id)
		if err != nil {
			writeError(c, err)
			return
		}
		addons, err := models.GetAddonPurchasesForUser(ctx, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"tournaments":    tournaments,
			"activities":     activities,
			"events":         events,
			"special_events": specialEvents,
			"addons":         addons,
		}})
	})
}

// registerServiceRoutes exposes the read-only listings the storefront
// needs to render registration pages.
func registerServiceRoutes(g *gin.RouterGroup) {
	g.GET("/tournaments", func(c *gin.Context) {
		results, err := models.GetTournaments(c.Request.Context(), nameFilter(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results})
	})
	g.GET("/activities", func(c *gin.Context) {
		results, err := models.GetActivities(c.Request.Context(), nameFilter(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results})
	})
	g.GET("/special-events", func(c *gin.Context) {
		results, err := models.GetSpecialEvents(c.Request.Context(), nameFilter(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results})
	})
	g.GET("/event-tiers", func(c *gin.Context) {
		results, err := models.GetEventTiers(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results})
	})
	g.GET("/addons", func(c *gin.Context) {
		results, err := models.GetAddons(c.Request.Context(), nameFilter(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results})
	})
	g.GET("/site-settings", func(c *gin.Context) {
		settings, err := models.GetSiteSettings(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": settings})
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func registerAuthRoutes(r *gin.Engine, requireSession gin.HandlerFunc) {
	r.POST("/auth/login", func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, err)
			return
		}
		info, err := models.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": info})
	})
	r.POST("/auth/logout", requireSession, func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": ok})
	})
	r.POST("/auth/change-password", requireSession, func(c *gin.Context) {
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, err)
			return
		}
		user, err := models.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": user})
	})
}
