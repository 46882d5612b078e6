package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"clinic-auth/internal/domain"
	"clinic-auth/internal/service"
	"clinic-auth/internal/storage"
)

const subjectKey = "subject_id"

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth        service.AuthService
	patients    service.PatientService
	resolutions service.ResolutionService
	queue       *service.QueueService
	archive     storage.Archive
	logger      *logrus.Logger

	// emails of doctors allowed on the staff routes
	staff map[string]struct{}
}

func NewHandler(
	auth service.AuthService,
	patients service.PatientService,
	resolutions service.ResolutionService,
	queue *service.QueueService,
	archive storage.Archive,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		auth:        auth,
		patients:    patients,
		resolutions: resolutions,
		queue:       queue,
		archive:     archive,
		logger:      logger,
		staff:       map[string]struct{}{},
	}
}

// AllowStaff grants the staff routes to the accounts with the given emails.
func (h *Handler) AllowStaff(emails ...string) {
	for _, email := range emails {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			h.staff[email] = struct{}{}
		}
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		api.POST("/auth/signup", h.signUp)
		api.POST("/auth/signin", h.signIn)
		api.GET("/auth/check", h.checkToken)

		api.POST("/queue/:name", h.joinQueue)
		api.GET("/queue/current", h.currentPatient)

		protected := api.Group("", h.requireToken())
		protected.GET("/patients/me", h.me)
		protected.GET("/patients/me/resolutions", h.myResolutions)

		staff := protected.Group("", h.requireStaff())
		staff.POST("/queue/next", h.nextPatient)
		staff.POST("/patients/:id/resolutions", h.addResolution)
		staff.GET("/resolutions", h.findResolutions)
		staff.DELETE("/resolutions/:id", h.deleteResolution)
		staff.GET("/archive", h.listArchive)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// requireToken rejects requests without a valid bearer token and stores the
// subject id in the gin context.
func (h *Handler) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := h.auth.CheckToken(c.Request.Context(), bearerToken(c))
		if err != nil {
			h.internalError(c, "check token", err)
			c.Abort()
			return
		}
		if res.Failed() {
			c.AbortWithStatusJSON(res.Status, gin.H{"error": res.Err.Error()})
			return
		}
		c.Set(subjectKey, res.Value.SubjectID)
		c.Next()
	}
}

// requireStaff must run after requireToken.
func (h *Handler) requireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		patient, err := h.patients.GetBySubject(c.Request.Context(), c.GetString(subjectKey))
		if err != nil && !errors.Is(err, domain.ErrPatientNotFound) {
			h.internalError(c, "check staff", err)
			c.Abort()
			return
		}
		if patient == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff only"})
			return
		}
		if _, ok := h.staff[strings.ToLower(patient.Email)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff only"})
			return
		}
		c.Next()
	}
}

// writeResult translates a workflow envelope into a JSON response.
func writeResult[T any](h *Handler, c *gin.Context, op string, res domain.Result[T], err error, present func(T) any) {
	if err != nil {
		h.internalError(c, op, err)
		return
	}
	if res.Failed() {
		c.JSON(res.Status, gin.H{"error": res.Err.Error()})
		return
	}
	c.JSON(res.Status, present(res.Value))
}

func (h *Handler) internalError(c *gin.Context, op string, err error) {
	h.logger.WithField("path", c.FullPath()).Errorf("%s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

type signUpRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	Gender    string `json:"gender" binding:"omitempty,oneof=male female other"`
	BirthDate string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.auth.SignUpNewProfile(c.Request.Context(), service.SignUpInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Gender:    req.Gender,
		BirthDate: req.BirthDate,
	})
	writeResult(h, c, "sign up", res, err, func(p *domain.Patient) any {
		return patientToResponse(*p)
	})
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.auth.SignInUser(c.Request.Context(), service.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	writeResult(h, c, "sign in", res, err, func(token string) any {
		return gin.H{"token": token}
	})
}

func (h *Handler) checkToken(c *gin.Context) {
	res, err := h.auth.CheckToken(c.Request.Context(), bearerToken(c))
	writeResult(h, c, "check token", res, err, func(claims domain.Claims) any {
		return gin.H{
			"subject_id": claims.SubjectID,
			"expires_at": claims.ExpiresAt.UTC().Format(time.RFC3339),
		}
	})
}

func (h *Handler) me(c *gin.Context) {
	patient, err := h.patients.GetBySubject(c.Request.Context(), c.GetString(subjectKey))
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.internalError(c, "get patient", err)
		return
	}
	c.JSON(http.StatusOK, patientToResponse(*patient))
}

func (h *Handler) joinQueue(c *gin.Context) {
	position, err := h.queue.Add(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": strings.TrimSpace(c.Param("name")), "position": position})
}

func (h *Handler) nextPatient(c *gin.Context) {
	name, err := h.queue.Next()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "waiting": h.queue.Len()})
}

func (h *Handler) currentPatient(c *gin.Context) {
	name, ok := h.queue.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no patient is being seen"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "waiting": h.queue.Len()})
}

type addResolutionRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handler) addResolution(c *gin.Context) {
	var req addResolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.resolutions.AddResolution(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyResolution):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrPatientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.internalError(c, "add resolution", err)
		}
		return
	}
	c.JSON(http.StatusCreated, resolutionToResponse(*res))
}

func (h *Handler) findResolutions(c *gin.Context) {
	list, err := h.resolutions.FindByPatientName(c.Request.Context(), c.Query("name"))
	if err != nil {
		h.internalError(c, "find resolutions", err)
		return
	}
	c.JSON(http.StatusOK, resolutionsToResponse(list))
}

func (h *Handler) myResolutions(c *gin.Context) {
	patient, err := h.patients.GetBySubject(c.Request.Context(), c.GetString(subjectKey))
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.internalError(c, "get patient", err)
		return
	}

	list, err := h.resolutions.ListForPatient(c.Request.Context(), patient.ID)
	if err != nil {
		h.internalError(c, "list resolutions", err)
		return
	}
	c.JSON(http.StatusOK, resolutionsToResponse(list))
}

func (h *Handler) deleteResolution(c *gin.Context) {
	location, err := h.resolutions.DeleteResolution(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrResolutionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.internalError(c, "delete resolution", err)
		return
	}

	resp := gin.H{"deleted": c.Param("id")}
	if location != "" {
		resp["archived_to"] = location
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listArchive(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "archive storage not configured"})
		return
	}

	objects, err := h.archive.ListObjects(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		h.internalError(c, "list archive", err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}
