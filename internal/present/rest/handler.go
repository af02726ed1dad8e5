package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/civicsignal/petitiond/internal/domain"
	"github.com/civicsignal/petitiond/internal/present/rest/middleware"
	"github.com/civicsignal/petitiond/internal/present/rest/presenter"
	"github.com/civicsignal/petitiond/internal/service"
	"github.com/civicsignal/petitiond/internal/usecase"
)

type Handler struct {
	petition   *usecase.PetitionUsecase
	signature  *usecase.SignatureUsecase
	engagement *usecase.EngagementUsecase
	auth       *service.AuthService
	events     *service.EventService
}

func NewHandler(
	petition *usecase.PetitionUsecase,
	signature *usecase.SignatureUsecase,
	engagement *usecase.EngagementUsecase,
	auth *service.AuthService,
	events *service.EventService,
) *Handler {
	return &Handler{
		petition:   petition,
		signature:  signature,
		engagement: engagement,
		auth:       auth,
		events:     events,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/auth/login", h.handleLogin)
	e.GET("/api/auth/me", h.handleMe)

	e.GET("/api/petitions", h.handleListPetitions)
	e.POST("/api/petitions", h.handleCreatePetition)
	e.GET("/api/petitions/:id", h.handleGetPetition)
	e.PUT("/api/petitions/:id", h.handleUpdatePetition)
	e.PATCH("/api/petitions/:id/status", h.handleUpdateStatus)
	e.DELETE("/api/petitions/:id", h.handleDeletePetition)

	e.POST("/api/signatures", h.handleSubmitSignature)
	e.GET("/api/signatures/my", h.handleMySignatures)
	e.GET("/api/verify-signature", h.handleVerifySignature)
	e.GET("/api/petitions/:id/signatures", h.handleOwnerSignatures)

	e.POST("/api/petitions/:id/announcements", h.handleCreateAnnouncement)
	e.GET("/api/petitions/:id/announcements", h.handleListAnnouncements)
	e.POST("/api/petitions/:id/comments", h.handleCreateComment)
	e.GET("/api/petitions/:id/comments", h.handleListComments)
	e.GET("/api/petitions/:id/decision-makers", h.handleListDecisionMakers)
	e.POST("/api/petitions/:id/contact-organizer", h.handleContactOrganizer)

	e.GET("/realtime", h.handleRealtime)
}

type loginRequest struct {
	Code string `json:"code"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.Code == "" {
		return presenter.Error(c, domain.ValidationError{Field: "code", Reason: "must not be empty"})
	}

	result, err := h.auth.Login(ctx, req.Code)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, loginResponse{Token: result.Token, User: result.User})
}

func (h *Handler) handleMe(c echo.Context) error {
	user, ok := middleware.ActingUser(c.Request().Context())
	if !ok {
		return presenter.Error(c, domain.ErrAuthenticationRequired)
	}
	return presenter.OK(c, user)
}

func (h *Handler) handleListPetitions(c echo.Context) error {
	summaries, err := h.petition.List(c.Request().Context())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, summaries)
}

func (h *Handler) handleGetPetition(c echo.Context) error {
	ctx := c.Request().Context()

	detail, err := h.petition.Get(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}

	if user, ok := middleware.ActingUser(ctx); ok {
		signed, err := h.signature.CheckSigned(ctx, c.Param("id"), user.ID)
		if err != nil {
			return presenter.Error(c, err)
		}
		detail.HasUserSigned = signed
	}

	return presenter.OK(c, detail)
}

type createPetitionRequest struct {
	usecase.CreatePetitionInput
	CaptchaToken string `json:"captchaToken"`
}

func (h *Handler) handleCreatePetition(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.ActingUser(ctx)
	if !ok {
		return presenter.Error(c, domain.ErrAuthenticationRequired)
	}

	var req createPetitionRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.petition.Create(ctx, req.CreatePetitionInput, user, req.CaptchaToken, c.RealIP())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, created)
}

func (h *Handler) handleUpdatePetition(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.ActingUser(ctx)
	if !ok {
		return presenter.Error(c, domain.ErrAuthenticationRequired)
	}

	var upd domain.PetitionUpdate
	if err := c.Bind(&upd); err != nil {
		return presenter.BadRequest(c, err)
	}

	updated, err := h.petition.Update(ctx, c.Param("id"), user, upd)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, updated)
}

type updateStatusRequest struct {
	Status domain.PetitionStatus `json:"status"`
}

func (h *Handler) handleUpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.ActingUser(ctx)
	if !ok {
		return presenter.Error(c, domain.ErrAuthenticationRequired)
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	updated, err := h.petition.UpdateStatus(ctx, c.Param("id"), user, req.Status)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, updated)
}

func (h *Handler) handleDeletePetition(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.ActingUser(ctx)
	if !ok {
		return presenter.Error(c, domain.ErrAuthenticationRequired)
	}

	if err := h.petition.Delete(ctx, c.Param("id"), user); err != nil {
		return presenter.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type submitSignatureRequest struct {
	usecase.SubmitSignatureInput
	CaptchaToken string `json:"captchaToken"`
}

func (h *Handler) handleSubmitSignature(c echo.Context) error {
	ctx := c.Request().Context()

	actingUserID := ""
	if user, ok := middleware.ActingUser(ctx); ok {
		actingUserID = user.ID
	}

	var req submitSignatureRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.signature.Submit(ctx, req.SubmitSignatureInput, actingUserID, req.CaptchaToken, c.RealIP())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, created)
}

func (h *Handler) handleMySignatures(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.ActingUser(ctx)
	if !ok {
		return presenter.Error(c, domain.ErrAuthenticationRequired)
	}

	sigs, err := h.signature.ListMine(ctx, user.ID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, sigs)
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) handleVerifySignature(c echo.Context) error {
	_, err := h.signature.Verify(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, verifyResponse{Success: true, Message: "Signature verified successfully"})
}

func (h *Handler) handleOwnerSignatures(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.ActingUser(ctx)
	if !ok {
		return presenter.Error(c, domain.ErrAuthenticationRequired)
	}

	sigs, err := h.signature.ListForOwner(ctx, c.Param("id"), user)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, sigs)
}

func (h *Handler) handleCreateAnnouncement(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.ActingUser(ctx)
	if !ok {
		return presenter.Error(c, domain.ErrAuthenticationRequired)
	}

	var input usecase.CreateAnnouncementInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.engagement.CreateAnnouncement(ctx, c.Param("id"), user, input)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, created)
}

func (h *Handler) handleListAnnouncements(c echo.Context) error {
	anns, err := h.engagement.ListAnnouncements(c.Request().Context(), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, anns)
}

type createCommentRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) handleCreateComment(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.ActingUser(ctx)
	if !ok {
		return presenter.Error(c, domain.ErrAuthenticationRequired)
	}

	var req createCommentRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.engagement.CreateComment(ctx, c.Param("id"), user, req.Comment)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, created)
}

func (h *Handler) handleListComments(c echo.Context) error {
	comments, err := h.engagement.ListComments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, comments)
}

func (h *Handler) handleListDecisionMakers(c echo.Context) error {
	dms, err := h.petition.ListDecisionMakers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, dms)
}

type contactOrganizerRequest struct {
	domain.ContactMessage
	CaptchaToken string `json:"captchaToken"`
}

func (h *Handler) handleContactOrganizer(c echo.Context) error {
	var req contactOrganizerRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	err := h.petition.ContactOrganizer(c.Request().Context(), c.Param("id"), req.ContactMessage, req.CaptchaToken, c.RealIP())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, map[string]any{"success": true, "message": "Message sent successfully"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type      string   `json:"type"`
	Petitions []string `json:"petitions"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	input := make(chan []string)
	defer close(input)
	output := make(chan domain.Event)

	go h.events.Realtime(ctx, input, output)

	quit := make(chan struct{}, 1)

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "listen":
				input <- req.Petitions
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
