package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/port"
	"real-estate-web/internal/devserver/engine"
	"real-estate-web/internal/devserver/events"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxPageSize = 100

// Handlers - обработчики REST API dev-сервера.
type Handlers struct {
	properties PropertyRepository
	wishlist   WishlistRepository
	auth       AuthService
	inquiries  InquiryRepository
	validate   *validator.Validate
	events     *events.Emitter
}

func NewHandlers(properties PropertyRepository, wishlist WishlistRepository, auth AuthService, inquiries InquiryRepository) *Handlers {
	return &Handlers{
		properties: properties,
		wishlist:   wishlist,
		auth:       auth,
		inquiries:  inquiries,
		validate:   validator.New(),
	}
}

// WithEvents включает публикацию доменных событий. nil - события не публикуются.
func (h *Handlers) WithEvents(emitter *events.Emitter) *Handlers {
	h.events = emitter
	return h
}

func pageParams(r *http.Request) (int, int) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", engine.DefaultPageSize)
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func decodeSearchRequest(r *http.Request) (domain.AdvancedSearchRequest, error) {
	req := domain.MatchAll()
	if r.Body == nil || r.ContentLength == 0 {
		return req, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, err
	}
	return req, nil
}

// SearchProperties обрабатывает POST /api/properties
func (h *Handlers) SearchProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SearchProperties"})

	req, err := decodeSearchRequest(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid search request body")
		return
	}
	page, size := pageParams(r)
	sort := domain.SortSpec{
		Field:     r.URL.Query().Get("sortBy"),
		Direction: domain.SortDirection(strings.ToLower(r.URL.Query().Get("sortDirection"))),
	}
	if sort.Field == "" {
		sort = domain.SortSpec{Field: "featured", Direction: domain.Desc}
	}

	all, err := h.properties.List(r.Context())
	if err != nil {
		logger.Error("Failed to list properties", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve properties")
		return
	}
	matched, err := engine.Filter(all, req, engine.PropertyField)
	if err != nil {
		logger.Warn("Rejected malformed search request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	engine.SortProperties(matched, sort)
	result := engine.Paginate(matched, page, size)

	logger.Debug("Properties search done", port.Fields{
		"criteria": len(req.CriteriaList),
		"matched":  len(matched),
		"page":     page,
	})
	RespondWithJSON(w, http.StatusOK, toPaginatedResponse(result, toPropertyResponse))
}

// GetPropertyBySlug обрабатывает GET /api/properties/slug/{slug}
func (h *Handlers) GetPropertyBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := h.properties.BySlug(r.Context(), slug)
	if err != nil {
		contextkeys.LoggerFromContext(r.Context()).Error("Failed to load property", err, port.Fields{"slug": slug})
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve property")
		return
	}
	if p == nil {
		WriteJSONError(w, http.StatusNotFound, "Property not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*p))
}

// SearchWishlist обрабатывает POST /api/wishlistSearch. Пользователь видит только свое избранное.
func (h *Handlers) SearchWishlist(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler": "SearchWishlist",
		"user_id": session.User.ID,
	})

	req, err := decodeSearchRequest(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid search request body")
		return
	}
	page, size := pageParams(r)

	items, err := h.wishlist.ListByUser(r.Context(), session.Identity())
	if err != nil {
		logger.Error("Failed to list wishlist", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve wishlist")
		return
	}
	for i := range items {
		if p, err := h.properties.ByID(r.Context(), items[i].PropertyID); err == nil && p != nil {
			items[i].Property = p
		}
	}

	matched, err := engine.Filter(items, req, engine.WishlistField)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, toPaginatedResponse(engine.Paginate(matched, page, size), toWishlistItemResponse))
}

// AddToWishlist обрабатывает POST /api/wishlist
func (h *Handlers) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler": "AddToWishlist",
		"user_id": session.User.ID,
	})

	var req AddToWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.properties.ByID(r.Context(), req.PropertyID)
	if err != nil || p == nil {
		WriteJSONError(w, http.StatusNotFound, "Property not found")
		return
	}
	title := req.PropertyTitle
	if title == "" {
		title = p.Title
	}

	if err := h.wishlist.Add(r.Context(), session.Identity(), req.PropertyID, title); err != nil {
		logger.Error("Failed to add to wishlist", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to add to wishlist")
		return
	}
	h.events.Emit(r.Context(), events.WishlistAdded, events.WishlistPayload{
		User: session.Identity(), PropertyID: req.PropertyID, PropertyTitle: title,
	})
	w.WriteHeader(http.StatusCreated)
}

// RemoveFromWishlist обрабатывает DELETE /api/wishlist/{propertyId}
func (h *Handlers) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	propertyID, err := strconv.ParseInt(chi.URLParam(r, "propertyId"), 10, 64)
	if err != nil || propertyID <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "Invalid property ID")
		return
	}

	if err := h.wishlist.Remove(r.Context(), session.Identity(), propertyID); err != nil {
		contextkeys.LoggerFromContext(r.Context()).Error("Failed to remove from wishlist", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to remove from wishlist")
		return
	}
	h.events.Emit(r.Context(), events.WishlistRemoved, events.WishlistPayload{User: session.Identity(), PropertyID: propertyID})
	w.WriteHeader(http.StatusNoContent)
}

// SubmitInquiry обрабатывает POST /api/inquiries. Токен необязателен.
func (h *Handlers) SubmitInquiry(w http.ResponseWriter, r *http.Request) {
	var req InquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	inquiry := domain.Inquiry{
		Name:       strings.TrimSpace(req.Name),
		Email:      req.Email,
		Mobile:     req.Mobile,
		Message:    strings.TrimSpace(req.Message),
		PropertyID: req.PropertyID,
	}
	if err := h.validate.Struct(inquiry); err != nil {
		WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	receipt, err := h.inquiries.Save(r.Context(), inquiry)
	if err != nil {
		contextkeys.LoggerFromContext(r.Context()).Error("Failed to save inquiry", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to save inquiry")
		return
	}
	h.events.Emit(r.Context(), events.InquirySubmitted, events.InquiryPayload{
		ReceiptID:  receipt.ID,
		PropertyID: inquiry.PropertyID,
		Name:       inquiry.Name,
		Email:      inquiry.Email,
		Mobile:     inquiry.Mobile,
	})
	RespondWithJSON(w, http.StatusCreated, InquiryReceiptResponse{ID: receipt.ID, Status: receipt.Status})
}

// DeleteAccount обрабатывает DELETE /api/account: удаляет избранное и отзывает токены.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler": "DeleteAccount",
		"user_id": session.User.ID,
	})

	if err := h.wishlist.DeleteUser(r.Context(), session.Identity()); err != nil {
		logger.Error("Failed to delete wishlist of user", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	if err := h.auth.DeleteUser(r.Context(), session.User.ID); err != nil {
		logger.Error("Failed to delete user", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	logger.Info("Account deleted", nil)
	h.events.Emit(r.Context(), events.AccountDeleted, events.AccountPayload{UserID: session.User.ID, User: session.Identity()})
	w.WriteHeader(http.StatusNoContent)
}

// SendOTP обрабатывает POST /api/auth/otp/send
func (h *Handlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req OTPSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Mobile number must be in E.164 format")
		return
	}
	if err := h.auth.SendOTP(r.Context(), req.Mobile); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// VerifyOTP обрабатывает POST /api/auth/otp/verify
func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req OTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.auth.VerifyOTP(r.Context(), req.Mobile, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			WriteJSONError(w, http.StatusUnauthorized, "Invalid or expired code")
			return
		}
		WriteJSONError(w, http.StatusInternalServerError, "Failed to verify code")
		return
	}
	RespondWithJSON(w, http.StatusOK, toSessionResponse(session))
}

// GetSession обрабатывает GET /api/auth/session
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, toSessionResponse(sessionFromContext(r.Context())))
}
