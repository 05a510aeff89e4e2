package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/service"
)

type handlers struct {
	svc    *service.Service
	logger *slog.Logger
}

// findContacts responds with the list of all contacts as JSON. An empty collection is an empty
// list, not an error.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts
func (h *handlers) findContacts(c *gin.Context) {
	contacts, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// findContactByID locates the contact whose id matches the id parameter of the request URL, then
// returns that contact as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/65a1f0c2e4b0a1b2c3d4e5f6
func (h *handlers) findContactByID(c *gin.Context) {
	contact, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// createContact creates the contact specified in the request's JSON. It responds with the full
// contact data including the newly assigned id and the timestamps.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Ada Lovelace", "email": "ada@example.com"}'
func (h *handlers) createContact(c *gin.Context) {
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	contact, err := h.svc.Create(c.Request.Context(), payload)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, contact)
}

// updateContactByID updates the contact whose id matches the id parameter of the request URL with
// the values specified in the JSON (and only those), and responds with the new version of the
// contact.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/65a1f0c2e4b0a1b2c3d4e5f6 --request "PUT" --include --header "Content-Type: application/json" --data '{"phone": "81970"}'
func (h *handlers) updateContactByID(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.CheckID(id); err != nil {
		h.fail(c, err)
		return
	}
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	contact, err := h.svc.Update(c.Request.Context(), id, payload)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// updateFavoriteByID sets the favorite flag of the contact whose id matches the id parameter of
// the request URL, and responds with the new version of the contact.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/65a1f0c2e4b0a1b2c3d4e5f6/favorite --request "PATCH" --include --header "Content-Type: application/json" --data '{"favorite": true}'
func (h *handlers) updateFavoriteByID(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.CheckID(id); err != nil {
		h.fail(c, err)
		return
	}
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	contact, err := h.svc.SetFavorite(c.Request.Context(), id, payload)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// deleteContactByID deletes the contact whose id matches the id parameter of the request URL and
// responds with the deleted contact.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/65a1f0c2e4b0a1b2c3d4e5f6 --request "DELETE"
func (h *handlers) deleteContactByID(c *gin.Context) {
	contact, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// bindPayload decodes the request body as a JSON object. It answers BAD REQUEST and returns false
// if that is not possible.
func bindPayload(c *gin.Context) (map[string]any, bool) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return nil, false
	}
	return payload, true
}

// fail maps a service error to the response status.
func (h *handlers) fail(c *gin.Context, err error) {
	switch service.KindOf(err) {
	case service.KindValidation:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": service.MessageOf(err)})
	case service.KindNotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": service.MessageOf(err)})
	default:
		h.logger.LogAttrs(c.Request.Context(), slog.LevelError, "storage unavailable",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Any("err", err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": service.MessageOf(err)})
	}
}
