package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/threadloom/threadloom/internal/media"
	"github.com/threadloom/threadloom/internal/middleware"
	"github.com/threadloom/threadloom/internal/services"
	apperrors "github.com/threadloom/threadloom/pkg/errors"
	"github.com/threadloom/threadloom/pkg/response"
)

// CommunityHandler exposes community CRUD endpoints.
type CommunityHandler struct {
	communities *services.CommunityService
	store       media.Store
}

// NewCommunityHandler constructs the community handler.
func NewCommunityHandler(communities *services.CommunityService, store media.Store) *CommunityHandler {
	return &CommunityHandler{communities: communities, store: store}
}

// POST /api/communities (multipart)
func (h *CommunityHandler) Create(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		response.Error(c, apperrors.NewBadRequest("name is required"))
		return
	}

	input := services.CommunityInput{
		Name:        name,
		Description: c.PostForm("description"),
	}
	if raw := c.PostForm("isPublic"); raw != "" {
		isPublic, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, apperrors.NewBadRequest("isPublic must be true or false"))
			return
		}
		input.IsPublic = &isPublic
	}

	bannerURL, err := h.uploadImage(c, "bannerImage", media.FolderCommunityBanners)
	if err != nil {
		response.Error(c, err)
		return
	}
	input.BannerURL = bannerURL

	logoURL, err := h.uploadImage(c, "logoImage", media.FolderCommunityLogos)
	if err != nil {
		response.Error(c, err)
		return
	}
	input.LogoURL = logoURL

	community, err := h.communities.Create(requestContext(c), middleware.CurrentUserID(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"community": community})
}

// GET /api/communities
func (h *CommunityHandler) List(c *gin.Context) {
	communities, err := h.communities.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	dtos := make([]services.CommunityDTO, len(communities))
	for i := range communities {
		dtos[i] = services.CommunityToDTO(&communities[i])
	}

	response.List(c, http.StatusOK, gin.H{"communities": dtos}, len(dtos))
}

// GET /api/communities/:id
func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.communities.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"community": services.CommunityToDTO(community)})
}

// DELETE /api/communities/:id
func (h *CommunityHandler) Delete(c *gin.Context) {
	err := h.communities.Delete(requestContext(c), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// uploadImage stores an optional multipart image attachment, rejecting
// non-image content types. Returns "" when the field is absent.
func (h *CommunityHandler) uploadImage(c *gin.Context, field, folder string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}

	return uploadAttachment(c, h.store, header, folder, media.KindImage)
}

// uploadAttachment pushes one multipart file into the media store, checking
// its declared content type against the allowed kind.
func uploadAttachment(c *gin.Context, store media.Store, header *multipart.FileHeader, folder string, allowed ...media.Kind) (string, error) {
	contentType := header.Header.Get("Content-Type")
	kind, err := media.DetectKind(contentType)
	if err != nil {
		return "", apperrors.NewBadRequest(fmt.Sprintf("unsupported media type %q", contentType))
	}

	permitted := false
	for _, k := range allowed {
		if kind == k {
			permitted = true
			break
		}
	}
	if !permitted {
		return "", apperrors.NewBadRequest(fmt.Sprintf("%s attachments are not allowed here", kind))
	}

	file, err := header.Open()
	if err != nil {
		return "", apperrors.NewBadRequest("could not read uploaded file")
	}
	defer file.Close()

	url, err := store.Upload(requestContext(c), folder, file, header.Size, contentType)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to store uploaded media")
	}
	return url, nil
}
