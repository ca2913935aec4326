package ebook

import (
	"career-ebook-generator/internal/api"
	"career-ebook-generator/internal/converter"
	"career-ebook-generator/internal/database"
	"career-ebook-generator/internal/environment"
	"career-ebook-generator/internal/export"
	"career-ebook-generator/internal/logging"
	"career-ebook-generator/internal/middlewares"
	"career-ebook-generator/internal/models"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"io"
	"net/http"
	"strings"
)

// Api defines the contract for the e-book actions of the current session.
//
// @Summary E-book API
type Api interface {

	// GetEbook returns the session's community name and current document.
	GetEbook(c *gin.Context)

	// Generate creates a new document for the requested community.
	Generate(c *gin.Context)

	// UpdateDocument stores the user's edits.
	UpdateDocument(c *gin.Context)

	// DownloadHTML serves the document as an HTML attachment.
	DownloadHTML(c *gin.Context)

	// Convert runs the fixed-layout converter over the document.
	Convert(c *gin.Context)

	// DownloadDocument serves the last converted artifact.
	DownloadDocument(c *gin.Context)
}

// Controller wires environment dependencies with the workflow handlers.
type Controller struct {
	*environment.Env
	*Workflow
}

// ensure Controller implements Api
var _ Api = &Controller{}

type EbookResponse struct {
	SessionId      string `json:"sessionId"`
	CommunityName  string `json:"communityName"`
	Document       string `json:"document"`
	Generated      bool   `json:"generated"`
	Converted      bool   `json:"converted"`
	ConvertEnabled bool   `json:"convertEnabled"`
}

type generatePayload struct {
	Community string `mapstructure:"community"`
}

type documentPayload struct {
	Document string `mapstructure:"document"`
}

// GetEbook returns the state of the current session.
//
// @ID getEbook
// @Summary Get the current e-book
// @Tags ebook
// @Router /api/ebook [get]
// @Success 200 {object} api.RestJsonResponse{data=ebook.EbookResponse}
// @Failure 401
func (ec *Controller) GetEbook(c *gin.Context) {
	session, ok := ec.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", ec.response(session)))
}

// Generate asks the provider for a new e-book and replaces the session document.
//
// @ID generateEbook
// @Summary Generate an e-book for a community
// @Tags ebook
// @Router /api/ebook/generate [post]
// @Param data body api.RestJsonRequest true "{"data":{"community":"Data Scientists"}}"
// @Success 200 {object} api.RestJsonResponse{data=ebook.EbookResponse}
// @Failure 400 {object} api.RestJsonErrorResponse
// @Failure 409 {object} api.RestJsonErrorResponse
// @Failure 502 {object} api.RestJsonErrorResponse
func (ec *Controller) Generate(c *gin.Context) {
	session, ok := ec.loadSession(c)
	if !ok {
		return
	}

	payload := generatePayload{}
	if !decodeData(c, &payload) {
		return
	}

	if err := ec.OnGenerate(c.Request.Context(), session, payload.Community); err != nil {
		ec.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "E-book generated", ec.response(session)))
}

// UpdateDocument replaces the document with the edited markup, unvalidated.
//
// @ID updateEbookDocument
// @Summary Store edits
// @Tags ebook
// @Router /api/ebook/document [put]
// @Param data body api.RestJsonRequest true "{"data":{"document":"<h2>PREFACE</h2>"}}"
// @Success 200 {object} api.RestJsonResponse{data=ebook.EbookResponse}
// @Failure 409 {object} api.RestJsonErrorResponse
func (ec *Controller) UpdateDocument(c *gin.Context) {
	session, ok := ec.loadSession(c)
	if !ok {
		return
	}

	payload := documentPayload{}
	if !decodeData(c, &payload) {
		return
	}

	if err := ec.OnEdit(c.Request.Context(), session, payload.Document); err != nil {
		ec.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "Edits saved", ec.response(session)))
}

// DownloadHTML
//
// @ID downloadEbookHtml
// @Tags ebook
// @Router /api/ebook/download/html [get]
// @Produce html
// @Success 200
// @Failure 409 {object} api.RestJsonErrorResponse
func (ec *Controller) DownloadHTML(c *gin.Context) {
	session, ok := ec.loadSession(c)
	if !ok {
		return
	}

	artifact, err := ec.OnExportHTML(session)
	if err != nil {
		ec.abortWithError(c, err)
		return
	}
	attach(c, artifact)
}

// Convert produces the fixed-layout artifact and keeps it for DownloadDocument.
//
// @ID convertEbook
// @Tags ebook
// @Router /api/ebook/convert [post]
// @Success 200 {object} api.RestJsonResponse
// @Failure 404 {object} api.RestJsonErrorResponse
// @Failure 502 {object} api.RestJsonErrorResponse
func (ec *Controller) Convert(c *gin.Context) {
	session, ok := ec.loadSession(c)
	if !ok {
		return
	}

	artifact, err := ec.OnConvert(c.Request.Context(), session)
	if err != nil {
		ec.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "Conversion finished", gin.H{
		"filename": artifact.Filename,
		"size":     len(artifact.Content),
	}))
}

// DownloadDocument
//
// @ID downloadEbookDocument
// @Tags ebook
// @Router /api/ebook/download/document [get]
// @Success 200
// @Failure 404 {object} api.RestJsonErrorResponse
// @Failure 409 {object} api.RestJsonErrorResponse
func (ec *Controller) DownloadDocument(c *gin.Context) {
	session, ok := ec.loadSession(c)
	if !ok {
		return
	}

	artifact, err := ec.OnExportDocument(session)
	if err != nil {
		ec.abortWithError(c, err)
		return
	}
	attach(c, artifact)
}

func (ec *Controller) loadSession(c *gin.Context) (*models.Session, bool) {
	sessionId := middlewares.SessionId(c)
	session := &models.Session{}
	err := ec.FindSession(c.Request.Context(), sessionId, session)
	if errors.Is(err, database.ErrSessionNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("session expired; reload the page to start a new one"))
		return nil, false
	}
	if err != nil {
		ec.LogErrorf(logging.GetLogTypeSession("load", sessionId), "error loading session: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("error loading session: %s", err))
		return nil, false
	}
	return session, true
}

func (ec *Controller) response(session *models.Session) EbookResponse {
	return EbookResponse{
		SessionId:      session.ID,
		CommunityName:  session.CommunityName,
		Document:       session.Document,
		Generated:      session.HasDocument(),
		Converted:      session.HasConverted(),
		ConvertEnabled: ec.ConvertEnabled(),
	}
}

func (ec *Controller) abortWithError(c *gin.Context, err error) {
	var providerErr *ProviderError
	switch {
	case errors.Is(err, ErrEmptyCommunity):
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponse(EmptyCommunityMessage))
	case errors.Is(err, ErrGenerationInProgress), errors.Is(err, ErrNoDocument), errors.Is(err, ErrNotConverted):
		c.AbortWithStatusJSON(http.StatusConflict, api.NewErrorResponse(err.Error()))
	case errors.Is(err, ErrConversionDisabled):
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponse(err.Error()))
	case errors.As(err, &providerErr):
		c.AbortWithStatusJSON(http.StatusBadGateway, api.NewErrorResponse(providerErr.Error()))
	case errors.Is(err, converter.ErrConversion):
		detail := strings.TrimSuffix(err.Error(), ": "+converter.ErrConversion.Error())
		c.AbortWithStatusJSON(http.StatusBadGateway, api.NewErrorResponsef("%s: %s", converter.ErrConversion, detail))
	case errors.Is(err, database.ErrSessionNotFound):
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("session expired; reload the page to start a new one"))
	default:
		ec.LogErrorf(logging.GetLogType("ebook"), "unexpected error: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("error: %s", err))
	}
}

func decodeData(c *gin.Context, output any) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponse("Error reading request body"))
		return false
	}

	request := api.GenericRequest{}
	if err := request.Load(body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("Error reading request body: %v", err))
		return false
	}
	if err := request.DecodeDataTo(output); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("Error decoding request data: %v", err))
		return false
	}
	return true
}

func attach(c *gin.Context, artifact export.Artifact) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Content)
}
