// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/prospecta/prospect"
)

// Server exposes the discovery pipeline and the client store over HTTP.
type Server struct {
	searcher Searcher
	repo     prospect.ClientRepository
	addr     string
}

// NewServer creates the API server.
func NewServer(searcher Searcher, repo prospect.ClientRepository, addr string) *Server {
	return &Server{
		searcher: searcher,
		repo:     repo,
		addr:     addr,
	}
}

// Routes registers the API handlers on a gin engine.
func (s *Server) Routes(r *gin.Engine) {
	api := r.Group("/api")
	api.POST("/clients/search", s.searchClients)
	api.GET("/clients", s.listClients)
	api.GET("/clients/statistics", s.statistics)
	api.PUT("/clients/:id/status", s.updateStatus)
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	r := gin.Default()
	s.Routes(r)

	return r.Run(s.addr)
}

type searchClientsRequest struct {
	City     string   `json:"city"`
	State    string   `json:"state"`
	RadiusKm int      `json:"radius_km"`
	Keywords []string `json:"keywords"`
}

func (s *Server) searchClients(ctx *gin.Context) {
	var body searchClientsRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	summary, err := s.searcher.Run(ctx.Request.Context(), SearchRequest{
		City:     body.City,
		State:    body.State,
		RadiusKm: body.RadiusKm,
		Terms:    body.Keywords,
	})

	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, summary)
	case IsInvalidRequest(err):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case IsResolutionFailed(err):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) listClients(ctx *gin.Context) {
	clients, err := s.repo.GetAll(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if clients == nil {
		clients = []*prospect.Client{}
	}

	ctx.JSON(http.StatusOK, clients)
}

func (s *Server) statistics(ctx *gin.Context) {
	stats, err := ClientStatistics(ctx.Request.Context(), s.repo)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, stats)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) updateStatus(ctx *gin.Context) {
	var body updateStatusRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	status, err := prospect.ParseClientStatus(body.Status)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	err = s.repo.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), status)

	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, prospect.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
