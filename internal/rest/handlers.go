package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pbinitiative/zendcr/internal/appcontext"
	"github.com/pbinitiative/zendcr/internal/log"
	apierror "github.com/pbinitiative/zendcr/internal/rest/error"
	"github.com/pbinitiative/zendcr/pkg/bpmn"
	"github.com/pbinitiative/zendcr/pkg/bpmn/process"
	"github.com/pbinitiative/zendcr/pkg/bpmn/runtime"
	"github.com/pbinitiative/zendcr/pkg/dcr"
	dcrengine "github.com/pbinitiative/zendcr/pkg/dcr/engine"
	"github.com/pbinitiative/zendcr/pkg/dcr/translate"
	"github.com/pbinitiative/zendcr/pkg/storage"
)

const defaultResourceName = "upload.bpmn"

type TranslationRequest struct {
	BpmnXml      string `json:"bpmnXml"`
	ResourceName string `json:"resourceName,omitempty"`
}

type TranslationResponse struct {
	Key          int64               `json:"key,string"`
	ProcessId    string              `json:"processId"`
	Version      int32               `json:"version"`
	ResourceName string              `json:"resourceName"`
	Checksum     string              `json:"checksum"`
	Threshold    int                 `json:"threshold"`
	Graph        *dcr.Graph          `json:"graph"`
	NestingIds   []string            `json:"nestingIds"`
	Diagnostics  process.Diagnostics `json:"diagnostics"`
	DcrXml       string              `json:"dcrXml,omitempty"`
}

type CreateSimulationRequest struct {
	DefinitionKey int64 `json:"definitionKey,string"`
}

func translationResponse(definition runtime.GraphDefinition, withXml bool) TranslationResponse {
	resp := TranslationResponse{
		Key:          definition.Key,
		ProcessId:    definition.BpmnProcessId,
		Version:      definition.Version,
		ResourceName: definition.BpmnResourceName,
		Checksum:     definition.Checksum(),
		Threshold:    definition.Threshold,
		Graph:        definition.Graph,
		NestingIds:   definition.NestingIds,
		Diagnostics:  definition.Diagnostics,
	}
	if resp.NestingIds == nil {
		resp.NestingIds = []string{}
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = process.Diagnostics{}
	}
	if withXml {
		resp.DcrXml = definition.DcrXml
	}
	return resp
}

// CreateTranslation accepts raw BPMN XML or a JSON TranslationRequest.
func (s *Server) CreateTranslation(w http.ResponseWriter, r *http.Request) {
	threshold := s.engine.NestingThreshold()
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		t, err := strconv.Atoi(raw)
		if err != nil || t < 0 {
			writeError(w, r, http.StatusBadRequest, apierror.ApiError{
				Type:    apierror.TypeBadRequest,
				Message: fmt.Sprintf("threshold must be a non-negative integer, got %q", raw),
			})
			return
		}
		threshold = t
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBpmnSize))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, apierror.ApiError{
			Type:    apierror.TypeBadRequest,
			Message: fmt.Sprintf("failed to read request body: %s", err),
		})
		return
	}
	resourceName := r.URL.Query().Get("resourceName")
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
		var req TranslationRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, apierror.ApiError{
				Type:    apierror.TypeBadRequest,
				Message: fmt.Sprintf("failed to decode request: %s", err),
			})
			return
		}
		body = []byte(req.BpmnXml)
		if req.ResourceName != "" {
			resourceName = req.ResourceName
		}
	}
	if len(body) == 0 {
		writeError(w, r, http.StatusBadRequest, apierror.ApiError{
			Type:    apierror.TypeBadRequest,
			Message: "bpmn xml must not be empty",
		})
		return
	}
	if resourceName == "" {
		resourceName = defaultResourceName
	}

	definition, err := s.engine.LoadFromBytesWithThreshold(r.Context(), body, resourceName, threshold)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	log.Infof(r.Context(), "translated %s into graph definition %d version %d", definition.BpmnProcessId, definition.Key, definition.Version)
	writeJson(w, http.StatusCreated, translationResponse(*definition, true))
}

func (s *Server) GetTranslations(w http.ResponseWriter, r *http.Request) {
	processId := r.URL.Query().Get("processId")
	if processId == "" {
		writeError(w, r, http.StatusBadRequest, apierror.ApiError{
			Type:    apierror.TypeBadRequest,
			Message: "query parameter processId is required",
		})
		return
	}
	definitions, err := s.engine.FindGraphDefinitionsById(r.Context(), processId)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	items := make([]TranslationResponse, len(definitions))
	for i, d := range definitions {
		items[i] = translationResponse(d, false)
	}
	writeJson(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) GetTranslation(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	definition, err := s.engine.FindGraphDefinition(r.Context(), key)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJson(w, http.StatusOK, translationResponse(definition, true))
}

func (s *Server) GetTranslationXml(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	definition, err := s.engine.FindGraphDefinition(r.Context(), key)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", definition.BpmnProcessId+".dcr.xml"))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, definition.DcrXml)
}

func (s *Server) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req CreateSimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, apierror.ApiError{
			Type:    apierror.TypeBadRequest,
			Message: fmt.Sprintf("failed to decode request: %s", err),
		})
		return
	}
	state, err := s.engine.CreateSimulation(r.Context(), req.DefinitionKey)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	ctx := appcontext.WithSimulationKey(r.Context(), state.Key)
	log.Infof(ctx, "created simulation of graph definition %d", req.DefinitionKey)
	writeJson(w, http.StatusCreated, state)
}

func (s *Server) GetSimulation(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	state, err := s.engine.SimulationState(r.Context(), key)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJson(w, http.StatusOK, state)
}

func (s *Server) ExecuteEvent(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	eventId := chi.URLParam(r, "eventId")
	ctx := appcontext.WithSimulationKey(r.Context(), key)
	state, err := s.engine.ExecuteEvent(ctx, key, eventId)
	if err != nil {
		if bpmn.IsRejection(err) {
			log.Debugf(ctx, "rejected execution of %s: %s", eventId, err)
		}
		writeEngineError(w, r, err)
		return
	}
	writeJson(w, http.StatusOK, state)
}

func (s *Server) ResetSimulation(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	state, err := s.engine.ResetSimulation(r.Context(), key)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJson(w, http.StatusOK, state)
}

func keyParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "key")
	key, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, apierror.ApiError{
			Type:    apierror.TypeBadRequest,
			Message: fmt.Sprintf("key must be an integer, got %q", raw),
		})
		return 0, false
	}
	return key, true
}

func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var translationError *translate.TranslationError
	var unmarshallingError *bpmn.UnmarshallingError
	var engineError *bpmn.EngineError
	switch {
	case errors.Is(err, dcrengine.ErrEventNotEnabled):
		writeError(w, r, http.StatusConflict, apierror.ApiError{Type: apierror.TypeEventNotEnabled, Message: err.Error()})
	case errors.Is(err, dcrengine.ErrUnknownEvent):
		writeError(w, r, http.StatusNotFound, apierror.ApiError{Type: apierror.TypeUnknownEvent, Message: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, apierror.ApiError{Type: apierror.TypeNotFound, Message: err.Error()})
	case errors.As(err, &translationError):
		writeError(w, r, http.StatusUnprocessableEntity, apierror.ApiError{
			Type:        apierror.TypeTranslationFailed,
			Message:     err.Error(),
			Diagnostics: translationError.Diagnostics,
		})
	case errors.Is(err, bpmn.ErrNoProcess):
		writeError(w, r, http.StatusUnprocessableEntity, apierror.ApiError{Type: apierror.TypeTranslationFailed, Message: err.Error()})
	case errors.As(err, &unmarshallingError), errors.As(err, &engineError):
		writeError(w, r, http.StatusBadRequest, apierror.ApiError{Type: apierror.TypeBadRequest, Message: err.Error()})
	default:
		log.Errorf(r.Context(), "request %s %s failed: %s", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, apierror.ApiError{Type: apierror.TypeError, Message: err.Error()})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, resp apierror.ApiError) {
	writeJson(w, status, resp)
}
