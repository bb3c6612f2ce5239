package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bryanwahyu/inspecta/internal/application"
	appinspections "github.com/bryanwahyu/inspecta/internal/application/inspections"
	appuploads "github.com/bryanwahyu/inspecta/internal/application/uploads"
	"github.com/bryanwahyu/inspecta/internal/domain/inspections"
	"github.com/bryanwahyu/inspecta/internal/middleware"
)

// POST /inspections
// Body: {"title","location","inspector"}
func (r *Router) handleCreateInspection(w http.ResponseWriter, req *http.Request) error {
	var body appinspections.CreateInspectionCommand
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	body.Title = middleware.SanitizeString(body.Title)
	body.Location = middleware.SanitizeString(body.Location)
	body.Inspector = middleware.SanitizeString(body.Inspector)

	id, err := r.inspections.CreateInspection(req.Context(), body)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
	return nil
}

// GET /inspections
func (r *Router) handleListInspections(w http.ResponseWriter, req *http.Request) error {
	list, err := r.inspections.ListInspections(req.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// POST /inspections/{id}/enrich
func (r *Router) handleEnrichInspection(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateID(id); err != nil {
		return application.Invalid("%v", err)
	}
	res, err := r.inspections.EnrichInspection(req.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// POST /findings
func (r *Router) handleCreateFinding(w http.ResponseWriter, req *http.Request) error {
	var body appinspections.CreateFindingCommand
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	body.InspectionID = middleware.SanitizeString(body.InspectionID)
	body.ItemLabel = middleware.SanitizeString(body.ItemLabel)
	body.Description = middleware.SanitizeString(body.Description)
	body.Severity = middleware.SanitizeString(body.Severity)
	body.ZoneID = middleware.SanitizePtr(body.ZoneID)
	body.PhotoURL = middleware.SanitizePtr(body.PhotoURL)
	if body.InspectionID != "" {
		if err := middleware.ValidateID(body.InspectionID); err != nil {
			return application.Invalid("%v", err)
		}
	}
	if body.PhotoURL != nil {
		if err := middleware.ValidatePhotoURL(*body.PhotoURL); err != nil {
			return application.Invalid("%v", err)
		}
	}

	id, err := r.inspections.CreateFinding(req.Context(), body)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
	return nil
}

// GET /findings?inspectionId=
func (r *Router) handleListFindings(w http.ResponseWriter, req *http.Request) error {
	inspectionID := strings.TrimSpace(req.URL.Query().Get("inspectionId"))
	if inspectionID != "" {
		if err := middleware.ValidateID(inspectionID); err != nil {
			return application.Invalid("%v", err)
		}
	}
	list, err := r.inspections.ListFindings(req.Context(), inspectionID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

type aiRequest struct {
	Mode     string                          `json:"mode"`
	Prompt   string                          `json:"prompt"`
	Findings []inspections.EnrichmentRequest `json:"findings"`
	Context  string                          `json:"context"`
	Model    string                          `json:"model"`
}

// POST /ai
// mode "prompt" (default) and "summary" answer {text}; "findings" answers {results}.
func (r *Router) handleAI(w http.ResponseWriter, req *http.Request) error {
	var body aiRequest
	if err := decodeJSON(req, &body); err != nil {
		return err
	}

	ctx := req.Context()
	switch body.Mode {
	case "", "prompt":
		text, err := r.ai.Prompt(ctx, body.Model, body.Prompt)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	case "findings":
		results, err := r.ai.EnrichFindings(ctx, body.Findings)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	case "summary":
		text, err := r.ai.Summarize(ctx, body.Model, body.Context)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	default:
		return application.Invalid("unknown mode %q", body.Mode)
	}
	return nil
}

// GET /config
func (r *Router) handleGetConfig(w http.ResponseWriter, req *http.Request) error {
	all, err := r.settings.All(req.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, all)
	return nil
}

// PUT /config
// Body: flat object; non-string values are stored as JSON text.
func (r *Router) handlePutConfig(w http.ResponseWriter, req *http.Request) error {
	var body map[string]json.RawMessage
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	saved, err := r.settings.Save(req.Context(), body)
	if err != nil {
		return err
	}
	zap.L().Info("config saved", zap.Strings("keys", saved))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "saved": saved})
	return nil
}

// POST /upload
// multipart: file, previousUrl (optional)
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		return invalidBody(err)
	}
	defer func() {
		if req.MultipartForm != nil {
			_ = req.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := req.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return application.Invalid("file is required")
		}
		return invalidBody(err)
	}
	defer file.Close()

	previous := middleware.SanitizeString(req.FormValue("previousUrl"))
	if err := middleware.ValidatePhotoURL(previous); err != nil {
		return application.Invalid("%v", err)
	}

	url, err := r.uploads.UploadPhoto(req.Context(), appuploads.UploadCommand{
		File:        file,
		Size:        header.Size,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		PreviousURL: previous,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
	return nil
}

// DELETE /admin
// Wipes findings and inspections; the config sentinel row survives.
func (r *Router) handleReset(w http.ResponseWriter, req *http.Request) error {
	if err := r.inspections.Reset(req.Context()); err != nil {
		return err
	}
	zap.L().Warn("admin reset executed")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	return nil
}

// GET /migrate
func (r *Router) handleMigrate(w http.ResponseWriter, req *http.Request) error {
	ok, out := r.inspections.Migrate(req.Context())
	writeJSON(w, http.StatusOK, map[string]any{"ok": ok, "migrations": out})
	return nil
}
