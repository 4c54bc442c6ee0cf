package api

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/socialme/contentflow/internal/common"
	"github.com/socialme/contentflow/internal/workflow"
)

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	rec, err := s.manager.Start(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":         rec.ID,
		"status":     rec.Status,
		"created_at": rec.CreatedAt,
		"config":     workflow.Defaults(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.manager.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"workflows": infos})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rec, err := s.manager.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req workflow.TopicRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.manager.SetTopic(r.Context(), id, req)
	if err != nil {
		s.fail(w, err)
		return
	}
	common.Logger().Info("api: topic set", "workflow", id, "topic", req.PrimaryTopic)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": rec.Status,
		"topic":  rec.Topic,
	})
}

func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req workflow.AvatarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.manager.SetAvatar(r.Context(), id, req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": rec.Status,
		"avatar": rec.Avatar,
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req workflow.SourcesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.manager.AddSources(r.Context(), id, req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            result.Record.Status,
		"sources_processed": result.SourcesProcessed,
		"total_word_count":  result.TotalWordCount,
		"details":           result.Details,
	})
}

func (s *Server) handleTone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req workflow.ToneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.manager.AnalyzeTone(r.Context(), id, req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       result.Record.Status,
		"tone_profile": result.Profile,
		"source_summary": map[string]interface{}{
			"word_count": result.WordCount,
			"sources":    result.Sources,
		},
	})
}

func (s *Server) handleStyleSamples(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req workflow.StyleSamplesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.manager.GenerateStyleSamples(r.Context(), id, req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         result.Record.Status,
		"style_analysis": result.Analysis,
		"samples":        result.Record.StyleSamples,
	})
}

func (s *Server) handleStyleFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req workflow.FeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.manager.ApplyStyleFeedback(r.Context(), id, req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  rec.Status,
		"samples": rec.StyleSamples,
	})
}

func (s *Server) handleGenerateArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.manager.GenerateArticle(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  rec.Status,
		"article": rec.Article,
	})
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := s.manager.GetArticle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleValidateArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req workflow.EditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.manager.ValidateArticle(r.Context(), id, req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   rec.Status,
		"article":  rec.Article,
		"versions": rec.Versions,
	})
}

func (s *Server) handleApproveArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req workflow.ApprovalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.manager.ApproveArticle(r.Context(), id, req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  rec.Status,
		"article": rec.Article,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	export, err := s.manager.ExportArticle(r.Context(), id, format)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Body)
}
