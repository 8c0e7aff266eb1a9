package httpapi

import (
	"net/http"
	"strings"

	"github.com/ppiankov/draftsmith/internal/agentconfig"
	"github.com/ppiankov/draftsmith/internal/model"
)

const missingTitle = "title is required"

type topicRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type draftRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Outline            string   `json:"outline"`
	GenerateAll        bool     `json:"generateAll"`
	ValidationWarnings []string `json:"validationWarnings"`
}

type textRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Outline     string `json:"outline"`
	Draft       string `json:"draft"`
}

type reviseRequest struct {
	Outline string `json:"outline"`
	model.ValidationResult
}

type htmlRequest struct {
	DraftHTML   string   `json:"draftHtml"`
	Instruction string   `json:"instruction"`
	Suggestions []string `json:"suggestions"`
}

type ideasRequest struct {
	Ideas []model.Idea `json:"ideas"`
}

func (s *Server) generateIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := s.svc.GenerateIdeas(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ideas": ideas})
}

func (s *Server) refineIdeas(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.RefineIdeas(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (s *Server) validateIdeas(w http.ResponseWriter, r *http.Request) {
	var req ideasRequest
	if !decode(w, r, &req) {
		return
	}
	ideas := make([]model.Idea, 0, len(req.Ideas))
	for _, idea := range req.Ideas {
		if strings.TrimSpace(idea.Title) != "" {
			ideas = append(ideas, idea)
		}
	}
	writeJSON(w, map[string]any{"results": s.svc.ValidateIdeas(r.Context(), ideas)})
}

func (s *Server) generateOutline(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		badRequest(w, missingTitle)
		return
	}
	outline, err := s.svc.GenerateOutline(r.Context(), req.Title, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"outline": outline})
}

func (s *Server) generateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		badRequest(w, missingTitle)
		return
	}
	dr := model.DraftRequest{
		Title:              req.Title,
		Description:        req.Description,
		Outline:            req.Outline,
		ValidationWarnings: req.ValidationWarnings,
	}

	if req.GenerateAll {
		set, err := s.svc.GenerateAllDrafts(r.Context(), dr)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, set)
		return
	}

	draft, err := s.svc.GenerateDraft(r.Context(), dr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"draft": draft})
}

func (s *Server) validateOutline(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		badRequest(w, missingTitle)
		return
	}
	writeJSON(w, s.svc.ValidateOutline(r.Context(), req.Title, req.Description, req.Outline))
}

func (s *Server) validateDraft(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		badRequest(w, missingTitle)
		return
	}
	writeJSON(w, s.svc.ValidateDraft(r.Context(), req.Title, req.Description, req.Draft))
}

func (s *Server) reviseOutline(w http.ResponseWriter, r *http.Request) {
	var req reviseRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Outline == "" {
		badRequest(w, "outline is required")
		return
	}
	revised := s.svc.ReviseOutline(r.Context(), req.Outline, req.ValidationResult)
	writeJSON(w, map[string]string{"revisedOutline": revised})
}

func (s *Server) reviewDraft(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		badRequest(w, missingTitle)
		return
	}
	writeJSON(w, s.svc.ReviewDraft(r.Context(), req.Title, req.Description, req.Draft))
}

func (s *Server) editSuggestions(w http.ResponseWriter, r *http.Request) {
	var req htmlRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, map[string]any{"suggestions": s.svc.EditSuggestions(r.Context(), req.DraftHTML)})
}

func (s *Server) validateSuggestions(w http.ResponseWriter, r *http.Request) {
	var req htmlRequest
	if !decode(w, r, &req) {
		return
	}
	results := s.svc.ValidateSuggestions(r.Context(), req.DraftHTML, req.Suggestions)
	writeJSON(w, map[string]any{"results": results})
}

func (s *Server) expandText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}
	writeJSON(w, map[string]string{"expandedText": s.svc.ExpandText(r.Context(), req.Text)})
}

func (s *Server) applyInstruction(w http.ResponseWriter, r *http.Request) {
	var req htmlRequest
	if !decode(w, r, &req) {
		return
	}
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		badRequest(w, "instruction is required")
		return
	}
	writeJSON(w, map[string]string{"html": s.svc.ApplyInstruction(r.Context(), req.DraftHTML, instruction)})
}

func (s *Server) sourcesReferences(w http.ResponseWriter, r *http.Request) {
	var req htmlRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, map[string]any{"sources": s.svc.SourcesReferences(r.Context(), req.DraftHTML)})
}

func (s *Server) getAgentConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.svc.AgentConfig(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, cfg)
}

type agentConfigResponse struct {
	OK bool `json:"ok"`
	model.AgentConfig
}

func (s *Server) updateAgentConfig(w http.ResponseWriter, r *http.Request) {
	var req agentconfig.Update
	if !decode(w, r, &req) {
		return
	}
	cfg, err := s.svc.UpdateAgentConfig(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, agentConfigResponse{OK: true, AgentConfig: cfg})
}
