package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"cardforge-backend/internal/models"
	"cardforge-backend/internal/services"
	"cardforge-backend/internal/textproc"
)

const (
	maxSourceChars    = 4000
	maxUploadBytes    = 16 << 20
	defaultDifficulty = "medium"
)

type GenerateHandler struct {
	generator *services.GeneratorService
	research  *services.ResearchService
	extractor *services.FileExtractService
}

func NewGenerateHandler(generator *services.GeneratorService, research *services.ResearchService, extractor *services.FileExtractService) *GenerateHandler {
	return &GenerateHandler{generator: generator, research: research, extractor: extractor}
}

// Generate builds flashcards from raw text submitted in the request body.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Text is required", r))
		return
	}

	opts := models.GenerateOptions{
		Difficulty:         normalizeDifficulty(req.Difficulty),
		QuestionAnswer:     req.QuestionAnswer == nil || *req.QuestionAnswer,
		ExtractDefinitions: req.ExtractDefinitions,
		CreateCloze:        req.CreateCloze,
	}

	text := textproc.Normalize(req.Text, req.Format)
	text = textproc.Truncate(text, maxSourceChars)

	cards := h.generator.Generate(r.Context(), text, opts)
	writeJSON(w, http.StatusOK, models.NewGenerateResponse(cards))
}

// GenerateFromTopic researches a topic on the web and builds flashcards
// from the gathered material. A source-attribution card leads the result.
func (h *GenerateHandler) GenerateFromTopic(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Topic == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Topic is required", r))
		return
	}

	material := h.research.Research(r.Context(), req.Topic)
	if req.IncludeFacts {
		material += fmt.Sprintf("\n\nFocus on concrete facts about %s.", req.Topic)
	}
	if req.IncludeDates {
		material += fmt.Sprintf("\n\nInclude important dates related to %s.", req.Topic)
	}

	opts := models.GenerateOptions{
		Difficulty:         normalizeDifficulty(req.Difficulty),
		QuestionAnswer:     true,
		ExtractDefinitions: req.IncludeDefinitions,
	}

	text := textproc.Truncate(textproc.Normalize(material, ""), maxSourceChars)
	cards := h.generator.Generate(r.Context(), text, opts)

	topicCard := models.Flashcard{
		Question: fmt.Sprintf("What is the main focus of %s?", req.Topic),
		Answer:   fmt.Sprintf("These flashcards cover key information about %s.", req.Topic),
	}
	cards[models.CategoryMain] = append([]models.Flashcard{topicCard}, cards[models.CategoryMain]...)

	writeJSON(w, http.StatusOK, models.NewGenerateResponse(cards))
}

// GenerateFromFiles builds flashcards from uploaded files. Files that fail
// extraction are skipped; when nothing at all extracts the response is a
// fixed sentinel set rather than an error.
func (h *GenerateHandler) GenerateFromFiles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid or oversized multipart body", r))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "At least one file is required", r))
		return
	}

	var combined string
	extracted := 0
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			log.Printf("WARNING: failed to open upload %s: %v", header.Filename, err)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			log.Printf("WARNING: failed to read upload %s: %v", header.Filename, err)
			continue
		}

		text, ok := h.extractor.Extract(r.Context(), data, header.Filename)
		if !ok {
			log.Printf("skipping %s: %s", header.Filename, text)
			continue
		}
		if combined != "" {
			combined += "\n\n"
		}
		combined += text
		extracted++
	}

	if extracted == 0 {
		sentinel := models.CardSet{
			models.CategoryMain: {
				{
					Question: "No content could be extracted from the uploaded files.",
					Answer:   "Please try different files or formats.",
				},
			},
		}
		writeJSON(w, http.StatusOK, models.NewGenerateResponse(sentinel))
		return
	}

	opts := models.GenerateOptions{
		Difficulty:         normalizeDifficulty(r.FormValue("difficulty")),
		QuestionAnswer:     true,
		ExtractDefinitions: r.FormValue("extract_definitions") == "true",
		CreateCloze:        r.FormValue("create_cloze") == "true",
	}

	text := textproc.Truncate(textproc.Normalize(combined, ""), maxSourceChars)
	cards := h.generator.Generate(r.Context(), text, opts)
	writeJSON(w, http.StatusOK, models.NewGenerateResponse(cards))
}

func normalizeDifficulty(d string) string {
	switch d {
	case "easy", "medium", "hard":
		return d
	default:
		return defaultDifficulty
	}
}
