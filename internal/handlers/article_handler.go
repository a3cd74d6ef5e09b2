package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"wordtrail/internal/models"
	"wordtrail/internal/repository"
)

// ArticleHandler handles generated reading passages
type ArticleHandler struct {
	articleRepo *repository.ArticleRepository
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articleRepo *repository.ArticleRepository) *ArticleHandler {
	return &ArticleHandler{articleRepo: articleRepo}
}

type createArticleRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	WordIDs []string `json:"word_ids"`
}

// Create stores a reading passage built from the user's words
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.Title == "" || req.Content == "" {
		respondWithError(w, http.StatusBadRequest, "Title and content are required", "", nil)
		return
	}

	article := &models.Article{
		ID:        uuid.New().String(),
		UserID:    UserIDFromContext(r.Context()),
		Title:     req.Title,
		Content:   req.Content,
		WordIDs:   req.WordIDs,
		CreatedAt: time.Now(),
	}
	if err := h.articleRepo.Create(article); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save article", "", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newArticleView(article))
}

// List returns the user's active articles
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleRepo.ListActive(UserIDFromContext(r.Context()))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list articles", "", err)
		return
	}

	views := make([]ArticleView, len(articles))
	for i := range articles {
		views[i] = newArticleView(&articles[i])
	}
	respondWithJSON(w, http.StatusOK, views)
}

// Get returns a single article
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, ok := h.ownedArticle(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, newArticleView(article))
}

// Delete soft-deletes an article
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	article, ok := h.ownedArticle(w, r)
	if !ok {
		return
	}
	if err := h.articleRepo.SoftDelete(article.ID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to delete article", "", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ArticleHandler) ownedArticle(w http.ResponseWriter, r *http.Request) (*models.Article, bool) {
	article, err := h.articleRepo.GetByID(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get article", "", err)
		return nil, false
	}
	if article == nil || article.Deleted || article.UserID != UserIDFromContext(r.Context()) {
		respondWithError(w, http.StatusNotFound, "Article not found", "", nil)
		return nil, false
	}
	return article, true
}
