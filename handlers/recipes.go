package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"recipebox/models"
	"recipebox/store"
)

// maxRecipeBody caps the size of a create request.
const maxRecipeBody = 1 << 20

// GetRecipes returns every stored recipe, newest first. A collection that
// cannot be read is served as an empty list; the store logs the cause.
func GetRecipes(s *store.RecipeStore, w http.ResponseWriter, r *http.Request) {
	recipes := s.ReadAll(r.Context())
	writeJSON(w, r, http.StatusOK, recipes)
}

// CountRecipes reports how many recipes are stored.
func CountRecipes(s *store.RecipeStore, w http.ResponseWriter, r *http.Request) {
	recipes := s.ReadAll(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]int{"count": len(recipes)})
}

func GetRecipe(s *store.RecipeStore, w http.ResponseWriter, r *http.Request) {
	// Get the "id" query parameter from the URL
	recipeID := r.URL.Query().Get("id")
	if recipeID == "" {
		http.Error(w, "Missing 'id' query parameter", http.StatusBadRequest)
		return
	}

	for _, recipe := range s.ReadAll(r.Context()) {
		if recipe.ID == recipeID {
			writeJSON(w, r, http.StatusOK, recipe)
			return
		}
	}
	http.Error(w, "No matching recipe found", http.StatusNotFound)
}

// CreateRecipe stores the recipe in the request body. Fields are trimmed,
// blank optional fields are dropped and a blank title is rejected.
func CreateRecipe(s *store.RecipeStore, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var payload models.RecipePayload
	body := http.MaxBytesReader(w, r.Body, maxRecipeBody)
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		logger.Debug().Err(err).Msg("failed to decode request body")
		return
	}

	payload = payload.Normalize()
	if err := payload.Validate(); err != nil {
		http.Error(w, "Recipe title is required", http.StatusBadRequest)
		return
	}

	created, ok := s.Append(r.Context(), payload)
	if !ok {
		http.Error(w, "Could not save recipe", http.StatusInternalServerError)
		return
	}

	logger.Info().Str("id", created.ID).Msg("recipe created")
	writeJSON(w, r, http.StatusCreated, created)
}

// ClearRecipes removes the whole collection. It always answers 204; a
// failed removal is only visible in the logs.
func ClearRecipes(s *store.RecipeStore, w http.ResponseWriter, r *http.Request) {
	s.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to encode response")
	}
}
